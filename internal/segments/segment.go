package segments

import (
	"errors"
	"fmt"
	"math"
)

// Word is a single timestamped token from the transcription provider.
// Confidence is nil when the provider did not report one.
type Word struct {
	Text       string
	Start      float64
	End        float64
	Speaker    string
	Confidence *float64
}

// HasValidTiming reports whether the word carries a usable (start, end) pair.
// Zero-duration words are valid input; negative or reversed timings are not.
func (w Word) HasValidTiming() bool {
	if math.IsNaN(w.Start) || math.IsNaN(w.End) || math.IsInf(w.Start, 0) || math.IsInf(w.End, 0) {
		return false
	}
	return w.Start >= 0 && w.End >= w.Start
}

// Segment is a time-bounded unit of subtitle text. Its timings are shared by
// all language variants: translations only ever add entries to Translations.
type Segment struct {
	InterviewID  string
	Index        int
	Start        float64
	End          float64
	Text         string
	Confidence   *float64
	Speaker      string
	Fallback     bool
	Translations map[string]string
}

// Duration returns the display duration in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// TextForLanguage returns the text for the requested language variant.
// An empty or "original" language selects the source text.
func (s Segment) TextForLanguage(lang string) (string, bool) {
	if lang == "" || lang == "original" {
		return s.Text, true
	}
	text, ok := s.Translations[lang]
	return text, ok
}

// SetTranslation records the text for one language variant. Timing fields are
// deliberately untouched.
func (s *Segment) SetTranslation(lang, text string) {
	if s.Translations == nil {
		s.Translations = make(map[string]string, 1)
	}
	s.Translations[lang] = text
}

// Validate checks the structural invariants every stored segment must satisfy.
func (s Segment) Validate() error {
	if s.InterviewID == "" {
		return errors.New("segment: interview id required")
	}
	if s.Index < 0 {
		return fmt.Errorf("segment %d: index must not be negative", s.Index)
	}
	if s.Start < 0 {
		return fmt.Errorf("segment %d: start time %.3f must not be negative", s.Index, s.Start)
	}
	if s.End <= s.Start {
		return fmt.Errorf("segment %d: end time %.3f must exceed start time %.3f", s.Index, s.End, s.Start)
	}
	if s.Confidence != nil && (*s.Confidence < 0 || *s.Confidence > 1) {
		return fmt.Errorf("segment %d: confidence %.3f outside [0, 1]", s.Index, *s.Confidence)
	}
	return nil
}

// ValidateOrdering checks the cross-segment invariants of a full interview
// listing: contiguous zero-based indices and non-decreasing start times.
func ValidateOrdering(segs []Segment) error {
	for i, seg := range segs {
		if seg.Index != i {
			return fmt.Errorf("segment ordering: expected index %d, got %d", i, seg.Index)
		}
		if err := seg.Validate(); err != nil {
			return err
		}
		if i > 0 && seg.Start < segs[i-1].Start {
			return fmt.Errorf("segment ordering: start time decreases at index %d (%.3f < %.3f)",
				i, seg.Start, segs[i-1].Start)
		}
	}
	return nil
}
