package segments

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"subsync/internal/logging"
)

// Limits configures the boundary detector budgets. FallbackReadingRate and
// FallbackGap only apply to sentence-based fallback segmentation.
type Limits struct {
	MaxDuration         float64
	MinGap              float64
	MaxChars            int
	FallbackReadingRate float64
	FallbackGap         float64
}

// DefaultLimits returns the detector budgets used when no configuration is
// supplied.
func DefaultLimits() Limits {
	return Limits{
		MaxDuration:         6.0,
		MinGap:              1.0,
		MaxChars:            84,
		FallbackReadingRate: 2.5,
		FallbackGap:         0.5,
	}
}

// Result is the outcome of one detection pass. Zero segments with a nil-free
// result is a legitimate terminal state, not an error.
type Result struct {
	Segments     []Segment
	DroppedWords int
	UsedFallback bool
}

// Detector converts timestamped words into subtitle segments. It is a pure
// function over its inputs; the logger only surfaces dropped malformed input.
type Detector struct {
	limits Limits
	logger *slog.Logger
}

// NewDetector constructs a detector with the supplied budgets. A nil logger is
// replaced with a no-op logger.
func NewDetector(limits Limits, logger *slog.Logger) *Detector {
	if limits.MaxDuration <= 0 {
		limits.MaxDuration = DefaultLimits().MaxDuration
	}
	if limits.MinGap <= 0 {
		limits.MinGap = DefaultLimits().MinGap
	}
	if limits.MaxChars <= 0 {
		limits.MaxChars = DefaultLimits().MaxChars
	}
	if limits.FallbackReadingRate <= 0 {
		limits.FallbackReadingRate = DefaultLimits().FallbackReadingRate
	}
	if limits.FallbackGap < 0 {
		limits.FallbackGap = DefaultLimits().FallbackGap
	}
	return &Detector{
		limits: limits,
		logger: logging.NewComponentLogger(logger, "boundary-detector"),
	}
}

// Detect groups words into segments for the given interview. Words with
// malformed timing are dropped, not clamped. When no word carries valid timing
// and a transcript is available, sentence-based fallback segmentation runs
// instead.
func (d *Detector) Detect(interviewID string, words []Word, transcript string) Result {
	valid := make([]Word, 0, len(words))
	dropped := 0
	for _, word := range words {
		if strings.TrimSpace(word.Text) == "" {
			continue
		}
		if !word.HasValidTiming() {
			dropped++
			d.logger.Warn("dropping word with malformed timing",
				logging.String(logging.FieldInterviewID, interviewID),
				logging.String("word", word.Text),
				logging.Float64("start", word.Start),
				logging.Float64("end", word.End),
			)
			continue
		}
		valid = append(valid, word)
	}

	if len(valid) == 0 {
		if strings.TrimSpace(transcript) != "" {
			segs := d.fallbackSegments(interviewID, transcript)
			return Result{Segments: segs, DroppedWords: dropped, UsedFallback: true}
		}
		return Result{DroppedWords: dropped}
	}

	segs, skipped := d.timedSegments(interviewID, valid)
	return Result{Segments: segs, DroppedWords: dropped + skipped}
}

// timedSegments runs the boundary heuristics over words with valid timing.
// Boundary checks evaluate the state before appending the candidate word, in
// fixed order: speaker change, duration budget, pause gap, character budget.
func (d *Detector) timedSegments(interviewID string, words []Word) ([]Segment, int) {
	var segs []Segment
	skipped := 0

	current := make([]Word, 0, 16)
	var textLen int

	flush := func() {
		if len(current) == 0 {
			return
		}
		seg, ok := d.buildSegment(interviewID, len(segs), current)
		if !ok {
			skipped += len(current)
		} else {
			segs = append(segs, seg)
		}
		current = current[:0]
		textLen = 0
	}

	for i, word := range words {
		if len(current) > 0 {
			prev := current[len(current)-1]
			switch {
			case word.Speaker != current[0].Speaker:
				flush()
			case word.End-current[0].Start > d.limits.MaxDuration:
				flush()
			case word.Start-prev.End > d.limits.MinGap:
				flush()
			case textLen+1+utf8.RuneCountInString(strings.TrimSpace(word.Text)) > d.limits.MaxChars:
				flush()
			}
		}
		current = append(current, words[i])
		if textLen > 0 {
			textLen++
		}
		textLen += utf8.RuneCountInString(strings.TrimSpace(word.Text))
	}
	flush()

	return segs, skipped
}

func (d *Detector) buildSegment(interviewID string, index int, words []Word) (Segment, bool) {
	start := words[0].Start
	end := words[len(words)-1].End
	if end <= start {
		d.logger.Warn("skipping zero-duration segment",
			logging.String(logging.FieldInterviewID, interviewID),
			logging.Float64("start", start),
			logging.Int("words", len(words)),
		)
		return Segment{}, false
	}

	texts := make([]string, 0, len(words))
	var confSum float64
	var confCount int
	for _, word := range words {
		texts = append(texts, strings.TrimSpace(word.Text))
		if word.Confidence != nil {
			confSum += *word.Confidence
			confCount++
		}
	}

	seg := Segment{
		InterviewID: interviewID,
		Index:       index,
		Start:       start,
		End:         end,
		Text:        strings.Join(texts, " "),
		Speaker:     words[0].Speaker,
	}
	if confCount > 0 {
		mean := confSum / float64(confCount)
		seg.Confidence = &mean
	}
	return seg, true
}
