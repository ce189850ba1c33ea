package segments

import (
	"strings"
	"unicode"
)

// fallbackSegments synthesizes segments from a raw transcript when no usable
// word timestamps exist. Each sentence becomes one segment with timing derived
// from an assumed reading rate, capped at the duration budget, with a fixed
// gap between consecutive segments. Fallback segments carry no confidence, no
// speaker, and no originating words.
func (d *Detector) fallbackSegments(interviewID, transcript string) []Segment {
	sentences := splitSentences(transcript)
	segs := make([]Segment, 0, len(sentences))

	var cursor float64
	for _, sentence := range sentences {
		wordCount := len(strings.Fields(sentence))
		if wordCount == 0 {
			continue
		}
		duration := float64(wordCount) / d.limits.FallbackReadingRate
		if duration > d.limits.MaxDuration {
			duration = d.limits.MaxDuration
		}
		segs = append(segs, Segment{
			InterviewID: interviewID,
			Index:       len(segs),
			Start:       cursor,
			End:         cursor + duration,
			Text:        sentence,
			Fallback:    true,
		})
		cursor += duration + d.limits.FallbackGap
	}
	return segs
}

// splitSentences breaks text at sentence-final punctuation followed by
// whitespace (or end of input). Punctuation stays attached to its sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(strings.TrimSpace(text))
	for i, r := range runes {
		current.WriteRune(r)
		if !isSentenceTerminator(r) {
			continue
		}
		atEnd := i == len(runes)-1
		nextIsSpace := !atEnd && unicode.IsSpace(runes[i+1])
		nextIsTerminator := !atEnd && isSentenceTerminator(runes[i+1])
		if nextIsTerminator {
			continue
		}
		if atEnd || nextIsSpace {
			if sentence := strings.TrimSpace(current.String()); sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
		}
	}
	if sentence := strings.TrimSpace(current.String()); sentence != "" {
		sentences = append(sentences, sentence)
	}
	return sentences
}

func isSentenceTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	default:
		return false
	}
}
