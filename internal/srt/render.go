package srt

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"subsync/internal/segments"
)

// ErrMissingTranslation indicates a segment has no text for the requested
// language.
var ErrMissingTranslation = errors.New("srt: missing translation")

// Render serializes an ordered segment list as SRT: 1-based index line,
// "HH:MM:SS,mmm --> HH:MM:SS,mmm" timing line, text, blocks separated by a
// blank line. lang selects the variant; empty or "original" renders the
// source text. Timestamps round to the nearest millisecond independently per
// value, so long lists accumulate no drift. Text containing a blank line is
// rejected: SRT delimits cues with blank lines, so such text cannot survive a
// Parse round-trip. For everything Render accepts, Parse is its exact left
// inverse.
func Render(segs []segments.Segment, lang string) (string, error) {
	if len(segs) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for i, seg := range segs {
		text, ok := seg.TextForLanguage(lang)
		if !ok {
			return "", fmt.Errorf("%w: segment %d has no %q text", ErrMissingTranslation, seg.Index, lang)
		}
		if strings.Contains("\n"+text+"\n", "\n\n") {
			return "", fmt.Errorf("srt: segment %d text contains a blank line", seg.Index)
		}
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n", i+1, FormatTimestamp(seg.Start), FormatTimestamp(seg.End), text)
		if i < len(segs)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm with zero padding and
// deterministic nearest-millisecond rounding.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))

	millis := totalMillis % 1000
	totalSeconds := totalMillis / 1000
	secs := totalSeconds % 60
	minutes := (totalSeconds / 60) % 60
	hours := totalSeconds / 3600

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// ToWebVTT derives WebVTT from rendered SRT content by delimiter substitution
// on the timing lines only; no timing is recomputed.
func ToWebVTT(srtContent string) string {
	if strings.TrimSpace(srtContent) == "" {
		return "WEBVTT\n"
	}
	lines := strings.Split(srtContent, "\n")
	for i, line := range lines {
		if strings.Contains(line, "-->") {
			lines[i] = strings.ReplaceAll(line, ",", ".")
		}
	}
	return "WEBVTT\n\n" + strings.Join(lines, "\n")
}
