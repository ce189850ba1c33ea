package srt

import (
	"fmt"
	"strconv"
	"strings"

	"subsync/internal/segments"
)

// Parse reads SRT content back into segments. For any segment list Render
// accepts, Parse is its exact left inverse: timings survive to the
// millisecond and text survives byte for byte. The parsed segments carry no
// interview ID; callers attach one.
func Parse(content string) ([]segments.Segment, error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	trimmed := strings.TrimSpace(normalized)
	if trimmed == "" {
		return nil, nil
	}

	var segs []segments.Segment
	for _, block := range strings.Split(trimmed, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		seg, err := parseBlock(block, len(segs))
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

func parseBlock(block string, index int) (segments.Segment, error) {
	lines := strings.Split(block, "\n")
	if len(lines) < 2 {
		return segments.Segment{}, fmt.Errorf("srt: cue %d: truncated block", index+1)
	}

	cursor := 0
	if isNumeric(strings.TrimSpace(lines[cursor])) {
		cursor++
	}
	if cursor >= len(lines) {
		return segments.Segment{}, fmt.Errorf("srt: cue %d: missing timing line", index+1)
	}

	timing := lines[cursor]
	parts := strings.Split(timing, "-->")
	if len(parts) != 2 {
		return segments.Segment{}, fmt.Errorf("srt: cue %d: invalid timing line %q", index+1, timing)
	}
	start, err := ParseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return segments.Segment{}, fmt.Errorf("srt: cue %d: %w", index+1, err)
	}
	end, err := ParseTimestamp(strings.TrimSpace(parts[1]))
	if err != nil {
		return segments.Segment{}, fmt.Errorf("srt: cue %d: %w", index+1, err)
	}
	cursor++

	text := strings.Join(lines[cursor:], "\n")
	return segments.Segment{
		Index: index,
		Start: start,
		End:   end,
		Text:  text,
	}, nil
}

// ParseTimestamp reads an HH:MM:SS,mmm value (period accepted for the
// millisecond delimiter) into seconds.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 || millis < 0 || millis > 999 {
		return 0, fmt.Errorf("timestamp out of range %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
