package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"subsync/internal/segments"
)

// Transcript is the ingestion input for one interview: per-word timestamps
// when the aligner produced them, and the plain transcript text as the
// fallback source when it did not.
type Transcript struct {
	Words    []segments.Word
	Text     string
	Language string
}

// Provider loads a transcript from some source handle (a file path for the
// file provider, possibly a remote ID for others).
type Provider interface {
	Load(ctx context.Context, source string) (*Transcript, error)
}

type whisperWord struct {
	Word    string   `json:"word"`
	Start   *float64 `json:"start"`
	End     *float64 `json:"end"`
	Score   *float64 `json:"score"`
	Speaker string   `json:"speaker"`
}

type whisperSegment struct {
	Text    string        `json:"text"`
	Start   float64       `json:"start"`
	End     float64       `json:"end"`
	Speaker string        `json:"speaker"`
	Words   []whisperWord `json:"words"`
}

type whisperPayload struct {
	Language string           `json:"language"`
	Segments []whisperSegment `json:"segments"`
}

// FileProvider reads WhisperX-style alignment JSON from disk. Words the
// aligner could not time (no start/end, typical for numerals) are carried
// through with NaN timing so the boundary detector can drop and count them.
type FileProvider struct{}

// NewFileProvider returns a provider reading alignment JSON files.
func NewFileProvider() *FileProvider {
	return &FileProvider{}
}

// Load reads and flattens one alignment file.
func (p *FileProvider) Load(_ context.Context, source string) (*Transcript, error) {
	if strings.TrimSpace(source) == "" {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, err
	}
	return parsePayload(data)
}

func parsePayload(data []byte) (*Transcript, error) {
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse alignment json: %w", err)
	}

	result := &Transcript{Language: strings.TrimSpace(payload.Language)}
	var textParts []string
	for _, seg := range payload.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			textParts = append(textParts, text)
		}
		for _, word := range seg.Words {
			text := strings.TrimSpace(word.Word)
			if text == "" {
				continue
			}
			w := segments.Word{Text: text, Confidence: word.Score}
			if word.Start != nil && word.End != nil {
				w.Start = *word.Start
				w.End = *word.End
			} else {
				w.Start = math.NaN()
				w.End = math.NaN()
			}
			if speaker := firstNonEmpty(word.Speaker, seg.Speaker); speaker != "" {
				w.Speaker = speaker
			}
			result.Words = append(result.Words, w)
		}
	}
	result.Text = strings.Join(textParts, " ")
	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
