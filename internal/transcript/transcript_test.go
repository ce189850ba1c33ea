package transcript

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const sampleAlignment = `{
  "language": "de",
  "segments": [
    {
      "text": " Guten Morgen allerseits.",
      "start": 0.0,
      "end": 1.8,
      "speaker": "SPEAKER_00",
      "words": [
        {"word": "Guten", "start": 0.0, "end": 0.5, "score": 0.98},
        {"word": "Morgen", "start": 0.6, "end": 1.1, "score": 0.95, "speaker": "SPEAKER_00"},
        {"word": "allerseits.", "start": 1.2, "end": 1.8, "score": 0.91}
      ]
    },
    {
      "text": "Im Jahr 1942.",
      "start": 2.5,
      "end": 4.0,
      "words": [
        {"word": "Im", "start": 2.5, "end": 2.7, "score": 0.99},
        {"word": "Jahr", "start": 2.8, "end": 3.1, "score": 0.97},
        {"word": "1942."}
      ]
    }
  ]
}`

func writeAlignment(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alignment.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write alignment file: %v", err)
	}
	return path
}

func TestFileProviderLoad(t *testing.T) {
	path := writeAlignment(t, sampleAlignment)

	loaded, err := NewFileProvider().Load(t.Context(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Language != "de" {
		t.Fatalf("expected language de, got %q", loaded.Language)
	}
	if len(loaded.Words) != 6 {
		t.Fatalf("expected 6 words, got %d", len(loaded.Words))
	}
	if loaded.Words[0].Text != "Guten" || loaded.Words[0].End != 0.5 {
		t.Fatalf("unexpected first word: %+v", loaded.Words[0])
	}
	// Word-level speaker wins; segment speaker fills the rest.
	if loaded.Words[1].Speaker != "SPEAKER_00" || loaded.Words[0].Speaker != "SPEAKER_00" {
		t.Fatalf("speaker attribution wrong: %+v", loaded.Words[:2])
	}
	if loaded.Words[2].Confidence == nil || *loaded.Words[2].Confidence != 0.91 {
		t.Fatalf("confidence not carried: %+v", loaded.Words[2])
	}
	if loaded.Text != "Guten Morgen allerseits. Im Jahr 1942." {
		t.Fatalf("unexpected transcript text: %q", loaded.Text)
	}
}

func TestFileProviderUntimedWord(t *testing.T) {
	path := writeAlignment(t, sampleAlignment)

	loaded, err := NewFileProvider().Load(t.Context(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// "1942." has no alignment; it survives with NaN timing so the detector
	// drops and counts it instead of it silently vanishing here.
	last := loaded.Words[len(loaded.Words)-1]
	if last.Text != "1942." || !math.IsNaN(last.Start) || !math.IsNaN(last.End) {
		t.Fatalf("unexpected untimed word: %+v", last)
	}
	if last.HasValidTiming() {
		t.Fatal("untimed word must not report valid timing")
	}
}

func TestFileProviderErrors(t *testing.T) {
	provider := NewFileProvider()
	if _, err := provider.Load(t.Context(), ""); err == nil {
		t.Fatal("expected error for empty source")
	}
	if _, err := provider.Load(t.Context(), filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	badPath := writeAlignment(t, "{not json")
	if _, err := provider.Load(t.Context(), badPath); err == nil {
		t.Fatal("expected error for malformed json")
	}
}
