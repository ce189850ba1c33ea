package translate_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"subsync/internal/segments"
	"subsync/internal/translate"
)

type fakeTranslator struct {
	mu     sync.Mutex
	calls  [][]string
	fn     func(texts []string, target string) ([]string, error)
	delays time.Duration
}

func (f *fakeTranslator) Translate(ctx context.Context, texts []string, target string) ([]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), texts...))
	f.mu.Unlock()
	if f.delays > 0 {
		select {
		case <-time.After(f.delays):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.fn != nil {
		return f.fn(texts, target)
	}
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = "[" + target + "] " + text
	}
	return out, nil
}

type fakeClassifier struct {
	fn func(text string) (string, error)
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (string, error) {
	if f.fn != nil {
		return f.fn(text)
	}
	return "de", nil
}

type memoryStore struct {
	mu     sync.Mutex
	writes []map[int]string
	texts  map[string]map[int]string
	fail   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{texts: make(map[string]map[int]string)}
}

func (m *memoryStore) UpsertTranslations(_ context.Context, _ string, lang string, texts map[int]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	copied := make(map[int]string, len(texts))
	for k, v := range texts {
		copied[k] = v
	}
	m.writes = append(m.writes, copied)
	if m.texts[lang] == nil {
		m.texts[lang] = make(map[int]string)
	}
	for k, v := range texts {
		m.texts[lang][k] = v
	}
	return nil
}

func makeSegments(texts ...string) []segments.Segment {
	segs := make([]segments.Segment, len(texts))
	cursor := 0.0
	for i, text := range texts {
		segs[i] = segments.Segment{
			InterviewID: "intv-1",
			Index:       i,
			Start:       cursor,
			End:         cursor + 2,
			Text:        text,
		}
		cursor += 2.5
	}
	return segs
}

func TestRunPreservesMatchingLanguage(t *testing.T) {
	classifier := &fakeClassifier{fn: func(text string) (string, error) {
		if strings.HasPrefix(text, "EN") {
			return "eng", nil // ISO-3 codes must still match the two-letter target
		}
		return "de", nil
	}}
	translator := &fakeTranslator{}
	store := newMemoryStore()
	coord := translate.NewCoordinator(translator, classifier, store, translate.Options{}, nil)

	segs := makeSegments("EN already english", "Deutscher Satz", "EN again", "Noch einer")
	outcome, err := coord.Run(t.Context(), "intv-1", segs, "en")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := outcome.Preserved; len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("unexpected preserved set: %v", got)
	}
	if got := outcome.Translated; len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("unexpected translated set: %v", got)
	}
	if len(outcome.Failed) != 0 {
		t.Fatalf("unexpected failures: %v", outcome.Failed)
	}
	if outcome.Texts[0] != "EN already english" {
		t.Fatalf("preserved text altered: %q", outcome.Texts[0])
	}
	if outcome.Texts[1] != "[en] Deutscher Satz" {
		t.Fatalf("translated text wrong: %q", outcome.Texts[1])
	}
	if store.texts["en"][2] != "EN again" {
		t.Fatalf("preserved text not persisted: %v", store.texts["en"])
	}
	// Only the mismatched segments may reach the provider.
	if len(translator.calls) != 1 || len(translator.calls[0]) != 2 {
		t.Fatalf("unexpected provider calls: %v", translator.calls)
	}
}

func TestRunKeepsBatchOrderAlignment(t *testing.T) {
	translator := &fakeTranslator{}
	store := newMemoryStore()
	coord := translate.NewCoordinator(translator, &fakeClassifier{}, store, translate.Options{BatchSize: 3}, nil)

	var texts []string
	for i := 0; i < 10; i++ {
		texts = append(texts, fmt.Sprintf("satz %02d", i))
	}
	outcome, err := coord.Run(t.Context(), "intv-1", makeSegments(texts...), "en")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(translator.calls) != 4 {
		t.Fatalf("expected 4 batches of size 3, got %d calls", len(translator.calls))
	}
	for i := 0; i < 10; i++ {
		want := fmt.Sprintf("[en] satz %02d", i)
		if outcome.Texts[i] != want {
			t.Fatalf("segment %d got %q, want %q", i, outcome.Texts[i], want)
		}
	}
}

func TestRunBatchFailureIsIsolated(t *testing.T) {
	var batchNo int
	translator := &fakeTranslator{fn: func(texts []string, target string) ([]string, error) {
		batchNo++
		if batchNo == 2 {
			return nil, errors.New("provider unavailable")
		}
		out := make([]string, len(texts))
		for i, text := range texts {
			out[i] = "[" + target + "] " + text
		}
		return out, nil
	}}
	store := newMemoryStore()
	coord := translate.NewCoordinator(translator, &fakeClassifier{}, store, translate.Options{BatchSize: 2}, nil)

	outcome, err := coord.Run(t.Context(), "intv-1", makeSegments("a", "b", "c", "d", "e", "f"), "en")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(outcome.Translated) != 4 {
		t.Fatalf("expected 4 translated segments, got %v", outcome.Translated)
	}
	for _, index := range []int{2, 3} {
		if _, ok := outcome.Failed[index]; !ok {
			t.Fatalf("segment %d should be failed: %v", index, outcome.Failed)
		}
		if _, ok := outcome.Texts[index]; ok {
			t.Fatalf("failed segment %d must have no text", index)
		}
	}
	if outcome.Complete() {
		t.Fatal("outcome with failures must not report complete")
	}
	// The failed batch must not leave partial rows behind.
	for _, write := range store.writes {
		if _, ok := write[2]; ok {
			t.Fatalf("failed batch leaked into store: %v", write)
		}
	}
}

func TestRunLengthMismatchFailsBatch(t *testing.T) {
	translator := &fakeTranslator{fn: func(texts []string, _ string) ([]string, error) {
		return texts[:len(texts)-1], nil
	}}
	coord := translate.NewCoordinator(translator, &fakeClassifier{}, newMemoryStore(), translate.Options{}, nil)

	outcome, err := coord.Run(t.Context(), "intv-1", makeSegments("a", "b"), "en")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(outcome.Failed) != 2 {
		t.Fatalf("short provider response must fail the whole batch: %v", outcome.Failed)
	}
}

func TestRunClassificationFailureTranslates(t *testing.T) {
	classifier := &fakeClassifier{fn: func(string) (string, error) {
		return "", errors.New("detector offline")
	}}
	translator := &fakeTranslator{}
	coord := translate.NewCoordinator(translator, classifier, newMemoryStore(), translate.Options{}, nil)

	outcome, err := coord.Run(t.Context(), "intv-1", makeSegments("could be english"), "en")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(outcome.Preserved) != 0 || len(outcome.Translated) != 1 {
		t.Fatalf("classification failure must translate, got %+v", outcome)
	}
}

func TestRunBatchTimeout(t *testing.T) {
	translator := &fakeTranslator{delays: 200 * time.Millisecond}
	coord := translate.NewCoordinator(translator, &fakeClassifier{}, newMemoryStore(), translate.Options{
		BatchTimeout: 20 * time.Millisecond,
	}, nil)

	outcome, err := coord.Run(t.Context(), "intv-1", makeSegments("langsam"), "en")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	reason, ok := outcome.Failed[0]
	if !ok {
		t.Fatalf("timed-out batch must fail: %+v", outcome)
	}
	if !strings.Contains(reason, "timed out") {
		t.Fatalf("unexpected failure reason: %q", reason)
	}
}

func TestRunStoreFailurePropagates(t *testing.T) {
	store := newMemoryStore()
	store.fail = errors.New("disk full")
	coord := translate.NewCoordinator(&fakeTranslator{}, &fakeClassifier{}, store, translate.Options{}, nil)

	if _, err := coord.Run(t.Context(), "intv-1", makeSegments("a"), "en"); err == nil {
		t.Fatal("store failure must surface as an error")
	}
}

func TestRunRejectsUnknownTarget(t *testing.T) {
	coord := translate.NewCoordinator(&fakeTranslator{}, &fakeClassifier{}, newMemoryStore(), translate.Options{}, nil)
	if _, err := coord.Run(t.Context(), "intv-1", makeSegments("a"), "klingon"); err == nil {
		t.Fatal("expected error for unknown language code")
	}
}

func TestRunEmptyInput(t *testing.T) {
	translator := &fakeTranslator{}
	coord := translate.NewCoordinator(translator, &fakeClassifier{}, newMemoryStore(), translate.Options{}, nil)

	outcome, err := coord.Run(t.Context(), "intv-1", nil, "en")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcome.Complete() || len(outcome.Texts) != 0 || len(translator.calls) != 0 {
		t.Fatalf("empty input must be a no-op: %+v", outcome)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	translator := &fakeTranslator{}
	store := newMemoryStore()
	coord := translate.NewCoordinator(translator, &fakeClassifier{}, store, translate.Options{}, nil)

	segs := makeSegments("einmal", "zweimal")
	first, err := coord.Run(t.Context(), "intv-1", segs, "en")
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	second, err := coord.Run(t.Context(), "intv-1", segs, "en")
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	for i := range segs {
		if first.Texts[i] != second.Texts[i] {
			t.Fatalf("re-run diverged at %d: %q != %q", i, first.Texts[i], second.Texts[i])
		}
	}
	if store.texts["en"][0] != "[en] einmal" {
		t.Fatalf("unexpected stored text: %v", store.texts["en"])
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	translator := &fakeTranslator{}
	coord := translate.NewCoordinator(translator, &fakeClassifier{}, newMemoryStore(), translate.Options{}, nil)

	outcome, err := coord.Run(ctx, "intv-1", makeSegments("a", "b"), "en")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(outcome.Failed) != 2 {
		t.Fatalf("cancelled run must fail pending segments: %+v", outcome)
	}
	if len(translator.calls) != 0 {
		t.Fatalf("cancelled run must not dispatch provider calls: %v", translator.calls)
	}
}
