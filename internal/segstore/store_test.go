package segstore_test

import (
	"context"
	"errors"
	"testing"

	"subsync/internal/segments"
	"subsync/internal/segstore"
	"subsync/internal/testsupport"
)

func seg(interviewID string, index int, start, end float64, text string) segments.Segment {
	return segments.Segment{
		InterviewID: interviewID,
		Index:       index,
		Start:       start,
		End:         end,
		Text:        text,
	}
}

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.SeedInterview(t, store, "intv-1", "de")

	interview, err := store.GetInterview(ctx, "intv-1")
	if err != nil {
		t.Fatalf("GetInterview failed: %v", err)
	}
	if interview.SourceLanguage != "de" {
		t.Fatalf("unexpected interview: %#v", interview)
	}

	all, err := store.ListInterviews(ctx)
	if err != nil {
		t.Fatalf("ListInterviews failed: %v", err)
	}
	if len(all) != 1 || all[0].ID != "intv-1" {
		t.Fatalf("unexpected listing: %#v", all)
	}
}

func TestGetInterviewMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.GetInterview(context.Background(), "nope"); !errors.Is(err, segstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertSegmentIsUpdateNotDuplicate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.SeedInterview(t, store, "intv-1", "de")

	first := seg("intv-1", 0, 0, 1.5, "erste Fassung")
	if err := store.UpsertSegment(ctx, &first); err != nil {
		t.Fatalf("UpsertSegment failed: %v", err)
	}

	second := seg("intv-1", 0, 0, 1.6, "zweite Fassung")
	if err := store.UpsertSegment(ctx, &second); err != nil {
		t.Fatalf("re-insert failed: %v", err)
	}

	stored, err := store.GetSegments(ctx, "intv-1")
	if err != nil {
		t.Fatalf("GetSegments failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected update semantics, got %d rows", len(stored))
	}
	if stored[0].Text != "zweite Fassung" || stored[0].End != 1.6 {
		t.Fatalf("unexpected stored segment: %+v", stored[0])
	}
}

func TestUpsertSegmentRejectsInvariantViolations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.SeedInterview(t, store, "intv-1", "de")

	nonPositive := seg("intv-1", 0, 2.0, 2.0, "no duration")
	if err := store.UpsertSegment(ctx, &nonPositive); !errors.Is(err, segstore.ErrConstraint) {
		t.Fatalf("expected ErrConstraint for zero duration, got %v", err)
	}

	badConfidence := seg("intv-1", 0, 0, 1, "ok")
	confidence := 1.5
	badConfidence.Confidence = &confidence
	if err := store.UpsertSegment(ctx, &badConfidence); !errors.Is(err, segstore.ErrConstraint) {
		t.Fatalf("expected ErrConstraint for confidence out of range, got %v", err)
	}

	anchor := seg("intv-1", 0, 5, 6, "anchor")
	if err := store.UpsertSegment(ctx, &anchor); err != nil {
		t.Fatalf("UpsertSegment failed: %v", err)
	}
	outOfOrder := seg("intv-1", 1, 2, 3, "earlier than predecessor")
	if err := store.UpsertSegment(ctx, &outOfOrder); !errors.Is(err, segstore.ErrConstraint) {
		t.Fatalf("expected ErrConstraint for ordering violation, got %v", err)
	}

	orphan := seg("ghost", 0, 0, 1, "no interview")
	if err := store.UpsertSegment(ctx, &orphan); !errors.Is(err, segstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing interview, got %v", err)
	}
}

func TestReplaceSegmentsIsAtomic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.SeedInterview(t, store, "intv-1", "de")

	original := []segments.Segment{
		seg("intv-1", 0, 0, 1, "alt eins"),
		seg("intv-1", 1, 1, 2, "alt zwei"),
	}
	if err := store.ReplaceSegments(ctx, "intv-1", original); err != nil {
		t.Fatalf("ReplaceSegments failed: %v", err)
	}
	if err := store.UpsertTranslation(ctx, "intv-1", 0, "en", "old one"); err != nil {
		t.Fatalf("UpsertTranslation failed: %v", err)
	}

	invalid := []segments.Segment{
		seg("intv-1", 0, 0, 1, "neu"),
		seg("intv-1", 2, 1, 2, "index gap"),
	}
	if err := store.ReplaceSegments(ctx, "intv-1", invalid); !errors.Is(err, segstore.ErrConstraint) {
		t.Fatalf("expected ErrConstraint, got %v", err)
	}
	stored, err := store.GetSegments(ctx, "intv-1")
	if err != nil {
		t.Fatalf("GetSegments failed: %v", err)
	}
	if len(stored) != 2 || stored[0].Text != "alt eins" {
		t.Fatalf("rejected replace must leave prior set intact: %+v", stored)
	}

	replacement := []segments.Segment{
		seg("intv-1", 0, 0, 2, "neu eins"),
		seg("intv-1", 1, 2, 4, "neu zwei"),
		seg("intv-1", 2, 4, 6, "neu drei"),
	}
	if err := store.ReplaceSegments(ctx, "intv-1", replacement); err != nil {
		t.Fatalf("ReplaceSegments failed: %v", err)
	}
	stored, err = store.GetSegments(ctx, "intv-1")
	if err != nil {
		t.Fatalf("GetSegments failed: %v", err)
	}
	if len(stored) != 3 || stored[2].Text != "neu drei" {
		t.Fatalf("unexpected replacement result: %+v", stored)
	}
	// Translations of the replaced set must be gone.
	if len(stored[0].Translations) != 0 {
		t.Fatalf("expected stale translations to be removed, got %+v", stored[0].Translations)
	}
}

func TestTranslationsDoNotTouchTiming(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.SeedInterview(t, store, "intv-1", "de")

	confidence := 0.93
	original := seg("intv-1", 0, 1.25, 3.75, "Guten Tag")
	original.Confidence = &confidence
	original.Speaker = "A"
	if err := store.UpsertSegment(ctx, &original); err != nil {
		t.Fatalf("UpsertSegment failed: %v", err)
	}

	if err := store.UpsertTranslation(ctx, "intv-1", 0, "en", "Good day"); err != nil {
		t.Fatalf("UpsertTranslation failed: %v", err)
	}
	if err := store.UpsertTranslation(ctx, "intv-1", 0, "en", "Hello"); err != nil {
		t.Fatalf("translation overwrite failed: %v", err)
	}
	if err := store.UpsertTranslation(ctx, "intv-1", 0, "he", "שלום"); err != nil {
		t.Fatalf("second language failed: %v", err)
	}

	stored, err := store.GetSegments(ctx, "intv-1")
	if err != nil {
		t.Fatalf("GetSegments failed: %v", err)
	}
	got := stored[0]
	if got.Start != 1.25 || got.End != 3.75 {
		t.Fatalf("translation write altered timing: %+v", got)
	}
	if got.Translations["en"] != "Hello" || got.Translations["he"] != "שלום" {
		t.Fatalf("unexpected translations: %+v", got.Translations)
	}
	if got.Speaker != "A" || got.Confidence == nil || *got.Confidence != 0.93 {
		t.Fatalf("segment fields lost on read: %+v", got)
	}

	languages, err := store.Languages(ctx, "intv-1")
	if err != nil {
		t.Fatalf("Languages failed: %v", err)
	}
	if len(languages) != 2 || languages[0] != "en" || languages[1] != "he" {
		t.Fatalf("unexpected languages: %v", languages)
	}
}

func TestUpsertTranslationMissingSegment(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.SeedInterview(t, store, "intv-1", "de")

	if err := store.UpsertTranslation(ctx, "intv-1", 3, "en", "text"); !errors.Is(err, segstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertTranslationsAllOrNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.SeedInterview(t, store, "intv-1", "de")

	set := []segments.Segment{
		seg("intv-1", 0, 0, 1, "eins"),
		seg("intv-1", 1, 1, 2, "zwei"),
	}
	if err := store.ReplaceSegments(ctx, "intv-1", set); err != nil {
		t.Fatalf("ReplaceSegments failed: %v", err)
	}

	// Index 9 does not exist, so the whole batch must be rejected.
	err := store.UpsertTranslations(ctx, "intv-1", "en", map[int]string{
		0: "one",
		9: "phantom",
	})
	if !errors.Is(err, segstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	stored, err := store.GetSegments(ctx, "intv-1")
	if err != nil {
		t.Fatalf("GetSegments failed: %v", err)
	}
	if len(stored[0].Translations) != 0 {
		t.Fatalf("partial batch application: %+v", stored[0].Translations)
	}

	if err := store.UpsertTranslations(ctx, "intv-1", "en", map[int]string{0: "one", 1: "two"}); err != nil {
		t.Fatalf("UpsertTranslations failed: %v", err)
	}
	stored, err = store.GetSegments(ctx, "intv-1")
	if err != nil {
		t.Fatalf("GetSegments failed: %v", err)
	}
	if stored[0].Translations["en"] != "one" || stored[1].Translations["en"] != "two" {
		t.Fatalf("unexpected batch result: %+v", stored)
	}
}

func TestGetSegmentsInRange(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.SeedInterview(t, store, "intv-1", "de")

	set := []segments.Segment{
		seg("intv-1", 0, 0, 2, "eins"),
		seg("intv-1", 1, 2, 4, "zwei"),
		seg("intv-1", 2, 5, 7, "drei"),
	}
	if err := store.ReplaceSegments(ctx, "intv-1", set); err != nil {
		t.Fatalf("ReplaceSegments failed: %v", err)
	}

	got, err := store.GetSegmentsInRange(ctx, "intv-1", 1.5, 5.5)
	if err != nil {
		t.Fatalf("GetSegmentsInRange failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 overlapping segments, got %+v", got)
	}

	got, err = store.GetSegmentsInRange(ctx, "intv-1", 4, 5)
	if err != nil {
		t.Fatalf("GetSegmentsInRange failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no segments in silent window, got %+v", got)
	}

	if _, err := store.GetSegmentsInRange(ctx, "intv-1", 5, 5); !errors.Is(err, segstore.ErrConstraint) {
		t.Fatalf("expected ErrConstraint for empty range, got %v", err)
	}
}

func TestGetSegmentsEmptyInterview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.SeedInterview(t, store, "intv-1", "de")

	got, err := store.GetSegments(ctx, "intv-1")
	if err != nil {
		t.Fatalf("GetSegments failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected zero segments, got %+v", got)
	}
}
