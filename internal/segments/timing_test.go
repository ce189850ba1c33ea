package segments_test

import (
	"math"
	"testing"

	"subsync/internal/segments"
)

func timedSegment(index int, start, end float64) segments.Segment {
	return segments.Segment{
		InterviewID: "intv-1",
		Index:       index,
		Start:       start,
		End:         end,
		Text:        "text",
	}
}

func TestAnalyzeReportsGaps(t *testing.T) {
	segs := []segments.Segment{
		timedSegment(0, 0, 2),
		timedSegment(1, 2.5, 4.5),
		timedSegment(2, 5, 7),
	}

	report := segments.Analyze(segs)
	if len(report.Gaps) != 2 {
		t.Fatalf("expected 2 gaps, got %+v", report.Gaps)
	}
	for _, gap := range report.Gaps {
		if math.Abs(gap.Seconds-0.5) > 1e-9 {
			t.Fatalf("expected 0.5s gap, got %+v", gap)
		}
	}
	if report.Gaps[0].PrevIndex != 0 || report.Gaps[0].NextIndex != 1 {
		t.Fatalf("unexpected first gap indices: %+v", report.Gaps[0])
	}
	if len(report.Overlaps) != 0 {
		t.Fatalf("expected no overlaps, got %+v", report.Overlaps)
	}
}

func TestAnalyzeReportsOverlaps(t *testing.T) {
	segs := []segments.Segment{
		timedSegment(0, 0, 2.5),
		timedSegment(1, 2.0, 4.0),
	}

	report := segments.Analyze(segs)
	if len(report.Overlaps) != 1 {
		t.Fatalf("expected 1 overlap, got %+v", report.Overlaps)
	}
	if math.Abs(report.Overlaps[0].Seconds-0.5) > 1e-9 {
		t.Fatalf("expected 0.5s overlap, got %+v", report.Overlaps[0])
	}
	if len(report.Gaps) != 0 {
		t.Fatalf("expected no gaps, got %+v", report.Gaps)
	}
}

func TestAnalyzeExactAdjacencyIsClean(t *testing.T) {
	segs := []segments.Segment{
		timedSegment(0, 0, 2),
		timedSegment(1, 2, 4),
	}

	report := segments.Analyze(segs)
	if len(report.Gaps) != 0 || len(report.Overlaps) != 0 {
		t.Fatalf("exact adjacency must be neither gap nor overlap: %+v", report)
	}
}

func TestAnalyzeStats(t *testing.T) {
	lowConf := 0.5
	highConf := 0.9
	segs := []segments.Segment{
		{InterviewID: "intv-1", Index: 0, Start: 0, End: 0.5, Text: "short", Confidence: &lowConf},
		{InterviewID: "intv-1", Index: 1, Start: 1, End: 13, Text: "long", Confidence: &highConf},
		{InterviewID: "intv-1", Index: 2, Start: 13, End: 15, Text: "synthetic", Fallback: true},
	}

	stats := segments.Analyze(segs).Stats
	if stats.Count != 3 {
		t.Fatalf("count = %d", stats.Count)
	}
	if stats.ShortCount != 1 || stats.LongCount != 1 || stats.FallbackCount != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.LowConfidenceCount != 1 {
		t.Fatalf("expected 1 low-confidence segment, got %d", stats.LowConfidenceCount)
	}
	if stats.MinDuration != 0.5 || stats.MaxDuration != 12 {
		t.Fatalf("unexpected duration bounds: %+v", stats)
	}
	if stats.AvgConfidence == nil || math.Abs(*stats.AvgConfidence-0.7) > 1e-9 {
		t.Fatalf("expected avg confidence 0.7 over reporting segments, got %v", stats.AvgConfidence)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	report := segments.Analyze(nil)
	if report.Stats.Count != 0 || report.Stats.AvgConfidence != nil {
		t.Fatalf("unexpected report for empty input: %+v", report)
	}
}

func TestValidateOrdering(t *testing.T) {
	good := []segments.Segment{
		timedSegment(0, 0, 1),
		timedSegment(1, 1, 2),
		timedSegment(2, 1, 3),
	}
	if err := segments.ValidateOrdering(good); err != nil {
		t.Fatalf("expected valid ordering, got %v", err)
	}

	decreasing := []segments.Segment{
		timedSegment(0, 5, 6),
		timedSegment(1, 1, 2),
	}
	if err := segments.ValidateOrdering(decreasing); err == nil {
		t.Fatal("expected error for decreasing start times")
	}

	gapInIndices := []segments.Segment{
		timedSegment(0, 0, 1),
		timedSegment(2, 1, 2),
	}
	if err := segments.ValidateOrdering(gapInIndices); err == nil {
		t.Fatal("expected error for non-contiguous indices")
	}
}

func TestSetTranslationNeverTouchesTiming(t *testing.T) {
	seg := timedSegment(0, 1.25, 4.75)
	seg.SetTranslation("de", "Hallo Welt")
	seg.SetTranslation("de", "Hallo nochmal")
	seg.SetTranslation("he", "שלום")

	if seg.Start != 1.25 || seg.End != 4.75 || seg.Index != 0 {
		t.Fatalf("translation mutated timing: %+v", seg)
	}
	if seg.Translations["de"] != "Hallo nochmal" {
		t.Fatalf("expected overwrite semantics, got %q", seg.Translations["de"])
	}
	if text, ok := seg.TextForLanguage("he"); !ok || text != "שלום" {
		t.Fatalf("unexpected hebrew text %q", text)
	}
	if text, ok := seg.TextForLanguage("original"); !ok || text != "text" {
		t.Fatalf("unexpected original text %q", text)
	}
	if _, ok := seg.TextForLanguage("fr"); ok {
		t.Fatal("expected missing language to report absence")
	}
}
