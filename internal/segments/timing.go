package segments

// Quality thresholds used by the timing validator's descriptive statistics.
const (
	shortSegmentSeconds    = 1.0
	longSegmentSeconds     = 10.0
	lowConfidenceThreshold = 0.8
)

// Adjacency describes a timing defect (or intentional pause) between two
// consecutive segments. Seconds is always positive.
type Adjacency struct {
	PrevIndex int
	NextIndex int
	Seconds   float64
}

// Stats carries descriptive quality metrics for one interview's segments.
// AvgConfidence is nil when no segment reports a confidence score.
type Stats struct {
	Count              int
	AvgDuration        float64
	MinDuration        float64
	MaxDuration        float64
	AvgConfidence      *float64
	ShortCount         int
	LongCount          int
	LowConfidenceCount int
	FallbackCount      int
}

// Report is the outcome of analyzing one interview's ordered segment list.
type Report struct {
	Gaps     []Adjacency
	Overlaps []Adjacency
	Stats    Stats
}

// Analyze inspects consecutive segments for gaps and overlaps and computes
// aggregate quality metrics. It never mutates or discards segments; callers
// decide what, if anything, to do about reported defects. Zero-length
// adjacency (next starts exactly where the previous ends) is neither a gap nor
// an overlap.
func Analyze(segs []Segment) Report {
	report := Report{Stats: Stats{Count: len(segs)}}
	if len(segs) == 0 {
		return report
	}

	var totalDuration float64
	var confSum float64
	var confCount int
	report.Stats.MinDuration = segs[0].Duration()

	for i, seg := range segs {
		duration := seg.Duration()
		totalDuration += duration
		if duration < report.Stats.MinDuration {
			report.Stats.MinDuration = duration
		}
		if duration > report.Stats.MaxDuration {
			report.Stats.MaxDuration = duration
		}
		if duration < shortSegmentSeconds {
			report.Stats.ShortCount++
		}
		if duration > longSegmentSeconds {
			report.Stats.LongCount++
		}
		if seg.Fallback {
			report.Stats.FallbackCount++
		}
		if seg.Confidence != nil {
			confSum += *seg.Confidence
			confCount++
			if *seg.Confidence < lowConfidenceThreshold {
				report.Stats.LowConfidenceCount++
			}
		}

		if i == 0 {
			continue
		}
		prev := segs[i-1]
		switch {
		case seg.Start > prev.End:
			report.Gaps = append(report.Gaps, Adjacency{
				PrevIndex: prev.Index,
				NextIndex: seg.Index,
				Seconds:   seg.Start - prev.End,
			})
		case seg.Start < prev.End:
			report.Overlaps = append(report.Overlaps, Adjacency{
				PrevIndex: prev.Index,
				NextIndex: seg.Index,
				Seconds:   prev.End - seg.Start,
			})
		}
	}

	report.Stats.AvgDuration = totalDuration / float64(len(segs))
	if confCount > 0 {
		mean := confSum / float64(confCount)
		report.Stats.AvgConfidence = &mean
	}
	return report
}
