package report

import (
	"github.com/gregorizeidler-cw/themis-law-suits/internal/batch"
	"github.com/gregorizeidler-cw/themis-law-suits/internal/classify"
)

const highConfidenceFloor = 80

// Stats accumulates the summary figures printed at the end of a run.
// Confidence figures only move on semantic verdicts that carried one.
type Stats struct {
	Total        int
	Acquitted    int
	NotAcquitted int
	Unknown      int
	NoData       int
	Errors       int

	confidenceSum   int
	confidenceCount int
	HighConfidence  int
}

func (s *Stats) observe(res batch.Result) {
	s.Total++

	switch res.Status {
	case batch.StatusNoData:
		s.NoData++
	case batch.StatusError:
		s.Errors++
	}

	if res.Verdict == nil {
		return
	}

	switch res.Verdict.Outcome {
	case classify.OutcomeAcquitted:
		s.Acquitted++
	case classify.OutcomeNotAcquitted:
		s.NotAcquitted++
	default:
		s.Unknown++
	}

	if res.Verdict.Confidence != nil {
		s.confidenceSum += *res.Verdict.Confidence
		s.confidenceCount++

		if *res.Verdict.Confidence >= highConfidenceFloor {
			s.HighConfidence++
		}
	}
}

// AcquittedPercent reports acquittals as a share of all emitted rows.
func (s Stats) AcquittedPercent() float64 {
	if s.Total == 0 {
		return 0
	}

	return float64(s.Acquitted) / float64(s.Total) * 100
}

// MeanConfidence averages the confidence of semantic verdicts that reported
// one, or zero when none did.
func (s Stats) MeanConfidence() float64 {
	if s.confidenceCount == 0 {
		return 0
	}

	return float64(s.confidenceSum) / float64(s.confidenceCount)
}
