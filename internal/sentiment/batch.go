package sentiment

import (
	"github.com/pscheid92/reviewpulse/internal/domain"
)

// Label fills in the label of every record with a finite score and marks the rest
// invalid. Records are updated in place and returned for chaining.
func Label(records []domain.ScoredRecord, kind domain.Kind) []domain.ScoredRecord {
	for i := range records {
		r := &records[i]
		if r.Score == nil || !finite(*r.Score) {
			r.Score = nil
			r.Label = ""
			r.Valid = false
			continue
		}
		r.Label = Classify(*r.Score, kind)
		r.Valid = true
	}
	return records
}

// SummarizeBatch aggregates a labelled batch. Invalid records count towards Total
// only. For rescaled batches the mean is taken over the raw values, so the numeric
// narrative reports it on the original scale.
func SummarizeBatch(records []domain.ScoredRecord, kind domain.Kind) domain.BatchSummary {
	summary := domain.BatchSummary{
		Kind:  kind,
		Total: len(records),
	}

	var mean float64
	for _, r := range records {
		if !r.Valid || r.Score == nil || !finite(*r.Score) {
			continue
		}
		basis := *r.Score
		if kind == domain.KindRescaled {
			if r.Value == nil || !finite(*r.Value) {
				continue
			}
			basis = *r.Value
		}
		summary.Counts.Add(r.Label)
		mean = addMean(mean, basis, summary.Counts.Total())
	}

	summary.Valid = summary.Counts.Total()
	if summary.Valid == 0 {
		summary.Tier = domain.TierNoData
		summary.Narrative = NoDataNarrative()
		return summary
	}

	n := float64(summary.Valid)
	summary.Mean = mean
	summary.Percentages = domain.Percentages{
		Positive: float64(summary.Counts.Positive) / n * 100,
		Neutral:  float64(summary.Counts.Neutral) / n * 100,
		Negative: float64(summary.Counts.Negative) / n * 100,
	}

	narrative := kind.Narrative()
	summary.Tier = SelectTier(summary.Mean, narrative)
	summary.Narrative = Summarize(summary.Percentages, summary.Mean, narrative)
	return summary
}
