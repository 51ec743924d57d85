package sentiment

import (
	"slices"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

// Describe computes summary statistics over the finite values. It returns nil when
// there are none.
func Describe(values []float64) *domain.NumericStats {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if finite(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return nil
	}
	slices.Sort(clean)

	var mean float64
	for i, v := range clean {
		mean = addMean(mean, v, i+1)
	}

	n := len(clean)
	median := clean[n/2]
	if n%2 == 0 {
		median = clean[n/2-1]/2 + clean[n/2]/2
	}

	dist := make([]domain.Bucket, 0)
	for _, v := range clean {
		if last := len(dist) - 1; last >= 0 && dist[last].Value == v {
			dist[last].Count++
			continue
		}
		dist = append(dist, domain.Bucket{Value: v, Count: 1})
	}

	return &domain.NumericStats{
		Count:        n,
		Mean:         mean,
		Median:       median,
		Min:          clean[0],
		Max:          clean[n-1],
		Distribution: dist,
	}
}

// addMean folds v into the mean of the previous n-1 values. Both terms are divided
// before they are combined, so values near ±math.MaxFloat64 never overflow to Inf.
func addMean(mean, v float64, n int) float64 {
	k := float64(n)
	return mean + (v/k - mean/k)
}
