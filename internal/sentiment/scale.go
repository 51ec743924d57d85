package sentiment

import "math"

// Rescale min-max scales values into [-1, 1]. Non-finite values are left out of the
// fit and come back as NaN. A column with a single distinct value maps to 0.
// The span is taken over halves so the extremes of float64 stay finite.
func Rescale(values []float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !finite(v) {
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}

	out := make([]float64, len(values))
	span := hi/2 - lo/2
	for i, v := range values {
		switch {
		case !finite(v):
			out[i] = math.NaN()
		case span == 0:
			out[i] = 0
		default:
			out[i] = clamp(-1 + 2*((v/2-lo/2)/span))
		}
	}
	return out
}
