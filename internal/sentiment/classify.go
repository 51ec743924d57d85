package sentiment

import (
	"math"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

const (
	polarityThreshold = 0.1

	// Ratings are bucketed on the 3-point scale 1-2 / 3 / 4-5, with the boundaries
	// halfway between the integers so the rule stays monotonic for fractional input.
	ratingNegativeBelow = 2.5
	ratingNeutralBelow  = 3.5

	rescaledThreshold = 0.1
)

// Classify maps score to a label using the rule of kind. It is total: NaN yields
// Neutral, infinities follow the comparisons, and an unknown kind uses the
// polarity rule.
func Classify(score float64, kind domain.Kind) domain.Label {
	if math.IsNaN(score) {
		return domain.LabelNeutral
	}

	switch kind {
	case domain.KindRating:
		switch {
		case score < ratingNegativeBelow:
			return domain.LabelNegative
		case score < ratingNeutralBelow:
			return domain.LabelNeutral
		default:
			return domain.LabelPositive
		}
	case domain.KindRescaled:
		switch {
		case score <= -rescaledThreshold:
			return domain.LabelNegative
		case score <= rescaledThreshold:
			return domain.LabelNeutral
		default:
			return domain.LabelPositive
		}
	default:
		switch {
		case score > polarityThreshold:
			return domain.LabelPositive
		case score < -polarityThreshold:
			return domain.LabelNegative
		default:
			return domain.LabelNeutral
		}
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
