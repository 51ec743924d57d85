package domain

import (
	"fmt"
	"strings"
)

// Label is the three-way sentiment category assigned to a score.
type Label string

const (
	LabelPositive Label = "Positive"
	LabelNeutral  Label = "Neutral"
	LabelNegative Label = "Negative"
)

// Labels lists every label from worst to best.
var Labels = []Label{LabelNegative, LabelNeutral, LabelPositive}

// Rank orders labels so that a higher rank is a better sentiment.
// Unknown labels rank below Negative.
func (l Label) Rank() int {
	switch l {
	case LabelNegative:
		return 0
	case LabelNeutral:
		return 1
	case LabelPositive:
		return 2
	default:
		return -1
	}
}

// Kind selects the scale a score lives on and therefore the rule used to label it.
type Kind string

const (
	// KindPolarity is a text polarity in [-1, 1].
	KindPolarity Kind = "polarity"
	// KindRating is a star rating on a 1-5 scale.
	KindRating Kind = "rating"
	// KindRescaled is a numeric value min-max scaled into [-1, 1].
	KindRescaled Kind = "rescaled"
)

// ParseKind resolves a kind name case-insensitively. Unknown names wrap ErrUnknownKind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindPolarity, KindRating, KindRescaled:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Numeric reports whether records of this kind carry a numeric value rather than text.
func (k Kind) Numeric() bool {
	return k == KindRating || k == KindRescaled
}

// Narrative returns the template family used to summarize a batch of this kind.
func (k Kind) Narrative() NarrativeKind {
	if k.Numeric() {
		return NarrativeNumeric
	}
	return NarrativeText
}

// NarrativeKind selects the summary template family.
type NarrativeKind string

const (
	NarrativeNumeric NarrativeKind = "numeric"
	NarrativeText    NarrativeKind = "text"
)

// ParseNarrativeKind accepts a template family name or any Kind, which maps to
// its family.
func ParseNarrativeKind(s string) (NarrativeKind, error) {
	switch nk := NarrativeKind(strings.ToLower(strings.TrimSpace(s))); nk {
	case NarrativeNumeric, NarrativeText:
		return nk, nil
	}
	k, err := ParseKind(s)
	if err != nil {
		return "", err
	}
	return k.Narrative(), nil
}

// Tier is the narrative bucket selected by thresholding a batch mean.
type Tier string

const (
	TierExcellent    Tier = "excellent"
	TierVeryGood     Tier = "very_good"
	TierGood         Tier = "good"
	TierModerate     Tier = "moderate"
	TierBelowAverage Tier = "below_average"
	TierPoor         Tier = "poor"

	TierHighlyPositive Tier = "highly_positive"
	TierPositive       Tier = "positive"
	TierNeutral        Tier = "neutral"
	TierNegative       Tier = "negative"
	TierVeryNegative   Tier = "very_negative"

	TierNoData Tier = "no_data"
)
