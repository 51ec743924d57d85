package sentiment

import (
	"fmt"
	"strings"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

// negativeAlertPct is the negative share above which a warning note is appended.
const negativeAlertPct = 30.0

type tierTemplate struct {
	min  float64
	tier domain.Tier
	body string
}

// numericTiers must stay ordered by descending min; the last entry is the fallback.
var numericTiers = []tierTemplate{
	{4.5, domain.TierExcellent, "Excellent overall sentiment regarding work-life balance.\n\n" +
		"Recommendations:\n" +
		"- Maintain current work-life balance initiatives.\n" +
		"- Continue regular employee satisfaction checks."},
	{4.0, domain.TierVeryGood, "Very good sentiment overall, with employees generally satisfied.\n\n" +
		"Recommendations:\n" +
		"- Gather feedback to pinpoint minor improvements.\n" +
		"- Keep open communication channels."},
	{3.5, domain.TierGood, "Good sentiment overall, though some areas need improvement.\n\n" +
		"Recommendations:\n" +
		"- Investigate causes behind neutral and negative responses.\n" +
		"- Offer more flexible scheduling options."},
	{3.0, domain.TierModerate, "Moderate sentiment indicates mixed experiences among employees.\n\n" +
		"Recommendations:\n" +
		"- Introduce structured work-life balance programs such as wellness initiatives.\n" +
		"- Increase flexibility and clarity on available support."},
	{2.5, domain.TierBelowAverage, "Below average sentiment suggests significant concerns with work-life balance.\n\n" +
		"Recommendations:\n" +
		"- Conduct surveys to identify stressors.\n" +
		"- Implement flexible hours, mental health days and stress management workshops."},
	{0, domain.TierPoor, "Poor sentiment demonstrates severe dissatisfaction.\n\n" +
		"Immediate Recommendations:\n" +
		"- Hold urgent employee forums to discuss pain points.\n" +
		"- Develop comprehensive policies with substantial flexibility and wellness support."},
}

var textTiers = []tierTemplate{
	{0.5, domain.TierHighlyPositive, "Highly positive sentiment indicates employees feel very supported.\n\n" +
		"Recommendations:\n" +
		"- Maintain current positive practices and gather regular feedback."},
	{0.2, domain.TierPositive, "Overall positive sentiment with minor issues.\n\n" +
		"Recommendations:\n" +
		"- Explore common neutral and negative themes and improve flexibility or wellness programs."},
	{0.0, domain.TierNeutral, "Neutral sentiment suggests mixed experiences.\n\n" +
		"Recommendations:\n" +
		"- Increase dialogue and introduce clear flexible working and wellness policies."},
	{-0.2, domain.TierNegative, "Negative sentiment indicates growing dissatisfaction.\n\n" +
		"Recommendations:\n" +
		"- Conduct detailed feedback sessions and prioritize flexible schedules and mental health resources."},
	{0, domain.TierVeryNegative, "Very negative sentiment highlights critical issues.\n\n" +
		"Urgent Recommendations:\n" +
		"- Immediately address employee concerns with comprehensive changes and increased support."},
}

const (
	numericNote = "Note: A high proportion of negative responses indicates widespread dissatisfaction that should be urgently addressed."
	textNote    = "Note: Over 30% negative responses indicate deep-rooted dissatisfaction that must be addressed promptly."
)

func templatesFor(kind domain.NarrativeKind) []tierTemplate {
	if kind == domain.NarrativeNumeric {
		return numericTiers
	}
	return textTiers
}

func selectTemplate(mean float64, kind domain.NarrativeKind) tierTemplate {
	templates := templatesFor(kind)
	last := len(templates) - 1
	for _, t := range templates[:last] {
		if mean >= t.min {
			return t
		}
	}
	return templates[last]
}

// SelectTier returns the tier whose breakpoint the mean reaches first, scanning from
// the highest breakpoint down.
func SelectTier(mean float64, kind domain.NarrativeKind) domain.Tier {
	return selectTemplate(mean, kind).tier
}

// Summarize renders the narrative for a batch: a preamble with the label shares and the
// mean, the paragraph of the selected tier, and a warning when the negative share
// exceeds 30%. The output depends only on its arguments.
func Summarize(p domain.Percentages, mean float64, kind domain.NarrativeKind) string {
	var b strings.Builder

	b.WriteString("Work-Life Balance Analysis:\n")
	fmt.Fprintf(&b, "- Positive Responses: %.1f%%\n", p.Positive)
	fmt.Fprintf(&b, "- Neutral Responses: %.1f%%\n", p.Neutral)
	fmt.Fprintf(&b, "- Negative Responses: %.1f%%\n", p.Negative)
	if kind == domain.NarrativeNumeric {
		fmt.Fprintf(&b, "- Average Score: %.2f/5\n\n", mean)
	} else {
		fmt.Fprintf(&b, "- Average Sentiment Polarity: %.2f\n\n", mean)
	}

	b.WriteString(selectTemplate(mean, kind).body)

	if p.Negative > negativeAlertPct {
		b.WriteString("\n\n")
		if kind == domain.NarrativeNumeric {
			b.WriteString(numericNote)
		} else {
			b.WriteString(textNote)
		}
	}

	return b.String()
}

// NoDataNarrative is reported for a batch without a single valid record.
func NoDataNarrative() string {
	return "Work-Life Balance Analysis:\n" +
		"No data available: the batch contains no valid scores.\n"
}
