package sentiment

import (
	"math"
	"strconv"
	"strings"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

// numericShare is the fraction of non-empty cells that must parse as numbers for a
// column to be treated as numeric.
const numericShare = 0.8

// Detection is the outcome of inspecting a column.
type Detection struct {
	Kind     domain.Kind `json:"kind"`
	NonEmpty int         `json:"non_empty"`
	Numeric  int         `json:"numeric"`
}

// ParseNumber parses a cell as a number. Percent strings such as "45%" are divided by
// 100. Only finite results are accepted.
func ParseNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}

	percent := strings.HasSuffix(s, "%")
	if percent {
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if percent {
		v /= 100
	}
	return v, true
}

// DetectColumn decides how a column should be scored. A column is numeric when more
// than 80% of its non-empty cells parse; numeric columns whose values all lie on the
// 1-5 scale are ratings, other numeric columns are rescaled, and everything else is
// free text scored for polarity.
func DetectColumn(cells []string) Detection {
	var (
		d          Detection
		onFiveStar = true
	)
	for _, c := range cells {
		if strings.TrimSpace(c) == "" {
			continue
		}
		d.NonEmpty++
		v, ok := ParseNumber(c)
		if !ok {
			continue
		}
		d.Numeric++
		if v < 1 || v > 5 {
			onFiveStar = false
		}
	}

	switch {
	case d.NonEmpty == 0 || float64(d.Numeric) <= numericShare*float64(d.NonEmpty):
		d.Kind = domain.KindPolarity
	case onFiveStar:
		d.Kind = domain.KindRating
	default:
		d.Kind = domain.KindRescaled
	}
	return d
}
