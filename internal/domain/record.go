package domain

// Record is one reviewed entity as it arrived: free text, a numeric value, or both.
type Record struct {
	Raw   string   `json:"raw"`
	Value *float64 `json:"value,omitempty"`
}

// ScoredRecord is a Record with its derived score and label.
//
// Score is the number compared against the thresholds of the batch kind: the polarity for
// text, the rating itself, or the rescaled value. Records whose score is missing or
// non-finite are kept with Valid=false and are excluded from every aggregate.
type ScoredRecord struct {
	Record
	Score *float64 `json:"score"`
	Label Label    `json:"label,omitempty"`
	Valid bool     `json:"valid"`
}

// Percentages holds the share of each label in a batch, in percent.
type Percentages struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// Counts holds the number of valid records per label.
type Counts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Total is the number of labelled records.
func (c Counts) Total() int {
	return c.Positive + c.Neutral + c.Negative
}

// Add increments the counter for l. Unknown labels are ignored.
func (c *Counts) Add(l Label) {
	switch l {
	case LabelPositive:
		c.Positive++
	case LabelNeutral:
		c.Neutral++
	case LabelNegative:
		c.Negative++
	}
}

// BatchSummary is recomputed from a whole batch every time; it is never updated in place.
type BatchSummary struct {
	Kind        Kind        `json:"kind"`
	Total       int         `json:"total"`
	Valid       int         `json:"valid"`
	Counts      Counts      `json:"counts"`
	Percentages Percentages `json:"percentages"`
	Mean        float64     `json:"mean"`
	Tier        Tier        `json:"tier"`
	Narrative   string      `json:"narrative"`
}
