package dataset

import "strconv"

const (
	SampleTextColumn   = "text_reviews"
	SampleRatingColumn = "work_life_balance"
)

var (
	sampleReviews = []string{
		"I love working here!",
		"This job is terrible, I hate it",
		"It's not too bad working here, but it could be better",
		"Absolutely fantastic working here!",
		"Worst job ever!",
		"I love my job",
		"My boss is wonderful and makes my job easier",
		"The best place to work",
	}
	sampleBalance = []int{4, 2, 5, 1, 2, 1, 3, 2}
)

// Sample returns a fresh copy of the built-in eight-row review table.
func Sample() *Table {
	t := &Table{
		Columns: []string{SampleTextColumn, SampleRatingColumn},
		Rows:    make([][]string, len(sampleReviews)),
	}
	for i, review := range sampleReviews {
		t.Rows[i] = []string{review, strconv.Itoa(sampleBalance[i])}
	}
	return t
}
