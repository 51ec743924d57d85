package sentiment

import (
	"cmp"
	"slices"
	"unicode"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "about", "after", "again", "all", "also", "am", "an", "and", "any", "are", "as",
		"at", "be", "because", "been", "before", "being", "but", "by", "can", "could", "did",
		"do", "does", "doing", "down", "during", "each", "even", "ever", "every", "for", "from",
		"get", "gets", "got", "had", "has", "have", "having", "he", "her", "here", "hers", "him",
		"his", "how", "i", "i'm", "if", "in", "into", "is", "it", "it's", "its", "just", "me",
		"more", "most", "much", "my", "myself", "of", "off", "on", "once", "only", "or", "other",
		"our", "ours", "out", "over", "own", "same", "she", "should", "some", "such", "than",
		"that", "the", "their", "them", "then", "there", "these", "they", "this", "those",
		"through", "to", "under", "until", "up", "us", "was", "we", "were", "what", "when",
		"where", "which", "while", "who", "whom", "why", "will", "with", "would", "you",
		"your", "yours", "makes", "make",
	} {
		stopwords[w] = struct{}{}
	}
	for n := range negators {
		stopwords[n] = struct{}{}
	}
	for w := range intensifiers {
		stopwords[w] = struct{}{}
	}
}

// WordFrequencies counts the words of positive and negative records, dropping
// stopwords, single letters and numbers, and keeps the topN most frequent of each.
// Ties are broken alphabetically.
func WordFrequencies(records []domain.ScoredRecord, topN int) *domain.WordFrequencies {
	pos := make(map[string]int)
	neg := make(map[string]int)

	for _, r := range records {
		if !r.Valid {
			continue
		}
		var counts map[string]int
		switch r.Label {
		case domain.LabelPositive:
			counts = pos
		case domain.LabelNegative:
			counts = neg
		default:
			continue
		}
		for _, tok := range Tokenize(r.Raw) {
			if keepWord(tok) {
				counts[tok]++
			}
		}
	}

	return &domain.WordFrequencies{
		Positive: topWords(pos, topN),
		Negative: topWords(neg, topN),
	}
}

func keepWord(tok string) bool {
	if len([]rune(tok)) < 2 {
		return false
	}
	if _, ok := stopwords[tok]; ok {
		return false
	}
	for _, r := range tok {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func topWords(counts map[string]int, n int) []domain.WordCount {
	out := make([]domain.WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, domain.WordCount{Word: w, Count: c})
	}
	slices.SortFunc(out, func(a, b domain.WordCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
