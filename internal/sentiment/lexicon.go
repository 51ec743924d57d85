package sentiment

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

//go:embed lexicon.tsv
var defaultLexicon string

const (
	// maxInputBytes caps the text scored per record. Longer input scores as empty.
	maxInputBytes = 1 << 20

	// negationFactor is applied to a word preceded by a negator, so "not bad" reads
	// as mildly positive rather than as the full opposite of "bad".
	negationFactor = -0.5
	negationWindow = 2
)

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "nothing": {}, "nobody": {}, "none": {},
	"neither": {}, "nor": {}, "cannot": {}, "hardly": {}, "barely": {},
}

var intensifiers = map[string]float64{
	"very":       1.3,
	"really":     1.3,
	"so":         1.3,
	"too":        1.3,
	"super":      1.4,
	"totally":    1.4,
	"highly":     1.4,
	"extremely":  1.5,
	"absolutely": 1.5,
	"incredibly": 1.5,
	"quite":      1.1,
	"somewhat":   0.7,
	"slightly":   0.6,
}

// Lexicon scores free text by averaging the polarity of the words it knows.
type Lexicon struct {
	words map[string]float64
}

// Polarity is the lexicon result for one text.
type Polarity struct {
	Score    float64 `json:"score"`
	Positive int     `json:"positive"`
	Negative int     `json:"negative"`
	Matched  int     `json:"matched"`
	Total    int     `json:"total"`
}

var loadDefault = sync.OnceValue(func() *Lexicon {
	lex, err := ParseLexicon(strings.NewReader(defaultLexicon))
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon: %v", err))
	}
	return lex
})

// DefaultLexicon returns the embedded English lexicon. It is parsed once.
func DefaultLexicon() *Lexicon {
	return loadDefault()
}

// ParseLexicon reads tab-separated "word<TAB>polarity" lines. Blank lines and lines
// starting with '#' are skipped; a malformed line is an error.
func ParseLexicon(r io.Reader) (*Lexicon, error) {
	words := make(map[string]float64, 256)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		word, value, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: missing tab separator", line)
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid polarity %q: %w", line, value, err)
		}
		if score < -1 || score > 1 {
			return nil, fmt.Errorf("line %d: polarity %v outside [-1, 1]", line, score)
		}
		words[strings.ToLower(strings.TrimSpace(word))] = score
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	return &Lexicon{words: words}, nil
}

func (l *Lexicon) Len() int {
	return len(l.words)
}

// Score returns the polarity of text in [-1, 1]. Text without a known word, empty
// text and oversized text all score 0.
func (l *Lexicon) Score(text string) Polarity {
	if text == "" || len(text) > maxInputBytes {
		return Polarity{}
	}

	tokens := Tokenize(text)
	result := Polarity{Total: len(tokens)}

	var sum float64
	for i, tok := range tokens {
		value, ok := l.words[tok]
		if !ok {
			continue
		}
		if i > 0 {
			if factor, ok := intensifiers[tokens[i-1]]; ok {
				value = clamp(value * factor)
			}
		}
		if negatedAt(tokens, i) {
			value *= negationFactor
		}

		sum += value
		result.Matched++
		switch {
		case value > 0:
			result.Positive++
		case value < 0:
			result.Negative++
		}
	}

	if result.Matched > 0 {
		result.Score = clamp(sum / float64(result.Matched))
	}
	return result
}

func negatedAt(tokens []string, idx int) bool {
	for j := idx - 1; j >= 0 && j >= idx-negationWindow; j-- {
		if isNegator(tokens[j]) {
			return true
		}
	}
	return false
}

func isNegator(tok string) bool {
	if _, ok := negators[tok]; ok {
		return true
	}
	return strings.HasSuffix(tok, "n't")
}

func clamp(v float64) float64 {
	return max(-1, min(1, v))
}
