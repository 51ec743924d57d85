package sentiment

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Tokenize splits text into case-folded word tokens. Apostrophes inside a word are
// kept so contractions such as "isn't" stay a single token; typographic apostrophes
// are folded to ASCII first.
func Tokenize(text string) []string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "’", "'")
	text = cases.Fold().String(text)

	var (
		tokens []string
		cur    strings.Builder
	)
	flush := func() {
		tok := strings.Trim(cur.String(), "'")
		if tok != "" {
			tokens = append(tokens, tok)
		}
		cur.Reset()
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(r)
		case r == '\'' && cur.Len() > 0:
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return tokens
}
