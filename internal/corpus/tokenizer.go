// Package corpus turns raw document text into the term-document frequency
// matrix and frequency vectors the lsi package consumes. Tokenization here is
// deliberately simple: lowercase, letters only, stop-word removal, Porter
// stemming. Anything fancier (rich formats, other languages) belongs to
// upstream collaborators.
package corpus

import (
	"strings"
	"unicode"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
)

// minTokenLength drops single-letter fragments left over from splitting
// (e.g. the "n" in "n-body").
const minTokenLength = 2

// Tokenize returns the stemmed tokens of text: lowercased, split on
// non-letter runes, stop words and short fragments removed, Porter-stemmed.
func Tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		word := b.String()
		b.Reset()
		if len(word) < minTokenLength {
			return
		}
		if _, stop := stopWords[word]; stop {
			return
		}
		tokens = append(tokens, porterstemmer.StemString(word))
	}
	for _, r := range text {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// TermCounts returns the stem frequency map of text, the sparse form the
// fold-in updater takes.
func TermCounts(text string) map[string]float64 {
	counts := make(map[string]float64)
	for _, tok := range Tokenize(text) {
		counts[tok]++
	}
	return counts
}
