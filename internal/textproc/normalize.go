// Package textproc normalizes free-text feedback before vectorization.
package textproc

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// Normalizer lowercases, strips punctuation, removes stop words and
// lemmatizes. It is safe for concurrent use.
type Normalizer struct {
	stopWords map[string]struct{}
	lemmas    *Lemmatizer
}

// NewNormalizer returns a Normalizer using the English stop-word set.
func NewNormalizer() *Normalizer {
	return &Normalizer{stopWords: EnglishStopWords(), lemmas: NewLemmatizer()}
}

// Normalize never fails; empty input yields an empty string.
func (n *Normalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	text = norm.NFC.String(text)
	text = nonWord.ReplaceAllString(text, " ")
	// cases.Caser keeps state, so each call gets its own.
	text = cases.Lower(language.Und).String(text)

	tokens := strings.Fields(text)
	kept := tokens[:0]
	for _, tok := range tokens {
		if _, stop := n.stopWords[tok]; stop {
			continue
		}
		kept = append(kept, n.lemmas.Lemmatize(tok))
	}
	return strings.Join(kept, " ")
}

// Normalize applies a default Normalizer.
func Normalize(text string) string {
	return defaultNormalizer.Normalize(text)
}

var defaultNormalizer = NewNormalizer()
