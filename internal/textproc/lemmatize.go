package textproc

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// irregularNouns maps inflected forms the suffix rules get wrong.
var irregularNouns = map[string]string{
	"children":  "child",
	"men":       "man",
	"women":     "woman",
	"people":    "people",
	"feet":      "foot",
	"teeth":     "tooth",
	"geese":     "goose",
	"mice":      "mouse",
	"oxen":      "ox",
	"dice":      "die",
	"data":      "datum",
	"criteria":  "criterion",
	"phenomena": "phenomenon",
	"analyses":  "analysis",
	"crises":    "crisis",
	"theses":    "thesis",
	"indices":   "index",
	"matrices":  "matrix",
	"leaves":    "leaf",
	"lives":     "life",
	"wives":     "wife",
	"knives":    "knife",
	"halves":    "half",
	"selves":    "self",
	"shelves":   "shelf",
	"wolves":    "wolf",
	"thieves":   "thief",
	"loaves":    "loaf",
}

// invariantWords end in "s" but are already base forms.
var invariantWords = map[string]struct{}{
	"always": {}, "perhaps": {}, "sometimes": {}, "yes": {}, "whereas": {},
	"besides": {}, "afterwards": {}, "towards": {}, "anyways": {}, "thanks": {},
	"news": {}, "series": {}, "species": {}, "means": {}, "physics": {},
	"mathematics": {}, "economics": {}, "politics": {}, "lens": {}, "gas": {},
	"bus": {}, "plus": {}, "bias": {}, "chaos": {}, "across": {}, "canvas": {},
	"alias": {}, "atlas": {}, "christmas": {}, "lots": {}, "kudos": {},
}

// nounSuffixes are the detachment rules applied to plural nouns. Each
// candidate is kept only when the dictionary lists it as a lemma of the word.
var nounSuffixes = []struct{ suffix, replace string }{
	{"s", ""},
	{"ses", "s"},
	{"xes", "x"},
	{"zes", "z"},
	{"ches", "ch"},
	{"shes", "sh"},
	{"men", "man"},
	{"ies", "y"},
	{"oes", "o"},
	{"es", ""},
}

var loadDictionary = sync.OnceValues(func() (*golem.Lemmatizer, error) {
	return golem.New(en.New())
})

// Lemmatizer reduces plural nouns to their singular form. Inflections that
// are not plural nouns, such as verb tenses, are left alone.
type Lemmatizer struct {
	dict      *golem.Lemmatizer
	irregular map[string]string
	invariant map[string]struct{}
}

// NewLemmatizer returns a Lemmatizer backed by the embedded English
// dictionary. It panics if the dictionary cannot be decoded.
func NewLemmatizer() *Lemmatizer {
	dict, err := loadDictionary()
	if err != nil {
		panic(fmt.Sprintf("textproc: load english dictionary: %v", err))
	}
	return &Lemmatizer{dict: dict, irregular: irregularNouns, invariant: invariantWords}
}

// Lemmatize returns the lemma of a lowercase token, or the token itself when
// no noun rule yields a dictionary lemma.
func (l *Lemmatizer) Lemmatize(word string) string {
	if lemma, ok := l.irregular[word]; ok {
		return lemma
	}
	if _, ok := l.invariant[word]; ok {
		return word
	}

	known := l.dict.Lemmas(word)
	if len(known) == 0 {
		return word
	}
	best := ""
	for _, rule := range nounSuffixes {
		if !strings.HasSuffix(word, rule.suffix) {
			continue
		}
		candidate := strings.TrimSuffix(word, rule.suffix) + rule.replace
		if candidate == "" || !slices.Contains(known, candidate) {
			continue
		}
		if best == "" || len(candidate) < len(best) {
			best = candidate
		}
	}
	if best == "" {
		return word
	}
	return best
}
