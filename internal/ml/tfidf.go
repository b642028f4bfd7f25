package ml

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// SparseVector stores the non-zero entries of a row, indices ascending.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Dot returns the inner product with a dense vector.
func (v SparseVector) Dot(w []float64) float64 {
	var s float64
	for k, i := range v.Indices {
		s += v.Values[k] * w[i]
	}
	return s
}

// TfidfVectorizer maps documents to L2-normalized tf-idf vectors using a
// smoothed idf: ln((1+n)/(1+df)) + 1.
type TfidfVectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

// Tokenize lowercases doc and extracts its terms.
func Tokenize(doc string) []string {
	return tokenPattern.FindAllString(strings.ToLower(doc), -1)
}

// FitTfidf learns the vocabulary (sorted alphabetically) and idf weights.
func FitTfidf(docs []string) (*TfidfVectorizer, error) {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range Tokenize(doc) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	if len(df) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrTooFewSamples)
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v := &TfidfVectorizer{Vocabulary: make(map[string]int, len(terms)), IDF: make([]float64, len(terms))}
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v, nil
}

// Dim is the vector dimension.
func (v *TfidfVectorizer) Dim() int { return len(v.IDF) }

// Transform vectorizes one document. Unknown terms are ignored.
func (v *TfidfVectorizer) Transform(doc string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range Tokenize(doc) {
		if i, ok := v.Vocabulary[term]; ok {
			counts[i]++
		}
	}
	out := SparseVector{Indices: make([]int, 0, len(counts)), Values: make([]float64, 0, len(counts))}
	for i := range counts {
		out.Indices = append(out.Indices, i)
	}
	sort.Ints(out.Indices)
	for _, i := range out.Indices {
		out.Values = append(out.Values, counts[i]*v.IDF[i])
	}
	if norm := floats.Norm(out.Values, 2); norm > 0 {
		floats.Scale(1/norm, out.Values)
	}
	return out
}

// TransformAll vectorizes every document.
func (v *TfidfVectorizer) TransformAll(docs []string) []SparseVector {
	out := make([]SparseVector, len(docs))
	for i, doc := range docs {
		out[i] = v.Transform(doc)
	}
	return out
}
