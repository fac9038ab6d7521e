// Package vocabulary builds the bounded term set that defines the feature
// space of the TF-IDF vectors.
package vocabulary

import (
	"fmt"
	"slices"

	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
	"github.com/cognicore/deskcluster/pkg/deskcluster/preprocess"
)

// DefaultCap is the vocabulary size limit used when none is configured.
const DefaultCap = 1000

// Vocabulary is an immutable ordered term list with an index for lookups.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// Build collects the distinct tokens of docs in first-occurrence order. When
// more than limit distinct tokens exist, the vocabulary becomes the limit
// most frequent tokens across the corpus, equal frequencies in first-seen
// order.
func Build(docs []string, limit int, p *preprocess.Preprocessor) (*Vocabulary, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("vocabulary cap %d: %w", limit, internalerr.ErrInvalidConfig)
	}
	if p == nil {
		p = preprocess.New(preprocess.Options{})
	}

	counter := NewCounter()
	for _, doc := range docs {
		counter.AddAll(p.Tokens(doc))
	}

	terms := counter.Terms()
	if len(terms) > limit {
		terms = counter.Top(limit)
	}
	return newVocabulary(terms), nil
}

// FromTerms creates a vocabulary from an explicit term list. Duplicates
// after the first occurrence are dropped.
func FromTerms(terms []string) *Vocabulary {
	seen := make(map[string]struct{}, len(terms))
	unique := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	return newVocabulary(unique)
}

func newVocabulary(terms []string) *Vocabulary {
	index := make(map[string]int, len(terms))
	for i, t := range terms {
		index[t] = i
	}
	return &Vocabulary{terms: terms, index: index}
}

// Size returns the number of terms.
func (v *Vocabulary) Size() int {
	return len(v.terms)
}

// Terms returns a copy of the ordered term list.
func (v *Vocabulary) Terms() []string {
	return slices.Clone(v.terms)
}

// Term returns the term at position i.
func (v *Vocabulary) Term(i int) string {
	return v.terms[i]
}

// Index returns the position of term.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Head returns the first n terms.
func (v *Vocabulary) Head(n int) []string {
	n = min(max(n, 0), len(v.terms))
	return slices.Clone(v.terms[:n])
}

// Tail returns the last n terms.
func (v *Vocabulary) Tail(n int) []string {
	n = min(max(n, 0), len(v.terms))
	return slices.Clone(v.terms[len(v.terms)-n:])
}

// Info summarizes a vocabulary for reporting.
type Info struct {
	Size        int      `json:"vocabularySize"`
	TopWords    []string `json:"topWords"`
	BottomWords []string `json:"bottomWords"`
}

// InfoWords is how many terms Info lists at each end.
const InfoWords = 20

// Info returns the size and the first and last InfoWords terms.
func (v *Vocabulary) Info() Info {
	return Info{
		Size:        v.Size(),
		TopWords:    v.Head(InfoWords),
		BottomWords: v.Tail(InfoWords),
	}
}
