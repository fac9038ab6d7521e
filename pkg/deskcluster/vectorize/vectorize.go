// Package vectorize maps ticket text into the vocabulary's vector space.
//
// Two feature spaces exist. Corpus produces L2-normalized TF-IDF rows and is
// what models are trained on. One produces a single-document vector; in the
// legacy mode that vector is plain term frequency with no IDF weighting and no
// normalization, so live inference runs on a different scale than training.
// TrainingParity applies the stored IDF weights and L2 normalization instead.
package vectorize

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
	"github.com/cognicore/deskcluster/pkg/deskcluster/preprocess"
	"github.com/cognicore/deskcluster/pkg/deskcluster/vocabulary"
)

// FeatureSpace selects how single documents are vectorized.
type FeatureSpace string

const (
	// LegacyRawTF vectorizes single documents as raw TF.
	LegacyRawTF FeatureSpace = "legacy_raw_tf"
	// TrainingParity vectorizes single documents as TF-IDF with L2
	// normalization, using the IDF weights of the training corpus.
	TrainingParity FeatureSpace = "training_parity"
)

// ParseFeatureSpace resolves a configured feature space name.
func ParseFeatureSpace(s string) (FeatureSpace, error) {
	switch FeatureSpace(strings.ToLower(strings.TrimSpace(s))) {
	case "", LegacyRawTF:
		return LegacyRawTF, nil
	case TrainingParity:
		return TrainingParity, nil
	}
	return "", fmt.Errorf("unknown feature space %q: %w", s, internalerr.ErrInvalidConfig)
}

// Vectorizer turns text into vectors over a fixed vocabulary.
type Vectorizer struct {
	vocab *vocabulary.Vocabulary
	pre   *preprocess.Preprocessor
	space FeatureSpace
	idf   []float64
}

// New creates a vectorizer. A nil preprocessor uses default options.
func New(vocab *vocabulary.Vocabulary, pre *preprocess.Preprocessor, space FeatureSpace) *Vectorizer {
	if pre == nil {
		pre = preprocess.New(preprocess.Options{})
	}
	if space == "" {
		space = LegacyRawTF
	}
	return &Vectorizer{vocab: vocab, pre: pre, space: space}
}

// WithIDF returns a copy of v that uses idf for TrainingParity vectors.
func (v *Vectorizer) WithIDF(idf []float64) *Vectorizer {
	out := *v
	out.idf = slices.Clone(idf)
	return &out
}

// IDF returns the stored IDF weights, nil if none were attached.
func (v *Vectorizer) IDF() []float64 {
	return slices.Clone(v.idf)
}

// FeatureSpace reports the single-document mode.
func (v *Vectorizer) FeatureSpace() FeatureSpace {
	return v.space
}

// Vocabulary returns the vocabulary the vectorizer maps onto.
func (v *Vectorizer) Vocabulary() *vocabulary.Vocabulary {
	return v.vocab
}

// Dim returns the vector length.
func (v *Vectorizer) Dim() int {
	return v.vocab.Size()
}

// TF returns count/total-tokens for every vocabulary term. A document with
// no tokens yields the zero vector.
func (v *Vectorizer) TF(text string) []float64 {
	vec := make([]float64, v.vocab.Size())
	total := 0
	for tok := range v.pre.Tokens(text) {
		total++
		if i, ok := v.vocab.Index(tok); ok {
			vec[i]++
		}
	}
	if total > 0 {
		floats.Scale(1/float64(total), vec)
	}
	return vec
}

// One vectorizes a single document according to the feature space.
func (v *Vectorizer) One(text string) []float64 {
	vec := v.TF(text)
	if v.space != TrainingParity {
		return vec
	}
	if len(v.idf) == len(vec) {
		floats.Mul(vec, v.idf)
	}
	normalizeL2(vec)
	return vec
}

// Corpus builds the TF-IDF matrix of docs, one L2-normalized row per
// document, and returns it with the IDF weights computed from docs.
func (v *Vectorizer) Corpus(docs []string) (*mat.Dense, []float64, error) {
	if len(docs) == 0 {
		return nil, nil, fmt.Errorf("vectorize corpus: no documents: %w", internalerr.ErrEmptyCorpus)
	}
	dim := v.vocab.Size()
	if dim == 0 {
		return nil, nil, fmt.Errorf("vectorize corpus: empty vocabulary: %w", internalerr.ErrEmptyCorpus)
	}

	data := make([]float64, 0, len(docs)*dim)
	df := make([]float64, dim)
	for _, doc := range docs {
		row := v.TF(doc)
		for j, x := range row {
			if x > 0 {
				df[j]++
			}
		}
		data = append(data, row...)
	}

	idf := SmoothIDF(len(docs), df)
	m := mat.NewDense(len(docs), dim, data)
	for i := range len(docs) {
		row := m.RawRowView(i)
		floats.Mul(row, idf)
		normalizeL2(row)
	}
	return m, idf, nil
}

// SmoothIDF returns ln((n+1)/(df+1)) + 1 for each document frequency.
func SmoothIDF(n int, df []float64) []float64 {
	idf := make([]float64, len(df))
	for j, d := range df {
		idf[j] = math.Log(float64(n+1)/(d+1)) + 1
	}
	return idf
}

// normalizeL2 scales vec to unit Euclidean length; zero vectors are left as is.
func normalizeL2(vec []float64) {
	if n := floats.Norm(vec, 2); n > 0 {
		floats.Scale(1/n, vec)
	}
}

// Rows copies the rows of m into a slice of vectors.
func Rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range r {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
