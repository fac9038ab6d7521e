package preprocess

import (
	"fmt"
	"strings"

	"github.com/kljensen/snowball"

	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
)

// Stemmer reduces a surface token to a normalized stem. Returning an empty
// string drops the token.
type Stemmer interface {
	Stem(word string) string
}

// IdentityStemmer returns tokens unchanged.
type IdentityStemmer struct{}

// Stem implements Stemmer.
func (IdentityStemmer) Stem(word string) string { return word }

// SnowballStemmer applies the Snowball algorithm for a language supported by
// github.com/kljensen/snowball ("russian", "english", ...).
type SnowballStemmer struct {
	Language string
}

// Stem implements Stemmer. Words the stemmer rejects are returned as-is.
func (s SnowballStemmer) Stem(word string) string {
	stemmed, err := snowball.Stem(word, s.Language, true)
	if err != nil {
		return word
	}
	return stemmed
}

// StemmerByName resolves a configured stemmer name.
func StemmerByName(name string) (Stemmer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "identity", "none":
		return IdentityStemmer{}, nil
	case "russian", "english", "spanish", "french", "swedish", "norwegian", "hungarian":
		return SnowballStemmer{Language: strings.ToLower(strings.TrimSpace(name))}, nil
	default:
		return nil, fmt.Errorf("unknown stemmer %q: %w", name, internalerr.ErrInvalidConfig)
	}
}
