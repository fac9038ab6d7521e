// Package preprocess normalizes and tokenizes raw ticket text.
package preprocess

import (
	"iter"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/deskcluster/internal/htmltext"
	"github.com/cognicore/deskcluster/pkg/deskcluster/stoplist"
)

// Options controls the preprocessing steps.
type Options struct {
	// Stemming enables the morphological reducer. When false tokens are
	// produced by a plain whitespace split.
	Stemming bool
	// Stemmer is used when Stemming is set; nil means IdentityStemmer.
	Stemmer Stemmer
	// StopwordsEnabled drops tokens present in StopWords.
	StopwordsEnabled bool
	StopWords        *stoplist.Set
	// MinWordLength drops tokens shorter than this many runes; 0 keeps all.
	MinWordLength int
	// StripHTML extracts text from markup before normalization.
	StripHTML bool
}

// Preprocessor turns raw text into an ordered token sequence. It holds no
// mutable state and is safe for concurrent use.
type Preprocessor struct {
	opts Options
}

// New creates a preprocessor with the given options
func New(opts Options) *Preprocessor {
	if opts.Stemmer == nil {
		opts.Stemmer = IdentityStemmer{}
	}
	return &Preprocessor{opts: opts}
}

// Options returns the options the preprocessor was built with.
func (p *Preprocessor) Options() Options {
	return p.opts
}

// Preprocess returns the tokens of text in order, duplicates preserved.
func (p *Preprocessor) Preprocess(text string) []string {
	return slices.Collect(p.Tokens(text))
}

// Tokens lazily yields the tokens of text.
func (p *Preprocessor) Tokens(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, word := range strings.Fields(Normalize(text, p.opts.StripHTML)) {
			if p.opts.Stemming {
				word = p.opts.Stemmer.Stem(word)
				if word == "" {
					continue
				}
			}
			if p.opts.MinWordLength > 0 && utf8.RuneCountInString(word) < p.opts.MinWordLength {
				continue
			}
			if p.opts.StopwordsEnabled && p.opts.StopWords.Contains(word) {
				continue
			}
			if !yield(word) {
				return
			}
		}
	}
}

// Normalize lowercases text, replaces every rune that is not a Latin or
// Cyrillic letter, an ASCII digit or whitespace with a space, collapses
// whitespace runs and trims.
func Normalize(text string, stripHTML bool) string {
	if stripHTML {
		text = htmltext.Extract(text)
	}
	text = strings.ToLower(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(text))
	space := true
	for _, r := range text {
		if !keepRune(r) {
			r = ' '
		}
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		b.WriteRune(r)
		space = false
	}
	return strings.TrimRight(b.String(), " ")
}

func keepRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case unicode.IsSpace(r):
		return true
	case unicode.IsLetter(r):
		return unicode.In(r, unicode.Latin, unicode.Cyrillic)
	}
	return false
}
