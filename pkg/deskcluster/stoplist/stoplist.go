package stoplist

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Set is a stop-word membership set. It is read-only once handed to a
// preprocessor; Add and Remove are meant for setup code.
type Set struct {
	words map[string]struct{}
}

// New creates a set from the given terms. Terms are lowercased and trimmed.
func New(terms []string) *Set {
	s := &Set{words: make(map[string]struct{}, len(terms))}
	for _, t := range terms {
		s.Add(t)
	}
	return s
}

// Contains reports whether word is a stop word. A nil set contains nothing.
func (s *Set) Contains(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[word]
	return ok
}

// Add adds a term to the set
func (s *Set) Add(term string) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return
	}
	s.words[term] = struct{}{}
}

// Remove removes a term from the set
func (s *Set) Remove(term string) {
	delete(s.words, strings.ToLower(strings.TrimSpace(term)))
}

// Len returns the number of stop words.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// All returns all stop words, sorted.
func (s *Set) All() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// FilterShorter drops stop words shorter than minLen runes.
func (s *Set) FilterShorter(minLen int) {
	if minLen <= 0 {
		return
	}
	for w := range s.words {
		if utf8.RuneCountInString(w) < minLen {
			delete(s.words, w)
		}
	}
}

// file is the YAML stoplist layout.
type file struct {
	Terms []string `yaml:"terms"`
}

// Load reads a stop-word file. Files ending in .yaml or .yml are parsed as
// a `terms:` list; anything else is read as one term per line, with blank
// lines and lines starting with '#' skipped.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stoplist %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse stoplist %s: %w", path, err)
		}
		return New(f.Terms), nil
	default:
		return New(parseLines(data)), nil
	}
}

func parseLines(data []byte) []string {
	var terms []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	return terms
}
