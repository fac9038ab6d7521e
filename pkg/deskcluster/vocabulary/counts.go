package vocabulary

import (
	"iter"
	"slices"
)

// Counter accumulates raw term frequencies and remembers the order in which
// terms were first seen.
type Counter struct {
	order  []string
	counts map[string]int
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add counts one occurrence of term. Empty terms are ignored.
func (c *Counter) Add(term string) {
	if term == "" {
		return
	}
	if _, ok := c.counts[term]; !ok {
		c.order = append(c.order, term)
	}
	c.counts[term]++
}

// AddAll counts every term yielded by seq.
func (c *Counter) AddAll(seq iter.Seq[string]) {
	for term := range seq {
		c.Add(term)
	}
}

// Count returns the number of occurrences seen for term.
func (c *Counter) Count(term string) int {
	return c.counts[term]
}

// Len returns the number of distinct terms.
func (c *Counter) Len() int {
	return len(c.order)
}

// Terms returns distinct terms in first-seen order.
func (c *Counter) Terms() []string {
	return slices.Clone(c.order)
}

// Top returns up to n terms by descending count. Equal counts keep
// first-seen order. n <= 0 returns every term.
func (c *Counter) Top(n int) []string {
	ranked := slices.Clone(c.order)
	slices.SortStableFunc(ranked, func(a, b string) int {
		return c.counts[b] - c.counts[a]
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
