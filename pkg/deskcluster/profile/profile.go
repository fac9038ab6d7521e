// Package profile builds the per-cluster knowledge base: a category label,
// representative keywords, recommended solutions and an expected resolution
// time.
package profile

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
	"github.com/cognicore/deskcluster/pkg/deskcluster/preprocess"
	"github.com/cognicore/deskcluster/pkg/deskcluster/ticket"
	"github.com/cognicore/deskcluster/pkg/deskcluster/vocabulary"
)

const (
	// MaxKeywords is the number of keywords kept per cluster.
	MaxKeywords = 8
	// MaxSolutions is the number of recommended solutions kept per cluster.
	MaxSolutions = 5
	// MinSolutionLength is the rune count a solution fragment must exceed.
	MinSolutionLength = 10
	// DefaultResolutionMinutes stands in for missing or unparsable times.
	DefaultResolutionMinutes = 60
)

// Profile describes one cluster.
type Profile struct {
	Category             string   `json:"category"`
	Keywords             []string `json:"keywords"`
	Solutions            []string `json:"recommendedSolutions"`
	AvgResolutionMinutes int      `json:"expectedResolutionTime"`
	Size                 int      `json:"size"`
}

// Default is returned for clusters without a built profile.
func Default() Profile {
	return Profile{
		Category:             "General issues",
		Keywords:             []string{"error", "problem", "issue"},
		Solutions:            []string{"Describe the problem in more detail", "Check the basic settings"},
		AvgResolutionMinutes: DefaultResolutionMinutes,
	}
}

// Set holds the profiles of a fitted model. It is read-only after Build.
type Set struct {
	profiles map[int]Profile
}

// Build groups tickets by label and profiles each group.
func Build(tickets []ticket.Ticket, labels []int, pre *preprocess.Preprocessor) (*Set, error) {
	if len(tickets) != len(labels) {
		return nil, fmt.Errorf("build profiles: %d tickets, %d labels: %w", len(tickets), len(labels), internalerr.ErrInvalidInput)
	}
	if pre == nil {
		pre = preprocess.New(preprocess.Options{})
	}

	groups := make(map[int][]ticket.Ticket)
	for i, t := range tickets {
		groups[labels[i]] = append(groups[labels[i]], t)
	}

	s := &Set{profiles: make(map[int]Profile, len(groups))}
	for id, members := range groups {
		s.profiles[id] = buildOne(members, pre)
	}
	return s, nil
}

// Get returns the profile of cluster id, or Default when none exists.
func (s *Set) Get(id int) Profile {
	if p, ok := s.Lookup(id); ok {
		return p
	}
	return Default()
}

// Lookup returns the built profile of cluster id.
func (s *Set) Lookup(id int) (Profile, bool) {
	if s == nil {
		return Profile{}, false
	}
	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, false
	}
	p.Keywords = slices.Clone(p.Keywords)
	p.Solutions = slices.Clone(p.Solutions)
	return p, true
}

// IDs returns the cluster ids with a built profile, ascending.
func (s *Set) IDs() []int {
	if s == nil {
		return nil
	}
	ids := make([]int, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func buildOne(members []ticket.Ticket, pre *preprocess.Preprocessor) Profile {
	return Profile{
		Category:             categoryName(members),
		Keywords:             keywords(members, pre),
		Solutions:            solutions(members),
		AvgResolutionMinutes: avgResolution(members),
		Size:                 len(members),
	}
}

func keywords(members []ticket.Ticket, pre *preprocess.Preprocessor) []string {
	counter := vocabulary.NewCounter()
	for _, t := range members {
		counter.AddAll(pre.Tokens(t.Issue))
	}
	return counter.Top(MaxKeywords)
}

var solutionSep = regexp.MustCompile(`[,.;]\s*`)

func solutions(members []ticket.Ticket) []string {
	counter := vocabulary.NewCounter()
	for _, t := range members {
		for _, part := range solutionSep.Split(t.TechResponse, -1) {
			part = strings.TrimSpace(part)
			if utf8.RuneCountInString(part) > MinSolutionLength {
				counter.Add(part)
			}
		}
	}
	return counter.Top(MaxSolutions)
}

func avgResolution(members []ticket.Ticket) int {
	if len(members) == 0 {
		return DefaultResolutionMinutes
	}
	total := 0
	for _, t := range members {
		minutes, ok := t.ResolutionMinutes()
		if !ok {
			minutes = DefaultResolutionMinutes
		}
		total += minutes
	}
	return total / len(members)
}

func categoryName(members []ticket.Ticket) string {
	counter := vocabulary.NewCounter()
	for _, t := range members {
		counter.Add(t.Category)
	}
	parts := make([]string, 0, counter.Len())
	for _, label := range counter.Top(0) {
		parts = append(parts, fmt.Sprintf("%s(%d)", label, counter.Count(label)))
	}
	return strings.Join(parts, ", ")
}
