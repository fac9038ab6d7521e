package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
	"github.com/cognicore/deskcluster/pkg/deskcluster/store"
	"github.com/cognicore/deskcluster/pkg/deskcluster/ticket"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu              sync.RWMutex
	order           []string
	tickets         map[string]ticket.Ticket
	classifications []store.Classification
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{tickets: make(map[string]ticket.Ticket)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveTickets upserts tickets keyed by ID.
func (s *Store) SaveTickets(ctx context.Context, tickets []ticket.Ticket) error {
	for _, t := range tickets {
		if t.ID == "" {
			return fmt.Errorf("save ticket: empty id: %w", internalerr.ErrInvalidInput)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tickets {
		if _, ok := s.tickets[t.ID]; !ok {
			s.order = append(s.order, t.ID)
		}
		s.tickets[t.ID] = t
	}
	return nil
}

// ListTickets returns tickets in first-insertion order.
func (s *Store) ListTickets(ctx context.Context) ([]ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ticket.Ticket, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tickets[id])
	}
	return out, nil
}

// CountTickets returns the number of stored tickets.
func (s *Store) CountTickets(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

// RecordClassification appends c to the log.
func (s *Store) RecordClassification(ctx context.Context, c store.Classification) error {
	if c.ID == "" {
		return fmt.Errorf("record classification: empty id: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classifications = append(s.classifications, c)
	return nil
}

// ListClassifications returns up to limit records, newest first.
func (s *Store) ListClassifications(ctx context.Context, limit int) ([]store.Classification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.classifications)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
