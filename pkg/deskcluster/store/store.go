package store

import (
	"context"
	"time"

	"github.com/cognicore/deskcluster/pkg/deskcluster/ticket"
)

// Store persists training tickets and the classification log.
type Store interface {
	Close() error

	// Tickets. SaveTickets upserts by ticket ID; ListTickets returns tickets
	// in first-insertion order.
	SaveTickets(ctx context.Context, tickets []ticket.Ticket) error
	ListTickets(ctx context.Context) ([]ticket.Ticket, error)
	CountTickets(ctx context.Context) (int, error)

	// Classification log. ListClassifications returns the newest first;
	// limit <= 0 returns every record.
	RecordClassification(ctx context.Context, c Classification) error
	ListClassifications(ctx context.Context, limit int) ([]Classification, error)
}

// Classification is one answered classification request.
type Classification struct {
	ID         string
	SnapshotID string
	Text       string
	ClusterID  int
	Category   string
	Confidence float64
	CreatedAt  time.Time
}
