package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
	"github.com/cognicore/deskcluster/pkg/deskcluster/store"
	"github.com/cognicore/deskcluster/pkg/deskcluster/ticket"
)

var _ store.Store = (*Store)(nil)

func TestTicketsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.SaveTickets(ctx, []ticket.Ticket{
		{ID: "b", Issue: "printer"},
		{ID: "a", Issue: "wifi"},
	})
	if err != nil {
		t.Fatalf("SaveTickets: %v", err)
	}
	// Upsert keeps the original position.
	if err := s.SaveTickets(ctx, []ticket.Ticket{{ID: "b", Issue: "printer jam"}, {ID: "c", Issue: "vpn"}}); err != nil {
		t.Fatalf("SaveTickets: %v", err)
	}

	got, _ := s.ListTickets(ctx)
	if len(got) != 3 || got[0].ID != "b" || got[0].Issue != "printer jam" || got[2].ID != "c" {
		t.Errorf("ListTickets = %+v", got)
	}
	if n, _ := s.CountTickets(ctx); n != 3 {
		t.Errorf("CountTickets = %d", n)
	}
}

func TestSaveTicketsRejectsEmptyID(t *testing.T) {
	s := New()
	err := s.SaveTickets(context.Background(), []ticket.Ticket{{Issue: "x"}})
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestClassificationsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, id := range []string{"01", "02", "03"} {
		if err := s.RecordClassification(ctx, store.Classification{ID: id}); err != nil {
			t.Fatalf("RecordClassification: %v", err)
		}
	}

	got, _ := s.ListClassifications(ctx, 2)
	if len(got) != 2 || got[0].ID != "03" || got[1].ID != "02" {
		t.Errorf("ListClassifications = %+v", got)
	}
	all, _ := s.ListClassifications(ctx, 0)
	if len(all) != 3 {
		t.Errorf("limit 0 should return all, got %d", len(all))
	}
}
