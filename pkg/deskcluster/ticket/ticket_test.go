package ticket

import (
	"errors"
	"testing"

	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
)

func TestResolutionMinutes(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"45 minutes", 45, true},
		{"  120 min", 120, true},
		{"30", 30, true},
		{"15m", 15, true},
		{"", 0, false},
		{"about an hour", 0, false},
		{"-5 minutes", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Ticket{ResolutionTime: tt.in}.ResolutionMinutes()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ResolutionMinutes(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := (Ticket{ID: "c1", Issue: "wifi down"}).Validate(); err != nil {
		t.Errorf("valid ticket rejected: %v", err)
	}
	err := Ticket{ID: "c2", Issue: "   "}.Validate()
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIssues(t *testing.T) {
	got := Issues([]Ticket{{Issue: "a"}, {Issue: "b"}})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Issues = %v", got)
	}
}
