// Package ticket defines the support ticket record consumed by the pipeline.
package ticket

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
)

// Ticket is one historical support conversation.
type Ticket struct {
	ID             string `json:"conversation_id" yaml:"conversation_id"`
	Issue          string `json:"customer_issue" yaml:"customer_issue"`
	TechResponse   string `json:"tech_response" yaml:"tech_response"`
	ResolutionTime string `json:"resolution_time" yaml:"resolution_time"`
	Category       string `json:"issue_category" yaml:"issue_category"`
	Status         string `json:"issue_status" yaml:"issue_status"`
}

// Validate reports whether the ticket can be used for training.
func (t Ticket) Validate() error {
	if strings.TrimSpace(t.Issue) == "" {
		return fmt.Errorf("ticket %q: empty customer issue: %w", t.ID, internalerr.ErrInvalidInput)
	}
	return nil
}

// ResolutionMinutes parses the leading integer of the resolution time field
// ("45 minutes" -> 45). ok is false when the field has no leading digits.
func (t Ticket) ResolutionMinutes() (int, bool) {
	s := strings.TrimSpace(t.ResolutionTime)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Issues returns the customer issue text of every ticket, in order.
func Issues(tickets []Ticket) []string {
	out := make([]string, len(tickets))
	for i, t := range tickets {
		out[i] = t.Issue
	}
	return out
}
