// Package ticketsrc reads support tickets from CSV and JSONL exports.
package ticketsrc

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
	"github.com/cognicore/deskcluster/pkg/deskcluster/ticket"
)

// Columns is the CSV column order after the header row.
var Columns = []string{
	"conversation_id",
	"customer_issue",
	"tech_response",
	"resolution_time",
	"issue_category",
	"issue_status",
}

// Load picks the reader by file extension: .jsonl and .ndjson are read as
// JSON lines, everything else as CSV.
func Load(path string, logger zerolog.Logger) ([]ticket.Ticket, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return LoadJSONL(path, logger)
	default:
		return LoadCSV(path)
	}
}

// LoadCSV reads a CSV export with a header row.
func LoadCSV(path string) ([]ticket.Ticket, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	tickets, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return tickets, nil
}

// ReadCSV parses CSV rows in Columns order, skipping the first row. Short
// rows leave the missing fields empty; rows without an id get one from
// their position.
func ReadCSV(r io.Reader) ([]ticket.Ticket, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var tickets []ticket.Ticket
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %v: %w", row+1, err, internalerr.ErrInvalidInput)
		}
		if row == 0 {
			continue
		}
		tickets = append(tickets, fromRecord(rec, row))
	}

	if len(tickets) == 0 {
		return nil, fmt.Errorf("no tickets: %w", internalerr.ErrEmptyCorpus)
	}
	return tickets, nil
}

func fromRecord(rec []string, row int) ticket.Ticket {
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	t := ticket.Ticket{
		ID:             field(0),
		Issue:          field(1),
		TechResponse:   field(2),
		ResolutionTime: field(3),
		Category:       field(4),
		Status:         field(5),
	}
	if t.ID == "" {
		t.ID = "row-" + strconv.Itoa(row)
	}
	return t
}

// LoadJSONL reads one JSON ticket per line. Malformed lines are logged and
// skipped.
func LoadJSONL(path string, logger zerolog.Logger) ([]ticket.Ticket, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var tickets []ticket.Ticket
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var t ticket.Ticket
		if err := json.Unmarshal([]byte(text), &t); err != nil {
			logger.Warn().Err(err).Str("path", path).Int("line", line).Msg("skipping malformed ticket")
			continue
		}
		if t.ID == "" {
			t.ID = "line-" + strconv.Itoa(line)
		}
		tickets = append(tickets, t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if len(tickets) == 0 {
		return nil, fmt.Errorf("no valid tickets in %s: %w", path, internalerr.ErrEmptyCorpus)
	}
	return tickets, nil
}
