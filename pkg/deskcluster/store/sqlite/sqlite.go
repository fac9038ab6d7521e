package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/deskcluster/pkg/deskcluster/internalerr"
	"github.com/cognicore/deskcluster/pkg/deskcluster/store"
	"github.com/cognicore/deskcluster/pkg/deskcluster/ticket"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, internalerr.ErrStoreUnavailable)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal on %s: %v: %w", path, err, internalerr.ErrStoreUnavailable)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS tickets (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT UNIQUE NOT NULL,
	issue TEXT NOT NULL,
	tech_response TEXT,
	resolution_time TEXT,
	category TEXT,
	status TEXT
);

CREATE TABLE IF NOT EXISTS classifications (
	id TEXT PRIMARY KEY,
	snapshot_id TEXT,
	text TEXT NOT NULL,
	cluster_id INTEGER NOT NULL,
	category TEXT,
	confidence REAL NOT NULL,
	created_at TEXT NOT NULL
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveTickets upserts tickets by id in one transaction. An existing ticket
// keeps its position in ListTickets.
func (s *sqliteStore) SaveTickets(ctx context.Context, tickets []ticket.Ticket) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insert = `
INSERT INTO tickets (id, issue, tech_response, resolution_time, category, status)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	issue=excluded.issue,
	tech_response=excluded.tech_response,
	resolution_time=excluded.resolution_time,
	category=excluded.category,
	status=excluded.status;
`
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range tickets {
		if t.ID == "" {
			return fmt.Errorf("save ticket: empty id: %w", internalerr.ErrInvalidInput)
		}
		if _, err := stmt.ExecContext(ctx, t.ID, t.Issue, t.TechResponse, t.ResolutionTime, t.Category, t.Status); err != nil {
			return fmt.Errorf("save ticket %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// ListTickets returns every ticket in first-insertion order
func (s *sqliteStore) ListTickets(ctx context.Context) ([]ticket.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, issue, tech_response, resolution_time, category, status
FROM tickets
ORDER BY seq;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ticket.Ticket
	for rows.Next() {
		var t ticket.Ticket
		var resp, resTime, cat, status sql.NullString
		if err := rows.Scan(&t.ID, &t.Issue, &resp, &resTime, &cat, &status); err != nil {
			return nil, err
		}
		t.TechResponse = resp.String
		t.ResolutionTime = resTime.String
		t.Category = cat.String
		t.Status = status.String
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountTickets returns the number of stored tickets
func (s *sqliteStore) CountTickets(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&n)
	return n, err
}

// RecordClassification stores one classification result
func (s *sqliteStore) RecordClassification(ctx context.Context, c store.Classification) error {
	if c.ID == "" {
		return fmt.Errorf("record classification: empty id: %w", internalerr.ErrInvalidInput)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO classifications (id, snapshot_id, text, cluster_id, category, confidence, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);
`, c.ID, c.SnapshotID, c.Text, c.ClusterID, c.Category, c.Confidence, c.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// ListClassifications returns the newest records first. IDs are ULIDs, so
// ordering by id follows creation time.
func (s *sqliteStore) ListClassifications(ctx context.Context, limit int) ([]store.Classification, error) {
	query := `
SELECT id, snapshot_id, text, cluster_id, category, confidence, created_at
FROM classifications
ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Classification
	for rows.Next() {
		var c store.Classification
		var snapshot, category sql.NullString
		var created string
		if err := rows.Scan(&c.ID, &snapshot, &c.Text, &c.ClusterID, &category, &c.Confidence, &created); err != nil {
			return nil, err
		}
		c.SnapshotID = snapshot.String
		c.Category = category.String
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			c.CreatedAt = ts
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
