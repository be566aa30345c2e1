// Package diagnostics persists reported compiler diagnostics to a
// pluggable SQL store, per SPEC_FULL.md §4.11. The driver is chosen by the
// DSN's scheme: sqlite (default), postgres, mysql, or sqlserver — mirroring
// the teacher's pattern of selecting a concrete collaborator from a
// handful of registered drivers rather than hard-wiring one.
package diagnostics

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	bserrors "bsc/internal/errors"
)

// Record is one persisted diagnostic.
type Record struct {
	SessionID  uuid.UUID
	Kind       bserrors.Kind
	Message    string
	File       string
	Line       int
	Column     int
	ReportedAt time.Time
}

// Store wraps a database/sql handle with the schema this package needs.
type Store struct {
	db     *sql.DB
	driver string
}

// Open parses dsn's scheme to select a driver and opens the store,
// creating its table if absent. Supported schemes: "sqlite:" (default,
// modernc.org/sqlite), "postgres:" (lib/pq), "mysql:" (go-sql-driver/mysql),
// "sqlserver:" (denisenkom/go-mssqldb).
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver, source := parseDSN(dsn)

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: open %s: %w", driver, err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func parseDSN(dsn string) (driver, source string) {
	if dsn == "" {
		return "sqlite", "file::memory:?cache=shared"
	}
	parts := strings.SplitN(dsn, ":", 2)
	if len(parts) != 2 {
		return "sqlite", dsn
	}
	switch parts[0] {
	case "postgres":
		return "postgres", dsn
	case "mysql":
		return "mysql", parts[1]
	case "sqlserver":
		return "sqlserver", dsn
	default:
		return "sqlite", parts[1]
	}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS diagnostics (
			session_id  TEXT NOT NULL,
			kind        TEXT NOT NULL,
			message     TEXT NOT NULL,
			file        TEXT NOT NULL,
			line        INTEGER NOT NULL,
			column_no   INTEGER NOT NULL,
			reported_at TIMESTAMP NOT NULL
		)`)
	return err
}

// placeholder returns the driver's bind-parameter marker for the i'th
// argument of a query (1-indexed). lib/pq rejects sqlite/mysql-style `?`
// markers outright, so every query built here must go through this instead
// of assuming `?`.
func (s *Store) placeholder(i int) string {
	switch s.driver {
	case "postgres":
		return fmt.Sprintf("$%d", i)
	default:
		return "?"
	}
}

// Record appends one diagnostic row, tagged with its compiling session's
// UUID per SPEC_FULL.md §4.9.
func (s *Store) Record(ctx context.Context, r Record) error {
	query := fmt.Sprintf(
		`INSERT INTO diagnostics (session_id, kind, message, file, line, column_no, reported_at)
		 VALUES (%s, %s, %s, %s, %s, %s, %s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4),
		s.placeholder(5), s.placeholder(6), s.placeholder(7))
	_, err := s.db.ExecContext(ctx, query,
		r.SessionID.String(), string(r.Kind), r.Message, r.File, r.Line, r.Column, r.ReportedAt)
	return err
}

// History returns the most recent limit diagnostics, newest first, backing
// `bsc check --history`.
func (s *Store) History(ctx context.Context, limit int) ([]Record, error) {
	query := fmt.Sprintf(
		`SELECT session_id, kind, message, file, line, column_no, reported_at
		 FROM diagnostics ORDER BY reported_at DESC LIMIT %s`, s.placeholder(1))
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var sessionID string
		if err := rows.Scan(&sessionID, &r.Kind, &r.Message, &r.File, &r.Line, &r.Column, &r.ReportedAt); err != nil {
			return nil, err
		}
		r.SessionID, err = uuid.Parse(sessionID)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
