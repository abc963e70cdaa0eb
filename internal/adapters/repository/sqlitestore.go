package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/pacematch/internal/domain/model"
	"github.com/okian/pacematch/pkg/metrics"
)

const (
	sqliteBusyCode    = 5
	busyRetryAttempts = 5
	busyRetryInitial  = 10 * time.Millisecond
	busyRetryMax      = 200 * time.Millisecond
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id            TEXT    NOT NULL,
	name                TEXT    NOT NULL,
	finish_time_seconds INTEGER NOT NULL,
	gender              TEXT    NOT NULL,
	age_lower           INTEGER NOT NULL,
	age_upper           INTEGER NOT NULL,
	shoe_description    TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_matches_event ON matches(event_id);
`

// SQLiteStore keeps matches in a SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
}

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Append inserts matches in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, matches []model.Match) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if len(matches) == 0 {
		return nil
	}
	start := time.Now()

	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO matches
			(event_id, name, finish_time_seconds, gender, age_lower, age_upper, shoe_description)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		defer stmt.Close()
		for _, m := range matches {
			if _, err := stmt.ExecContext(ctx, m.EventID, m.Name, m.FinishTimeSeconds,
				m.Gender, m.AgeLower, m.AgeUpper, m.ShoeDescription); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("append matches: %w", err)
	}

	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	return nil
}

// Load returns every stored match in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) ([]model.Match, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	rows, err := s.db.QueryContext(ctx, `SELECT event_id, name, finish_time_seconds, gender,
		age_lower, age_upper, shoe_description FROM matches ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []model.Match
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.EventID, &m.Name, &m.FinishTimeSeconds, &m.Gender,
			&m.AgeLower, &m.AgeUpper, &m.ShoeDescription); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return out, nil
}

// Count returns the number of stored matches.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return n, nil
}

// Close closes the database. Later calls are no-ops.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitial
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil || !isSQLiteBusy(lastErr) {
			return lastErr
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMax {
			delay = next
		}
	}
	return lastErr
}
