// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records pipeline runs in a local SQLite database.
// The ledger is operational history only; the remote paper tables stay
// the store of record, so losing the file loses no paper data.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const defaultHistoryLimit = 20

// Run is one recorded pipeline run for a single profile.
type Run struct {
	// ID is the run's uuid; Record mints one when empty.
	ID string

	Profile      string
	ResearchArea string

	// From and To bound the submission window that was fetched.
	From time.Time
	To   time.Time

	Fetched  int
	Ranked   int
	Excluded int

	// Synced counts rows the remote table accepted; TableTotal is the
	// table size afterwards.
	Synced     int
	TableTotal int
	TableID    string

	TopTitle string
	TopScore float64

	// Error is the failure text for unsuccessful runs, empty otherwise.
	Error string

	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed reports whether the run ended in an error.
func (r Run) Failed() bool {
	return r.Error != ""
}

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			profile TEXT NOT NULL,
			research_area TEXT,
			window_from TEXT,
			window_to TEXT,
			fetched INTEGER NOT NULL DEFAULT 0,
			ranked INTEGER NOT NULL DEFAULT 0,
			excluded INTEGER NOT NULL DEFAULT 0,
			synced INTEGER NOT NULL DEFAULT 0,
			table_total INTEGER NOT NULL DEFAULT 0,
			table_id TEXT,
			top_title TEXT,
			top_score REAL,
			error TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_profile ON runs(profile)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record upserts one run row and returns its ID, minting a uuid for
// runs that arrive without one.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, profile, research_area, window_from, window_to,
			fetched, ranked, excluded, synced, table_total, table_id,
			top_title, top_score, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			profile=excluded.profile, research_area=excluded.research_area,
			window_from=excluded.window_from, window_to=excluded.window_to,
			fetched=excluded.fetched, ranked=excluded.ranked,
			excluded=excluded.excluded, synced=excluded.synced,
			table_total=excluded.table_total, table_id=excluded.table_id,
			top_title=excluded.top_title, top_score=excluded.top_score,
			error=excluded.error, started_at=excluded.started_at,
			finished_at=excluded.finished_at`,
		run.ID, run.Profile, run.ResearchArea,
		timeText(run.From), timeText(run.To),
		run.Fetched, run.Ranked, run.Excluded, run.Synced,
		run.TableTotal, run.TableID,
		run.TopTitle, run.TopScore, run.Error,
		timeText(run.StartedAt), timeText(run.FinishedAt),
	)
	if err != nil {
		return "", fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	return run.ID, nil
}

// History returns the most recent runs, newest first. A non-positive
// limit selects the default of 20.
func (s *Store) History(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile, research_area, window_from, window_to,
			fetched, ranked, excluded, synced, table_total, table_id,
			top_title, top_score, error, started_at, finished_at
		 FROM runs
		 ORDER BY started_at DESC, rowid DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var from, to, started, finished string
		if err := rows.Scan(
			&run.ID, &run.Profile, &run.ResearchArea, &from, &to,
			&run.Fetched, &run.Ranked, &run.Excluded, &run.Synced,
			&run.TableTotal, &run.TableID,
			&run.TopTitle, &run.TopScore, &run.Error,
			&started, &finished,
		); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.From = timeValue(from)
		run.To = timeValue(to)
		run.StartedAt = timeValue(started)
		run.FinishedAt = timeValue(finished)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return runs, nil
}

func timeText(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func timeValue(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
