// Package history persists a record of every finished run in SQLite.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/txtmerge/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Run is one persisted run
type Run struct {
	ID           string
	Root         string
	State        models.RunState
	Discovered   int
	Processed    int
	FileErrors   int
	OutputPath   string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns the wall-clock time of the run
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store manages the SQLite run history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath.
// ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry retries statements that fail with "database is locked"
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.dbPath
}

// RecordRun persists a finished run. A missing ID is filled with a new UUID.
func (s *Store) RecordRun(ctx context.Context, result models.RunResult) error {
	id := result.ID
	if id == "" {
		id = uuid.New().String()
	}
	finished := result.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, root, state, discovered, processed, file_errors,
		                  output_path, error_message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, result.Root, string(result.State), result.Discovered, result.Processed,
		result.FileErrors, result.OutputPath, result.ErrorMessage(),
		result.StartedAt.UTC(), finished.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
// A non-empty root restricts the listing to runs of that directory.
func (s *Store) ListRuns(ctx context.Context, root string, limit int) ([]Run, error) {
	query := `SELECT id, root, state, discovered, processed, file_errors,
	                 output_path, error_message, started_at, finished_at
	          FROM runs`
	var args []interface{}
	if root != "" {
		query += " WHERE root = ?"
		args = append(args, root)
	}
	query += " ORDER BY started_at DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var state string
		if err := rows.Scan(&r.ID, &r.Root, &state, &r.Discovered, &r.Processed, &r.FileErrors,
			&r.OutputPath, &r.ErrorMessage, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.State = models.RunState(state)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Clear deletes every recorded run and returns how many were removed
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs")
	if err != nil {
		return 0, fmt.Errorf("delete runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted runs: %w", err)
	}
	return n, nil
}
