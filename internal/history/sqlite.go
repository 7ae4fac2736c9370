package history

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/masonlet/starlet-setup/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (creating when needed) the ledger at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryHistory, "could not open history database").
			WithContext(errors.KeyPath, dbPath).
			Build()
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.WrapError(err, errors.CategoryHistory, "failed to initialize history schema").
			WithContext(errors.KeyPath, dbPath).
			Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		target TEXT NOT NULL,
		modules TEXT,
		build_path TEXT,
		build_type TEXT,
		status TEXT NOT NULL,
		exit_code INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts run, replacing an earlier record with the same ID.
func (s *SQLiteStore) Record(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	modules, err := json.Marshal(run.Modules)
	if err != nil {
		return errors.WrapError(err, errors.CategoryHistory, "failed to encode run modules").Build()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, mode, target, modules, build_path, build_type, status, exit_code, error, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Mode, run.Target, string(modules), run.BuildPath, run.BuildType,
		string(run.Status), run.ExitCode, run.Error, run.StartedAt.UnixMilli(), run.Duration.Milliseconds(),
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryHistory, "failed to record run").Build()
	}
	return nil
}

// List returns up to limit runs, newest first. A limit <= 0 returns all runs.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, target, modules, build_path, build_type, status, exit_code, error, started_at, duration_ms
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryHistory, "failed to query runs").Build()
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryHistory, "failed to iterate runs").Build()
	}
	return runs, nil
}

// Get returns the run with id or ErrRunNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, mode, target, modules, build_path, build_type, status, exit_code, error, started_at, duration_ms
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound.WithContext("run_id", id)
	}
	return run, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run                   Run
		modules, errText      sql.NullString
		buildPath, buildType  sql.NullString
		status                string
		startedMs, durationMs int64
	)
	err := sc.Scan(&run.ID, &run.Mode, &run.Target, &modules, &buildPath, &buildType,
		&status, &run.ExitCode, &errText, &startedMs, &durationMs)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryHistory, "failed to scan run").Build()
	}
	if modules.Valid && modules.String != "" && modules.String != "null" {
		if err := json.Unmarshal([]byte(modules.String), &run.Modules); err != nil {
			return nil, errors.WrapError(err, errors.CategoryHistory, "failed to decode run modules").Build()
		}
	}
	run.BuildPath = buildPath.String
	run.BuildType = buildType.String
	run.Error = errText.String
	run.Status = Status(status)
	run.StartedAt = time.UnixMilli(startedMs)
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return &run, nil
}
