package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"go-lifeexp-report/internal/model"
)

// ErrRunNotFound is returned when a run id is unknown
var ErrRunNotFound = errors.New("run not found")

// Store persists runs, their errors and their report rows
type Store struct {
	db *sqlx.DB
}

var schemas = map[string][]string{
	"sqlite3": {
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			data_path TEXT,
			spec TEXT,
			status TEXT,
			record_count INTEGER DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS run_errors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			error_message TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS report_rows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			report INTEGER,
			report_name TEXT,
			position INTEGER,
			key1 TEXT,
			key2 TEXT,
			value REAL,
			record_count INTEGER
		);`,
	},
	"postgres": {
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			data_path TEXT,
			spec TEXT,
			status TEXT,
			record_count INTEGER DEFAULT 0,
			created_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS run_errors (
			id BIGSERIAL PRIMARY KEY,
			run_id TEXT,
			error_message TEXT,
			created_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS report_rows (
			id BIGSERIAL PRIMARY KEY,
			run_id TEXT,
			report INTEGER,
			report_name TEXT,
			position INTEGER,
			key1 TEXT,
			key2 TEXT,
			value DOUBLE PRECISION,
			record_count INTEGER
		);`,
	},
}

// Open connects to the run store and creates its tables if needed.
// driver is "sqlite3" or "postgres".
func Open(driver, dsn string) (*Store, error) {
	ddl, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	if driver == "sqlite3" {
		// sqlite serialises writers; one connection also keeps ":memory:" databases alive
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init %s store: %w", driver, err)
		}
	}
	return &Store{db: db}, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun stores a new pending run
func (s *Store) CreateRun(ctx context.Context, runID string, spec model.RunSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO runs (id, data_path, spec, status, record_count, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		runID, spec.DataPath, string(specJSON), "pending", 0, now, now)
	return err
}

// UpdateRunStatus updates run status and the number of records it loaded
func (s *Store) UpdateRunStatus(ctx context.Context, runID, status string, recordCount int) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE runs SET status = ?, record_count = ?, updated_at = ? WHERE id = ?`),
		status, recordCount, now, runID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// SaveRunError records an error for a run
func (s *Store) SaveRunError(ctx context.Context, runID string, runErr error) error {
	if runErr == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`),
		runID, runErr.Error(), now)
	return err
}

// SaveReportRows stores every row of the given results in one transaction and
// returns the number of rows written.
func (s *Store) SaveReportRows(ctx context.Context, runID string, results []model.AggregateResult) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	insert := tx.Rebind(`INSERT INTO report_rows
		(run_id, report, report_name, position, key1, key2, value, record_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	count := 0
	for _, res := range results {
		for pos, row := range res.Rows {
			var key1, key2 string
			if len(row.Keys) > 0 {
				key1 = row.Keys[0]
			}
			if len(row.Keys) > 1 {
				key2 = row.Keys[1]
			}
			if _, err := tx.ExecContext(ctx, insert,
				runID, int(res.Report), res.Name, pos, key1, key2, row.Value, row.Count); err != nil {
				return count, fmt.Errorf("save report %d row %d: %w", res.Report, pos, err)
			}
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// ListRuns returns all runs, newest first
func (s *Store) ListRuns(ctx context.Context) ([]model.RunInfo, error) {
	var runs []model.RunInfo
	err := s.db.SelectContext(ctx, &runs,
		`SELECT id, data_path, spec, status, record_count, created_at, updated_at FROM runs ORDER BY created_at DESC`)
	return runs, err
}

// GetRun fetches one run
func (s *Store) GetRun(ctx context.Context, runID string) (*model.RunInfo, error) {
	var run model.RunInfo
	err := s.db.GetContext(ctx, &run, s.db.Rebind(
		`SELECT id, data_path, spec, status, record_count, created_at, updated_at FROM runs WHERE id = ?`), runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRunErrors returns the error messages recorded for a run, oldest first
func (s *Store) GetRunErrors(ctx context.Context, runID string) ([]string, error) {
	var messages []string
	err := s.db.SelectContext(ctx, &messages, s.db.Rebind(
		`SELECT error_message FROM run_errors WHERE run_id = ? ORDER BY id`), runID)
	return messages, err
}

// GetReportRows returns the stored rows of a run in report and row order
func (s *Store) GetReportRows(ctx context.Context, runID string) ([]model.StoredRow, error) {
	var rows []model.StoredRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT run_id, report, report_name, position, key1, key2, value, record_count
		 FROM report_rows WHERE run_id = ? ORDER BY report, position`), runID)
	return rows, err
}
