// Package runlog persists per-epoch training metrics to a local SQLite database.
package runlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite-backed log of training runs and their per-epoch metrics.
type Store struct {
	db *sql.DB
}

// NewStore opens the run-log database at dbPath, creating the file and its
// directory when missing.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run log directory: %v", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log database: %v", err)
	}

	store := &Store{db: db}

	if err := store.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// createTables creates the runs and epoch_metrics tables
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL,
		started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		finished_at TIMESTAMP,
		epochs INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS epoch_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		epoch INTEGER NOT NULL,
		name TEXT NOT NULL,
		value FLOAT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_epoch_metrics_run ON epoch_metrics(run_id, name, epoch);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create run log tables: %v", err)
	}

	return nil
}

// StartRun registers a new training run and returns its row ID.
func (s *Store) StartRun(jobID string) (int64, error) {
	result, err := s.db.Exec("INSERT INTO runs (job_id) VALUES (?)", jobID)
	if err != nil {
		return 0, fmt.Errorf("failed to start run: %v", err)
	}
	return result.LastInsertId()
}

// FinishRun marks a run finished after the given number of epochs.
func (s *Store) FinishRun(runID int64, epochs int) error {
	_, err := s.db.Exec(
		"UPDATE runs SET finished_at = ?, epochs = ? WHERE id = ?",
		time.Now(), epochs, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %v", err)
	}
	return nil
}

// RecordEpoch stores every metric of one epoch in a single transaction.
func (s *Store) RecordEpoch(runID int64, epoch int, logs map[string]float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO epoch_metrics (run_id, epoch, name, value) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare metric insert: %v", err)
	}
	defer stmt.Close()

	for name, value := range logs {
		if _, err := stmt.Exec(runID, epoch, name, value); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record metric %s: %v", name, err)
		}
	}

	return tx.Commit()
}

// MetricSeries returns the recorded values of one metric for a run, ordered
// by epoch.
func (s *Store) MetricSeries(runID int64, name string) ([]float64, error) {
	rows, err := s.db.Query(
		"SELECT value FROM epoch_metrics WHERE run_id = ? AND name = ? ORDER BY epoch",
		runID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric series: %v", err)
	}
	defer rows.Close()

	var series []float64
	for rows.Next() {
		var value float64
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan metric value: %v", err)
		}
		series = append(series, value)
	}

	return series, rows.Err()
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
