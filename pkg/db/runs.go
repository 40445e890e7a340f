package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Run represents one batch invocation
type Run struct {
	RunID         int64
	CreatedAt     time.Time
	FinishedAt    sql.NullTime
	Source        string
	Workers       int
	MessageCount  int
	OrdersCount   int
	ProductsCount int
	TextCount     int
	DropCount     int
	OutDir        string
}

// RunCounts are the totals written when a run finishes.
type RunCounts struct {
	Messages int
	Orders   int
	Products int
	Text     int
	Drops    int
}

// CreateRun records the start of a batch over source.
func (db *DB) CreateRun(source string, workers int, outDir string) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (source, workers, out_dir)
		VALUES (?, ?, ?)
	`, source, workers, outDir)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}
	return result.LastInsertId()
}

// FinishRun stores the final counts of a run.
func (db *DB) FinishRun(runID int64, c RunCounts) error {
	result, err := db.Exec(`
		UPDATE runs
		SET finished_at = ?, message_count = ?, orders_count = ?, products_count = ?, text_count = ?, drop_count = ?
		WHERE run_id = ?
	`, time.Now().UTC(), c.Messages, c.Orders, c.Products, c.Text, c.Drops, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("run %d not found", runID)
	}
	return nil
}

// GetRun returns a run by ID
func (db *DB) GetRun(runID int64) (*Run, error) {
	var r Run
	var outDir sql.NullString
	err := db.QueryRow(`
		SELECT run_id, created_at, finished_at, source, workers, message_count,
		       orders_count, products_count, text_count, drop_count, out_dir
		FROM runs WHERE run_id = ?
	`, runID).Scan(&r.RunID, &r.CreatedAt, &r.FinishedAt, &r.Source, &r.Workers, &r.MessageCount,
		&r.OrdersCount, &r.ProductsCount, &r.TextCount, &r.DropCount, &outDir)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	r.OutDir = outDir.String
	return &r, nil
}

// ListRuns returns the most recent runs, newest first
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT run_id, created_at, finished_at, source, workers, message_count,
		       orders_count, products_count, text_count, drop_count, COALESCE(out_dir, '')
		FROM runs
		ORDER BY run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.CreatedAt, &r.FinishedAt, &r.Source, &r.Workers, &r.MessageCount,
			&r.OrdersCount, &r.ProductsCount, &r.TextCount, &r.DropCount, &r.OutDir); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetLatestRunID returns the newest run, or 0 when there is none
func (db *DB) GetLatestRunID() (int64, error) {
	var id sql.NullInt64
	if err := db.QueryRow("SELECT MAX(run_id) FROM runs").Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get latest run: %w", err)
	}
	return id.Int64, nil
}
