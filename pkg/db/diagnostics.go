package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dtnitsch/llm-chat-extractor/models"
)

// DiagnosticRow is a stored diagnostic.
type DiagnosticRow struct {
	DiagnosticID int64
	RunID        sql.NullInt64
	models.Diagnostic
}

// DiagnosticFilter narrows ListDiagnostics. Zero values match everything.
type DiagnosticFilter struct {
	Limit  int
	Engine string
	Type   models.DiagnosticType
	RunID  int64
}

// ReasonCount is one row of the drop-reason breakdown.
type ReasonCount struct {
	Engine string
	Reason string
	Count  int
}

// DiagnosticStats summarises the diagnostics table.
type DiagnosticStats struct {
	Total      int
	ByType     map[models.DiagnosticType]int
	ByKind     map[models.ContentKind]int
	TopReasons []ReasonCount
}

// InsertDiagnostic stores d, attaching it to runID when runID > 0.
func (db *DB) InsertDiagnostic(runID int64, d models.Diagnostic) (int64, error) {
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var run sql.NullInt64
	if runID > 0 {
		run = sql.NullInt64{Int64: runID, Valid: true}
	}

	result, err := db.Exec(`
		INSERT INTO diagnostics (run_id, type, kind, engine, segment, reason, snippet, message_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run, string(d.Type), string(d.Kind), d.Engine, d.Segment, d.Reason, d.Snippet, d.MessageHash, createdAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert diagnostic: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get diagnostic ID: %w", err)
	}
	return id, nil
}

// Record stores d without a run.
func (db *DB) Record(d models.Diagnostic) error {
	_, err := db.InsertDiagnostic(0, d)
	return err
}

// RunRecorder stores diagnostics against one batch run.
type RunRecorder struct {
	db    *DB
	runID int64
}

func (db *DB) RunRecorder(runID int64) *RunRecorder {
	return &RunRecorder{db: db, runID: runID}
}

func (r *RunRecorder) Record(d models.Diagnostic) error {
	_, err := r.db.InsertDiagnostic(r.runID, d)
	return err
}

// ListDiagnostics returns stored diagnostics, newest first.
func (db *DB) ListDiagnostics(f DiagnosticFilter) ([]DiagnosticRow, error) {
	var where []string
	var args []interface{}
	if f.Engine != "" {
		where = append(where, "engine = ?")
		args = append(args, f.Engine)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.RunID > 0 {
		where = append(where, "run_id = ?")
		args = append(args, f.RunID)
	}

	query := `
		SELECT diagnostic_id, run_id, type, COALESCE(kind, ''), COALESCE(engine, ''), segment,
		       COALESCE(reason, ''), COALESCE(snippet, ''), message_hash, created_at
		FROM diagnostics`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY diagnostic_id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostics: %w", err)
	}
	defer rows.Close()

	var out []DiagnosticRow
	for rows.Next() {
		var r DiagnosticRow
		var typ, kind string
		if err := rows.Scan(&r.DiagnosticID, &r.RunID, &typ, &kind, &r.Engine, &r.Segment,
			&r.Reason, &r.Snippet, &r.MessageHash, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		r.Type = models.DiagnosticType(typ)
		r.Kind = models.ContentKind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats counts diagnostics by type and kind and lists the most common drop
// reasons, at most topN of them.
func (db *DB) Stats(topN int) (*DiagnosticStats, error) {
	stats := &DiagnosticStats{
		ByType: make(map[models.DiagnosticType]int),
		ByKind: make(map[models.ContentKind]int),
	}

	rows, err := db.Query(`SELECT type, COALESCE(kind, ''), COUNT(*) FROM diagnostics GROUP BY type, kind`)
	if err != nil {
		return nil, fmt.Errorf("failed to count diagnostics: %w", err)
	}
	for rows.Next() {
		var typ, kind string
		var n int
		if err := rows.Scan(&typ, &kind, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		stats.Total += n
		stats.ByType[models.DiagnosticType(typ)] += n
		if kind != "" {
			stats.ByKind[models.ContentKind(kind)] += n
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if topN <= 0 {
		return stats, nil
	}

	rows, err = db.Query(`
		SELECT COALESCE(engine, ''), COALESCE(reason, ''), COUNT(*) AS n
		FROM diagnostics
		WHERE type IN ('dropped', 'fallback')
		GROUP BY engine, reason
		ORDER BY n DESC, engine, reason
		LIMIT ?
	`, topN)
	if err != nil {
		return nil, fmt.Errorf("failed to query drop reasons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rc ReasonCount
		if err := rows.Scan(&rc.Engine, &rc.Reason, &rc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan drop reason: %w", err)
		}
		stats.TopReasons = append(stats.TopReasons, rc)
	}
	return stats, rows.Err()
}

// ClearDiagnostics deletes every diagnostic and returns how many were removed.
func (db *DB) ClearDiagnostics() (int64, error) {
	result, err := db.Exec("DELETE FROM diagnostics")
	if err != nil {
		return 0, fmt.Errorf("failed to clear diagnostics: %w", err)
	}
	return result.RowsAffected()
}
