// Package history appends completed run summaries to a sqlite database.
// The database is a write-only output artifact: the auditor never reads it
// back, so runs stay independent of one another.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver for database/sql

	"docfresh/internal/stale"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    scanned_at TEXT NOT NULL,
    threshold_days INTEGER NOT NULL,
    fresh_count INTEGER NOT NULL,
    stale_count INTEGER NOT NULL,
    unchecked_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS stale_documents (
    run_id TEXT NOT NULL REFERENCES runs(id),
    doc TEXT NOT NULL,
    title TEXT NOT NULL,
    last_verified TEXT NOT NULL,
    change_count INTEGER NOT NULL,
    max_drift_days INTEGER NOT NULL
);
`

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(context.Background(), p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %s: %w", p, err)
		}
	}
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure history schema: %w", err)
	}
	return db, nil
}

// Append records one completed run and returns its generated run ID.
func Append(db *sql.DB, rep stale.Report) (string, error) {
	ctx := context.Background()
	runID := uuid.NewString()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, scanned_at, threshold_days, fresh_count, stale_count, unchecked_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, rep.ScannedAt, rep.ThresholdDays,
		rep.FreshCount, len(rep.StaleDocuments), rep.UncheckedCount,
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, doc := range rep.StaleDocuments {
		drift := 0
		if len(doc.Changes) > 0 {
			drift = doc.Changes[0].DaysSinceVerified
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stale_documents (run_id, doc, title, last_verified, change_count, max_drift_days)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, doc.Doc, doc.Title, doc.LastVerified, len(doc.Changes), drift,
		); err != nil {
			return "", fmt.Errorf("insert stale document %s: %w", doc.Doc, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit history: %w", err)
	}
	return runID, nil
}

// Record opens the database at path, appends the report, and closes it.
func Record(path string, rep stale.Report) (string, error) {
	db, err := Open(path)
	if err != nil {
		return "", fmt.Errorf("open history %s: %w", path, err)
	}
	defer db.Close()
	return Append(db, rep)
}
