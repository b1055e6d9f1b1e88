package history

import (
	"context"
	"path/filepath"
	"testing"

	"docfresh/internal/stale"
)

func sampleReport() stale.Report {
	return stale.Report{
		StaleDocuments: []stale.StaleDocument{{
			Doc:          "/docs/deploy.md",
			Title:        "Deployment Guide",
			LastVerified: "2026-01-01",
			Changes: []stale.ArtifactChange{
				{File: "/repo/run.sh", LastModified: "2026-02-01T00:00:00Z", DaysSinceVerified: 31},
			},
		}},
		FreshCount:     3,
		UncheckedCount: 1,
		ScannedAt:      "2026-08-24T12:00:00Z",
		ThresholdDays:  7,
	}
}

func TestRecordAppendsRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history", "runs.db")

	runID, err := Record(path, sampleReport())
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if runID == "" {
		t.Fatal("expected a run ID")
	}

	db, err := Open(path)
	if err != nil {
		t.Fatalf("reopen history: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM runs WHERE id = ?", runID).Scan(&count); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 run row, got %d", count)
	}

	var docCount, drift int
	if err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*), COALESCE(MAX(max_drift_days), 0) FROM stale_documents WHERE run_id = ?",
		runID).Scan(&docCount, &drift); err != nil {
		t.Fatalf("count stale documents: %v", err)
	}
	if docCount != 1 || drift != 31 {
		t.Errorf("stale rows = %d (drift %d), want 1 (drift 31)", docCount, drift)
	}
}

func TestRecordMultipleRunsAccumulate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	if _, err := Record(path, sampleReport()); err != nil {
		t.Fatal(err)
	}
	if _, err := Record(path, sampleReport()); err != nil {
		t.Fatal(err)
	}

	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected 2 accumulated runs, got %d", count)
	}
}
