package audit

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"docfresh/internal/config"
	"docfresh/internal/gitutil"
)

type fixture struct {
	repoRoot string
	docsRoot string
	jsonPath string
	mdPath   string
	provider *gitutil.Fake
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repoRoot := t.TempDir()
	docsRoot := filepath.Join(repoRoot, "docs")
	if err := os.MkdirAll(docsRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	outDir := t.TempDir()
	return &fixture{
		repoRoot: repoRoot,
		docsRoot: docsRoot,
		jsonPath: filepath.Join(outDir, "report.json"),
		mdPath:   filepath.Join(outDir, "report.md"),
		provider: &gitutil.Fake{
			Available: true,
			Root:      repoRoot,
			Dates:     map[string]time.Time{},
		},
	}
}

func (f *fixture) writeDoc(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(f.docsRoot, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) writeArtifact(t *testing.T, rel string, modified time.Time) {
	t.Helper()
	path := filepath.Join(f.repoRoot, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("artifact\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f.provider.Dates[path] = modified
}

func (f *fixture) options(out *bytes.Buffer) Options {
	format := config.FormatBoth
	return Options{
		Overrides: config.Overrides{
			DocsRoot:     &f.docsRoot,
			Format:       &format,
			JSONPath:     &f.jsonPath,
			MarkdownPath: &f.mdPath,
		},
		Stdout:   out,
		Provider: f.provider,
	}
}

func TestRunStale(t *testing.T) {
	f := newFixture(t)
	f.writeArtifact(t, "src/server.go", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	f.writeDoc(t, "server.md", `---
title: Server Guide
related_artifacts:
  - src/server.go
last_verified: "2026-01-01"
---
`)

	var out bytes.Buffer
	result, err := Run(f.options(&out))

	if !errors.Is(err, ErrStaleFound) {
		t.Fatalf("expected ErrStaleFound, got %v", err)
	}
	if ExitCode(err) != 1 {
		t.Errorf("ExitCode = %d, want 1", ExitCode(err))
	}
	if len(result.Report.StaleDocuments) != 1 {
		t.Errorf("stale documents = %d, want 1", len(result.Report.StaleDocuments))
	}
	if _, err := os.Stat(f.jsonPath); err != nil {
		t.Error("expected json report to be written")
	}
	if _, err := os.Stat(f.mdPath); err != nil {
		t.Error("expected markdown report to be written")
	}
	if !strings.Contains(out.String(), "stale: 1") {
		t.Errorf("stdout missing stale count:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "server.md") {
		t.Errorf("stdout missing stale table entry:\n%s", out.String())
	}
}

func TestRunAllFresh(t *testing.T) {
	f := newFixture(t)
	f.writeArtifact(t, "src/app.go", time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC))
	f.writeDoc(t, "app.md", `---
title: App Guide
related_artifacts:
  - src/app.go
last_verified: "2026-01-01"
---
`)

	var out bytes.Buffer
	result, err := Run(f.options(&out))

	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if ExitCode(err) != 0 {
		t.Errorf("ExitCode = %d, want 0", ExitCode(err))
	}
	if result.Report.FreshCount != 1 {
		t.Errorf("freshCount = %d, want 1", result.Report.FreshCount)
	}
	if !strings.Contains(out.String(), "fresh: 1") {
		t.Errorf("stdout missing fresh count:\n%s", out.String())
	}
}

func TestRunMixedCorpusCountInvariant(t *testing.T) {
	f := newFixture(t)
	f.writeArtifact(t, "fresh.go", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	f.writeArtifact(t, "stale.go", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	f.writeDoc(t, "fresh.md", "---\ntitle: F\nrelated_artifacts: [fresh.go]\nlast_verified: \"2026-01-01\"\n---\n")
	f.writeDoc(t, "stale.md", "---\ntitle: S\nrelated_artifacts: [stale.go]\nlast_verified: \"2026-01-01\"\n---\n")
	f.writeDoc(t, "unchecked.md", "---\ntitle: U\n---\n")
	f.writeDoc(t, "nomatch.md", "---\ntitle: N\nrelated_artifacts: [gone/**]\nlast_verified: \"2026-01-01\"\n---\n")

	var out bytes.Buffer
	result, err := Run(f.options(&out))

	if !errors.Is(err, ErrStaleFound) {
		t.Fatalf("expected ErrStaleFound, got %v", err)
	}
	rep := result.Report
	if rep.TotalDocuments() != 4 {
		t.Errorf("total = %d, want 4", rep.TotalDocuments())
	}
	if rep.FreshCount != 1 || rep.UncheckedCount != 2 || len(rep.StaleDocuments) != 1 {
		t.Errorf("partition fresh=%d unchecked=%d stale=%d",
			rep.FreshCount, rep.UncheckedCount, len(rep.StaleDocuments))
	}
}

func TestRunVCSUnavailable(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "doc.md", "---\ntitle: D\n---\n")
	f.provider.Available = false

	var out bytes.Buffer
	_, err := Run(f.options(&out))

	if err == nil {
		t.Fatal("expected infrastructure error")
	}
	var infra *InfraError
	if !errors.As(err, &infra) {
		t.Errorf("expected InfraError, got %T", err)
	}
	if ExitCode(err) != 2 {
		t.Errorf("ExitCode = %d, want 2", ExitCode(err))
	}
	if _, err := os.Stat(f.jsonPath); !os.IsNotExist(err) {
		t.Error("no report may be written when version control is unavailable")
	}
	if _, err := os.Stat(f.mdPath); !os.IsNotExist(err) {
		t.Error("no markdown report may be written when version control is unavailable")
	}
}

func TestRunMissingDocsRoot(t *testing.T) {
	f := newFixture(t)
	missing := filepath.Join(f.repoRoot, "no-docs-here")
	f.docsRoot = missing

	var out bytes.Buffer
	_, err := Run(f.options(&out))
	if ExitCode(err) != 2 {
		t.Errorf("ExitCode = %d, want 2 (err %v)", ExitCode(err), err)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "doc.md", "---\ntitle: D\n---\n")
	historyPath := filepath.Join(t.TempDir(), "runs.db")

	var out bytes.Buffer
	opts := f.options(&out)
	opts.Overrides.HistoryPath = &historyPath

	result, err := Run(opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.RunID == "" {
		t.Error("expected a recorded run ID")
	}
	if _, err := os.Stat(historyPath); err != nil {
		t.Error("expected history database to exist")
	}
}

func TestRunFinalSummaryLine(t *testing.T) {
	f := newFixture(t)
	f.writeDoc(t, "doc.md", "---\ntitle: D\n---\n")

	var out bytes.Buffer
	if _, err := Run(f.options(&out)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "audited 1 documents (threshold 7 days)") {
		t.Errorf("missing final summary line:\n%s", out.String())
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Error("nil error should exit 0")
	}
	if ExitCode(ErrStaleFound) != 1 {
		t.Error("ErrStaleFound should exit 1")
	}
	if ExitCode(errors.New("boom")) != 2 {
		t.Error("other errors should exit 2")
	}
	if ExitCode(&InfraError{Err: errors.New("no repo")}) != 2 {
		t.Error("InfraError should exit 2")
	}
}
