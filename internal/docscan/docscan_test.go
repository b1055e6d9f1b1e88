package docscan

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanFullHeader(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "guide.md", `---
title: Deployment Guide
description: How we ship.
related_artifacts:
  - "deploy/**/*.sh"
  - Makefile
last_verified: "2026-01-15"
---
# Deployment
`)

	records, err := Scan(root, nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	r := records[0]
	if r.Title != "Deployment Guide" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Description != "How we ship." {
		t.Errorf("description = %q", r.Description)
	}
	if len(r.RelatedArtifacts) != 2 || r.RelatedArtifacts[0] != "deploy/**/*.sh" {
		t.Errorf("related artifacts = %v", r.RelatedArtifacts)
	}
	if r.LastVerified == nil {
		t.Fatal("expected last verified date")
	}
	want := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	if !r.LastVerified.Equal(want) {
		t.Errorf("last verified = %v, want %v", r.LastVerified, want)
	}
	if !filepath.IsAbs(r.Path) {
		t.Errorf("expected absolute path, got %q", r.Path)
	}
}

func TestScanMissingTitleGetsPlaceholder(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "anon.md", `---
last_verified: "2026-01-01"
---
body
`)

	records, err := Scan(root, nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Title != PlaceholderTitle {
		t.Errorf("title = %q, want placeholder", records[0].Title)
	}
}

func TestScanNoFrontMatter(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "plain.md", "# Just prose\n\nNo header here.\n")

	records, err := Scan(root, nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.RelatedArtifacts != nil || r.LastVerified != nil {
		t.Errorf("expected empty metadata, got %+v", r)
	}
}

func TestScanInvalidDateSkipsDocument(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "bad.md", `---
title: Bad Date
last_verified: "15/01/2026"
---
`)
	writeDoc(t, root, "good.md", `---
title: Good
last_verified: "2026-01-15"
---
`)

	records, err := Scan(root, nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected only the valid document, got %d records", len(records))
	}
	if records[0].Title != "Good" {
		t.Errorf("unexpected surviving document %q", records[0].Title)
	}
}

func TestScanUnquotedDate(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "doc.md", `---
title: Unquoted
last_verified: 2026-02-01
---
`)

	records, err := Scan(root, nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].LastVerified == nil {
		t.Fatal("expected last verified date")
	}
	want := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if !records[0].LastVerified.Equal(want) {
		t.Errorf("last verified = %v, want %v", records[0].LastVerified, want)
	}
}

func TestScanMistypedArtifactsTreatedAbsent(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "doc.md", `---
title: Odd
related_artifacts: "src/**"
last_verified: "2026-01-01"
---
`)

	records, err := Scan(root, nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].RelatedArtifacts != nil {
		t.Errorf("expected artifacts downgraded to absent, got %v", records[0].RelatedArtifacts)
	}
}

func TestScanMalformedHeaderSkipsDocument(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "broken.md", "---\ntitle: [unclosed\n---\n")
	writeDoc(t, root, "unterminated.md", "---\ntitle: never closed\n")

	records, err := Scan(root, nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected malformed documents to be skipped, got %d", len(records))
	}
}

func TestScanHonorsIgnore(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "keep.md", "# keep\n")
	writeDoc(t, root, "drafts/skip.md", "# skip\n")

	records, err := Scan(root, []string{"drafts/**"})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if filepath.Base(records[0].Path) != "keep.md" {
		t.Errorf("unexpected record %q", records[0].Path)
	}
}

func TestScanMissingRoot(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "absent"), nil); err == nil {
		t.Error("expected error for missing docs root")
	}
}

func TestScanSortedByPath(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "z.md", "# z\n")
	writeDoc(t, root, "a.md", "# a\n")
	writeDoc(t, root, "m/n.md", "# n\n")

	records, err := Scan(root, nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if filepath.Base(records[0].Path) != "a.md" || filepath.Base(records[2].Path) != "z.md" {
		t.Errorf("records not sorted: %v", records)
	}
}
