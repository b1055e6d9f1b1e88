// Package stale implements the three-way freshness classification at the
// heart of the audit: every scanned document ends up Fresh, Stale, or
// Unchecked, and the aggregate forms the run report.
package stale

import (
	"sort"
	"strings"
	"time"

	"docfresh/internal/config"
	"docfresh/internal/docscan"
	"docfresh/internal/fsutil"
	"docfresh/internal/gitutil"
	"docfresh/internal/logger"
)

// VerdictKind enumerates the mutually exclusive classification outcomes.
type VerdictKind int

const (
	// VerdictUnchecked marks documents that declare no artifacts, no
	// verification date, or whose patterns match nothing.
	VerdictUnchecked VerdictKind = iota
	// VerdictFresh marks documents whose artifacts are all within the
	// grace threshold.
	VerdictFresh
	// VerdictStale marks documents with at least one artifact modified
	// beyond the threshold.
	VerdictStale
)

// String returns the lowercase name of the verdict.
func (k VerdictKind) String() string {
	switch k {
	case VerdictFresh:
		return "fresh"
	case VerdictStale:
		return "stale"
	default:
		return "unchecked"
	}
}

// Verdict is the classification of a single document. Changes is populated
// only for VerdictStale.
type Verdict struct {
	Kind    VerdictKind
	Changes []ArtifactChange
}

// ArtifactChange records one artifact modified beyond the grace threshold.
type ArtifactChange struct {
	// File is the absolute path of the modified artifact.
	File string `json:"file"`
	// LastModified is the artifact's last commit date, RFC 3339.
	LastModified string `json:"lastModified"`
	// DaysSinceVerified is floor((lastModified - lastVerified) / 1 day).
	DaysSinceVerified int `json:"daysSinceVerified"`
}

// StaleDocument is one stale entry in the report.
type StaleDocument struct {
	Doc          string           `json:"doc"`
	Title        string           `json:"title"`
	LastVerified string           `json:"lastVerified"`
	Changes      []ArtifactChange `json:"changes"`
}

// Report is the aggregate result of one evaluation run. Struct field order
// is the serialization order of the JSON artifact.
type Report struct {
	StaleDocuments []StaleDocument `json:"staleDocuments"`
	FreshCount     int             `json:"freshCount"`
	UncheckedCount int             `json:"uncheckedCount"`
	ScannedAt      string          `json:"scannedAt"`
	ThresholdDays  int             `json:"thresholdDays"`
}

// TotalDocuments returns the number of documents the report accounts for.
func (r Report) TotalDocuments() int {
	return r.FreshCount + r.UncheckedCount + len(r.StaleDocuments)
}

// Evaluate classifies every document and assembles the report. repoRoot
// anchors artifact pattern expansion; dates answers the batched
// last-modified queries. Two runs against identical filesystem and
// version-control state produce identical reports apart from ScannedAt.
func Evaluate(docs []docscan.DocumentRecord, cfg *config.Config, repoRoot string, dates gitutil.DateProvider) Report {
	report := Report{
		StaleDocuments: []StaleDocument{},
		ScannedAt:      time.Now().UTC().Truncate(time.Second).Format(time.RFC3339),
		ThresholdDays:  cfg.ThresholdDays,
	}

	// Expand every document's patterns up front so the whole corpus is
	// resolved by a single bounded-concurrency batch query.
	expanded := make([][]string, len(docs))
	seen := make(map[string]struct{})
	var allFiles []string
	for i, doc := range docs {
		if len(doc.RelatedArtifacts) == 0 || doc.LastVerified == nil {
			continue
		}
		files := fsutil.ExpandPatterns(doc.RelatedArtifacts, repoRoot)
		expanded[i] = files
		for _, f := range files {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			allFiles = append(allFiles, f)
		}
	}
	sort.Strings(allFiles)
	logger.Info("querying last-modified dates for %d artifacts", len(allFiles))
	modified := dates.BatchLastModified(allFiles)

	for i, doc := range docs {
		verdict := classify(doc, expanded[i], modified, cfg.ThresholdDays)
		logger.Debug("%s: %s", doc.Path, verdict.Kind)
		switch verdict.Kind {
		case VerdictFresh:
			report.FreshCount++
		case VerdictUnchecked:
			report.UncheckedCount++
		case VerdictStale:
			report.StaleDocuments = append(report.StaleDocuments, StaleDocument{
				Doc:          doc.Path,
				Title:        doc.Title,
				LastVerified: doc.LastVerified.Format("2006-01-02"),
				Changes:      verdict.Changes,
			})
		}
	}

	sort.Slice(report.StaleDocuments, func(a, b int) bool {
		return report.StaleDocuments[a].Doc < report.StaleDocuments[b].Doc
	})
	return report
}

// classify produces the verdict for one document against the resolved
// last-modified dates.
func classify(doc docscan.DocumentRecord, files []string, modified map[string]*time.Time, thresholdDays int) Verdict {
	if len(doc.RelatedArtifacts) == 0 || doc.LastVerified == nil {
		return Verdict{Kind: VerdictUnchecked}
	}
	if len(files) == 0 {
		logger.Warn("%s: no files match %s; marking unchecked",
			doc.Path, strings.Join(doc.RelatedArtifacts, ", "))
		return Verdict{Kind: VerdictUnchecked}
	}

	var changes []ArtifactChange
	for _, file := range files {
		date := modified[file]
		if date == nil {
			// No history is not drift; the artifact simply cannot be
			// compared.
			continue
		}
		days := int(date.Sub(*doc.LastVerified).Hours() / 24)
		if days > thresholdDays {
			changes = append(changes, ArtifactChange{
				File:              file,
				LastModified:      date.Format(time.RFC3339),
				DaysSinceVerified: days,
			})
		}
	}
	if len(changes) == 0 {
		return Verdict{Kind: VerdictFresh}
	}

	// Deterministic change order: most-drifted first, path as tiebreak.
	sort.Slice(changes, func(a, b int) bool {
		if changes[a].DaysSinceVerified != changes[b].DaysSinceVerified {
			return changes[a].DaysSinceVerified > changes[b].DaysSinceVerified
		}
		return changes[a].File < changes[b].File
	})
	return Verdict{Kind: VerdictStale, Changes: changes}
}
