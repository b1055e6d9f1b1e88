// Package audit wires the full freshness pipeline: configuration, corpus
// scan, artifact expansion, version-control queries, classification, and
// report generation. It owns the error taxonomy the CLI maps to exit codes.
package audit

import (
	"errors"
	"fmt"
	"io"
	"os"

	"docfresh/internal/config"
	"docfresh/internal/docscan"
	"docfresh/internal/gitutil"
	"docfresh/internal/history"
	"docfresh/internal/logger"
	"docfresh/internal/report"
	"docfresh/internal/stale"
)

// ErrStaleFound is returned when the run completed normally but at least
// one document is stale. The CLI maps it to exit code 1.
var ErrStaleFound = errors.New("stale documents found")

// InfraError wraps failures that must abort the run: no version control,
// unreadable corpus root, unwritable report outputs. The CLI maps it to
// exit code 2.
type InfraError struct {
	Err error
}

func (e *InfraError) Error() string { return e.Err.Error() }

func (e *InfraError) Unwrap() error { return e.Err }

func infraErr(format string, args ...any) error {
	return &InfraError{Err: fmt.Errorf(format, args...)}
}

// ExitCode maps a Run error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrStaleFound):
		return 1
	default:
		return 2
	}
}

// Options configures one audit run.
type Options struct {
	// ConfigPath names the optional JSONC config file; empty means
	// defaults plus overrides only.
	ConfigPath string
	Overrides  config.Overrides
	// Stdout receives the human-readable summary. Defaults to os.Stdout.
	Stdout io.Writer
	// Provider replaces the git-backed date provider; used by tests.
	Provider gitutil.DateProvider
}

// Result carries the completed report and, when history is configured, the
// recorded run ID.
type Result struct {
	Config config.Config
	Report stale.Report
	RunID  string
}

// Run executes one audit. Per-document problems degrade to warnings;
// infrastructure problems abort before any report file is written.
func Run(opts Options) (Result, error) {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	cfg := config.Resolve(opts.ConfigPath, opts.Overrides)
	result := Result{Config: cfg}

	provider := opts.Provider
	if provider == nil {
		provider = gitutil.NewGit(cfg.DocsRoot, gitutil.Options{
			UseAuthorDate:      cfg.VCS.UseAuthorDate,
			IncludeUncommitted: cfg.VCS.IncludeUncommitted,
			Concurrency:        cfg.Concurrency,
		})
	}

	// The availability check gates the whole run: without a repository
	// there is nothing trustworthy to compare against, and no report may
	// be written.
	if !provider.IsAvailable() {
		return result, infraErr("no version control found at %s; staleness cannot be determined (is this a git checkout?)", cfg.DocsRoot)
	}
	repoRoot, err := provider.RepoRoot()
	if err != nil {
		return result, infraErr("resolve repository root: %w", err)
	}
	logger.Info("repository root %s", repoRoot)

	docs, err := docscan.Scan(cfg.DocsRoot, cfg.Ignore)
	if err != nil {
		return result, infraErr("scan documents: %w", err)
	}

	rep := stale.Evaluate(docs, &cfg, repoRoot, provider)
	result.Report = rep

	if err := report.Generate(rep, &cfg); err != nil {
		return result, &InfraError{Err: err}
	}

	if cfg.Output.HistoryPath != "" {
		runID, err := history.Record(cfg.Output.HistoryPath, rep)
		if err != nil {
			return result, &InfraError{Err: err}
		}
		result.RunID = runID
		logger.Info("recorded run %s in %s", runID, cfg.Output.HistoryPath)
	}

	fmt.Fprint(out, report.Summary(rep))
	if tbl := report.StaleTable(rep); tbl != "" {
		fmt.Fprintln(out, tbl)
	}
	fmt.Fprintf(out, "audited %d documents (threshold %d days)\n", rep.TotalDocuments(), rep.ThresholdDays)

	if len(rep.StaleDocuments) > 0 {
		return result, fmt.Errorf("%w: %d of %d documents", ErrStaleFound, len(rep.StaleDocuments), rep.TotalDocuments())
	}
	return result, nil
}
