// Package gitutil provides utilities for interacting with git repositories.
// All external-process interaction of the auditor lives here.
package gitutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"docfresh/internal/logger"
)

// DateProvider answers "when was this file last modified" from
// version-control history. Implementations must treat per-file failures as
// soft: a nil date, never an error, so one bad file cannot abort a batch.
type DateProvider interface {
	// IsAvailable reports whether version control can be queried at all.
	IsAvailable() bool
	// RepoRoot returns the repository root directory.
	RepoRoot() (string, error)
	// LastModified returns the most recent commit date touching file, or
	// nil when the file is missing, untracked, or the query fails.
	LastModified(file string) *time.Time
	// BatchLastModified resolves many files with bounded concurrency.
	// The result map has exactly one entry per requested file.
	BatchLastModified(files []string) map[string]*time.Time
}

// IsGitRepo checks if the given path is inside a git repository.
func IsGitRepo(path string) bool {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--git-dir")
	err := cmd.Run()
	return err == nil
}

// FindRepoRoot returns the root directory of the git repository containing path.
func FindRepoRoot(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	cmd := exec.Command("git", "-C", absPath, "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(out)), nil
}

// Options controls how commit dates are resolved.
type Options struct {
	// UseAuthorDate selects the author date (%aI) instead of the commit
	// date (%cI).
	UseAuthorDate bool
	// IncludeUncommitted makes dirty working-tree files count as modified
	// at their filesystem mtime.
	IncludeUncommitted bool
	// Concurrency bounds in-flight git queries during BatchLastModified.
	// Non-positive values fall back to DefaultConcurrency.
	Concurrency int
}

// DefaultConcurrency bounds the batch worker pool when Options leaves it unset.
const DefaultConcurrency = 10

// Git is the process-backed DateProvider.
type Git struct {
	root string
	opts Options
}

// NewGit returns a DateProvider querying the repository at root.
func NewGit(root string, opts Options) *Git {
	return &Git{root: root, opts: opts}
}

// IsAvailable reports whether root is inside a git repository and the git
// binary can be executed.
func (g *Git) IsAvailable() bool {
	return IsGitRepo(g.root)
}

// RepoRoot returns the repository root for the configured path.
func (g *Git) RepoRoot() (string, error) {
	return FindRepoRoot(g.root)
}

// LastModified returns the last commit date for file, or nil when the file
// has no usable history. Every nil is logged as a warning, not an error.
func (g *Git) LastModified(file string) *time.Time {
	if _, err := os.Stat(file); err != nil {
		logger.Warn("artifact %s does not exist; no date available", file)
		return nil
	}

	if g.opts.IncludeUncommitted {
		if t := g.uncommittedMtime(file); t != nil {
			return t
		}
	}

	format := "%cI"
	if g.opts.UseAuthorDate {
		format = "%aI"
	}
	cmd := exec.Command("git", "-C", g.root, "log", "-1", "--format="+format, "--", file)
	out, err := cmd.Output()
	if err != nil {
		logger.Warn("git log for %s failed: %v", file, err)
		return nil
	}
	raw := strings.TrimSpace(string(out))
	if raw == "" {
		logger.Warn("artifact %s has no commit history", file)
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		logger.Warn("unparseable commit date %q for %s: %v", raw, file, err)
		return nil
	}
	utc := parsed.UTC()
	return &utc
}

// uncommittedMtime returns the filesystem mtime when file has staged or
// unstaged modifications, nil otherwise.
func (g *Git) uncommittedMtime(file string) *time.Time {
	cmd := exec.Command("git", "-C", g.root, "status", "--porcelain", "--", file)
	out, err := cmd.Output()
	if err != nil || strings.TrimSpace(string(out)) == "" {
		return nil
	}
	info, err := os.Stat(file)
	if err != nil {
		return nil
	}
	mtime := info.ModTime().UTC().Truncate(time.Second)
	logger.Debug("artifact %s has uncommitted changes; using mtime %s", file, mtime.Format(time.RFC3339))
	return &mtime
}

// BatchLastModified resolves dates for all files using a fixed worker pool.
// One file's failure never blocks another's result; the returned map always
// contains one key per requested file.
func (g *Git) BatchLastModified(files []string) map[string]*time.Time {
	results := make(map[string]*time.Time, len(files))
	if len(files) == 0 {
		return results
	}

	workers := g.opts.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}
	if workers > len(files) {
		workers = len(files)
	}

	jobs := make(chan string, len(files))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				date := g.LastModified(file)
				mu.Lock()
				results[file] = date
				mu.Unlock()
			}
		}()
	}

	// Deduplicate so each underlying query runs once.
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	return results
}
