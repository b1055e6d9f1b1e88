// Package fsutil provides filesystem helpers: ignore-glob matching, corpus
// enumeration, and artifact pattern expansion.
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"docfresh/internal/logger"
)

// MatchesAny returns true if the path matches any of the globs.
// Paths are normalized to forward slashes before matching.
func MatchesAny(path string, globs []string) bool {
	normalized := filepath.ToSlash(path)
	for _, g := range globs {
		if g == "" {
			continue
		}
		ok, err := doublestar.Match(g, normalized)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// ListFiles enumerates files under root whose extension is in exts,
// excluding anything matching an ignore glob. Returned paths are relative
// to root, slash-normalized, and sorted. Symlinked directories are not
// followed.
func ListFiles(root string, ignore []string, exts []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if MatchesAny(rel, ignore) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&os.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				// Broken symlink; nothing to scan.
				return nil
			}
			if target.IsDir() {
				return filepath.SkipDir
			}
			if hasExt(rel, exts) {
				files = append(files, rel)
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if hasExt(rel, exts) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func hasExt(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// ExpandPatterns resolves artifact patterns against repoRoot. Each pattern
// may be a literal path or a doublestar glob; matches are deduplicated and
// returned as sorted absolute paths. Directories are excluded. A pattern
// that matches nothing contributes no entries; interpreting an empty
// overall result is the caller's responsibility.
func ExpandPatterns(patterns []string, repoRoot string) []string {
	seen := make(map[string]struct{})
	fsys := os.DirFS(repoRoot)
	for _, p := range patterns {
		pattern := normalizePattern(p)
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			logger.Warn("invalid artifact pattern %q; skipping", p)
			continue
		}
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			logger.Warn("expand artifact pattern %q: %v", p, err)
			continue
		}
		for _, m := range matches {
			info, err := fs.Stat(fsys, m)
			if err != nil || info.IsDir() {
				continue
			}
			abs := filepath.Join(repoRoot, filepath.FromSlash(m))
			seen[abs] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// normalizePattern trims whitespace, strips a leading "./", and collapses
// separators to forward slashes so patterns behave the same on every
// platform.
func normalizePattern(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.ReplaceAll(trimmed, "\\", "/")
	for strings.Contains(trimmed, "//") {
		trimmed = strings.ReplaceAll(trimmed, "//", "/")
	}
	trimmed = strings.TrimPrefix(trimmed, "./")
	return filepath.ToSlash(trimmed)
}
