// Package config resolves audit settings from built-in defaults, an
// optional JSONC config file, and caller overrides, in that precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"docfresh/internal/jsonc"
	"docfresh/internal/logger"
)

// Output formats accepted for the "format" field.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatBoth     = "both"
)

// DefaultConcurrency bounds in-flight git queries during the batch phase.
const DefaultConcurrency = 10

// Output describes where and how reports are written.
type Output struct {
	Format       string
	JSONPath     string
	MarkdownPath string
	// HistoryPath, when non-empty, points at a SQLite database that each
	// run appends a summary row to. It is an output artifact only.
	HistoryPath string
}

// VCS holds version-control query options.
type VCS struct {
	UseAuthorDate      bool
	IncludeUncommitted bool
}

// Config is the immutable per-run configuration. It is constructed once by
// Resolve and passed by reference to every downstream component.
type Config struct {
	ThresholdDays int
	Ignore        []string
	DocsRoot      string
	Output        Output
	VCS           VCS
	Concurrency   int
}

// Overrides carries caller-supplied settings that take precedence over both
// defaults and the config file. Nil pointer fields mean "not set".
type Overrides struct {
	ThresholdDays      *int
	Ignore             []string
	DocsRoot           *string
	Format             *string
	JSONPath           *string
	MarkdownPath       *string
	HistoryPath        *string
	UseAuthorDate      *bool
	IncludeUncommitted *bool
	Concurrency        *int
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ThresholdDays: 7,
		Ignore: []string{
			".git/**",
			"node_modules/**",
			"vendor/**",
			"dist/**",
			"build/**",
			"coverage/**",
			"**/*.min.*",
		},
		DocsRoot: "docs",
		Output: Output{
			Format:       FormatBoth,
			JSONPath:     "docfresh-report.json",
			MarkdownPath: "docfresh-report.md",
		},
		Concurrency: DefaultConcurrency,
	}
}

// Resolve builds the effective configuration. It never fails: a missing or
// malformed config file falls back to defaults with a warning, and fields
// that fail type validation are individually discarded. All relative paths
// in the result are resolved against the process working directory.
func Resolve(configPath string, overrides Overrides) Config {
	cfg := Default()

	if configPath != "" {
		applyFile(&cfg, configPath)
	}
	applyOverrides(&cfg, overrides)

	cfg.DocsRoot = mustAbs(cfg.DocsRoot)
	cfg.Output.JSONPath = mustAbs(cfg.Output.JSONPath)
	cfg.Output.MarkdownPath = mustAbs(cfg.Output.MarkdownPath)
	if cfg.Output.HistoryPath != "" {
		cfg.Output.HistoryPath = mustAbs(cfg.Output.HistoryPath)
	}
	return cfg
}

func applyFile(cfg *Config, path string) {
	if _, err := os.Stat(path); err != nil {
		logger.Warn("config file %s not found; using defaults", path)
		return
	}

	var raw map[string]any
	if err := jsonc.DecodeFile(path, &raw); err != nil {
		logger.Warn("config file %s unparseable (%v); using defaults", path, err)
		return
	}

	if v, ok := raw["threshold"]; ok {
		if n, ok := asInt(v); ok && n > 0 {
			cfg.ThresholdDays = n
		} else {
			logger.Warn("config %s: invalid threshold %v; keeping %d", path, v, cfg.ThresholdDays)
		}
	}
	if v, ok := raw["ignore"]; ok {
		if list, ok := asStringList(v); ok {
			cfg.Ignore = mergeGlobs(cfg.Ignore, list)
		} else {
			logger.Warn("config %s: ignore must be a list of strings; discarded", path)
		}
	}
	if v, ok := raw["docs_root"]; ok {
		if s, ok := asString(v); ok {
			cfg.DocsRoot = s
		} else {
			logger.Warn("config %s: invalid docs_root %v; discarded", path, v)
		}
	}
	if v, ok := raw["concurrency"]; ok {
		if n, ok := asInt(v); ok && n > 0 {
			cfg.Concurrency = n
		} else {
			logger.Warn("config %s: invalid concurrency %v; keeping %d", path, v, cfg.Concurrency)
		}
	}

	if out, ok := asMap(raw["output"]); ok {
		if v, ok := out["format"]; ok {
			if s, ok := asString(v); ok && validFormat(s) {
				cfg.Output.Format = strings.ToLower(s)
			} else {
				logger.Warn("config %s: invalid output.format %v; keeping %s", path, v, cfg.Output.Format)
			}
		}
		applyStringField(out, "json_file", &cfg.Output.JSONPath, path)
		applyStringField(out, "markdown_file", &cfg.Output.MarkdownPath, path)
		applyStringField(out, "history_file", &cfg.Output.HistoryPath, path)
	} else if _, present := raw["output"]; present {
		logger.Warn("config %s: output must be an object; discarded", path)
	}

	if vcs, ok := asMap(raw["vcs"]); ok {
		applyBoolField(vcs, "use_author_date", &cfg.VCS.UseAuthorDate, path)
		applyBoolField(vcs, "include_uncommitted", &cfg.VCS.IncludeUncommitted, path)
	} else if _, present := raw["vcs"]; present {
		logger.Warn("config %s: vcs must be an object; discarded", path)
	}
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.ThresholdDays != nil && *o.ThresholdDays > 0 {
		cfg.ThresholdDays = *o.ThresholdDays
	}
	if len(o.Ignore) > 0 {
		cfg.Ignore = mergeGlobs(cfg.Ignore, o.Ignore)
	}
	if o.DocsRoot != nil {
		cfg.DocsRoot = *o.DocsRoot
	}
	if o.Format != nil && validFormat(*o.Format) {
		cfg.Output.Format = strings.ToLower(*o.Format)
	}
	if o.JSONPath != nil {
		cfg.Output.JSONPath = *o.JSONPath
	}
	if o.MarkdownPath != nil {
		cfg.Output.MarkdownPath = *o.MarkdownPath
	}
	if o.HistoryPath != nil {
		cfg.Output.HistoryPath = *o.HistoryPath
	}
	if o.UseAuthorDate != nil {
		cfg.VCS.UseAuthorDate = *o.UseAuthorDate
	}
	if o.IncludeUncommitted != nil {
		cfg.VCS.IncludeUncommitted = *o.IncludeUncommitted
	}
	if o.Concurrency != nil && *o.Concurrency > 0 {
		cfg.Concurrency = *o.Concurrency
	}
}

func applyStringField(m map[string]any, key string, dest *string, path string) {
	v, ok := m[key]
	if !ok {
		return
	}
	if s, ok := asString(v); ok {
		*dest = s
	} else {
		logger.Warn("config %s: invalid output.%s %v; discarded", path, key, v)
	}
}

func applyBoolField(m map[string]any, key string, dest *bool, path string) {
	v, ok := m[key]
	if !ok {
		return
	}
	if b, ok := v.(bool); ok {
		*dest = b
	} else {
		logger.Warn("config %s: invalid vcs.%s %v; discarded", path, key, v)
	}
}

func validFormat(s string) bool {
	switch strings.ToLower(s) {
	case FormatJSON, FormatMarkdown, FormatBoth:
		return true
	}
	return false
}

// asInt accepts JSON numbers that are whole-valued.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case int:
		return n, true
	}
	return 0, false
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func asStringList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func mergeGlobs(defaults, user []string) []string {
	seen := make(map[string]struct{})
	var merged []string
	appendIfMissing := func(globs []string) {
		for _, g := range globs {
			norm := normalizeGlob(g)
			if norm == "" {
				continue
			}
			if _, ok := seen[norm]; ok {
				continue
			}
			seen[norm] = struct{}{}
			merged = append(merged, norm)
		}
	}
	appendIfMissing(defaults)
	appendIfMissing(user)
	return merged
}

func normalizeGlob(g string) string {
	trimmed := strings.TrimSpace(g)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.ReplaceAll(trimmed, "\\", "/")
	for strings.Contains(trimmed, "//") {
		trimmed = strings.ReplaceAll(trimmed, "//", "/")
	}
	return filepath.ToSlash(trimmed)
}

// mustAbs returns the absolute path, or the original path if resolution fails.
func mustAbs(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
