// Package cli parses commands and flags and dispatches into the audit
// pipeline.
package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docfresh/internal/audit"
	"docfresh/internal/cli/flags"
	"docfresh/internal/config"
	"docfresh/internal/logger"
)

// DefaultConfigFile is picked up from the working directory when no
// --config flag is given.
const DefaultConfigFile = "docfresh.jsonc"

func Run(args []string) error {
	if len(args) == 0 {
		return usage()
	}
	switch args[0] {
	case "version", "--version", "-v":
		return cmdVersion()
	case "audit":
		return cmdAudit(args[1:])
	case "init":
		return cmdInit(args[1:])
	case "help", "-h", "--help":
		return usage()
	default:
		return fmt.Errorf("unknown command: %s (try: docfresh help)", args[0])
	}
}

func usage() error {
	fmt.Println(`docfresh commands: audit | init | version

Examples:
  docfresh init
  docfresh audit
  docfresh audit --root . --threshold 14
  docfresh audit --format json --json reports/freshness.json
  docfresh audit --include-uncommitted --verbose

Exit codes for audit: 0 all fresh, 1 stale documents found, 2 infrastructure error.`)
	return nil
}

// auditFlags holds the parsed audit flag set. Flags that were not given
// stay out of the override set so config-file values survive.
type auditFlags struct {
	configPath string
	docsRoot   flags.StringFlag
	threshold  flags.IntFlag
	format     flags.StringFlag
	jsonPath   flags.StringFlag
	mdPath     flags.StringFlag
	history    flags.StringFlag
	ignore     flags.StringFlag
	authorDate flags.BoolFlag
	uncommit   flags.BoolFlag
	workers    flags.IntFlag
	verbose    bool
	debug      bool
}

func parseAuditFlags(args []string) (*auditFlags, error) {
	var af auditFlags
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	fs.StringVar(&af.configPath, "config", "", "path to docfresh.jsonc config file")
	fs.Var(&af.docsRoot, "root", "documentation root to scan")
	fs.Var(&af.threshold, "threshold", "staleness threshold in days")
	fs.Var(&af.format, "format", "report format: json, markdown, or both")
	fs.Var(&af.jsonPath, "json", "path for the JSON report")
	fs.Var(&af.mdPath, "markdown", "path for the Markdown report")
	fs.Var(&af.history, "history", "path to a sqlite database recording run summaries")
	fs.Var(&af.ignore, "ignore", "comma-separated glob patterns to skip while scanning")
	fs.Var(&af.authorDate, "use-author-date", "compare against git author dates instead of committer dates")
	fs.Var(&af.uncommit, "include-uncommitted", "treat uncommitted edits as modifications (uses file mtime)")
	fs.Var(&af.workers, "concurrency", "maximum in-flight git queries")
	fs.BoolVar(&af.verbose, "verbose", false, "print progress to stderr")
	fs.BoolVar(&af.debug, "debug", false, "print per-artifact detail to stderr")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if rest := fs.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("audit takes no positional arguments, got %q", rest)
	}
	return &af, nil
}

func (af *auditFlags) overrides() config.Overrides {
	var o config.Overrides
	if af.docsRoot.WasSet {
		o.DocsRoot = &af.docsRoot.Value
	}
	if af.threshold.WasSet {
		o.ThresholdDays = &af.threshold.Value
	}
	if af.format.WasSet {
		o.Format = &af.format.Value
	}
	if af.jsonPath.WasSet {
		o.JSONPath = &af.jsonPath.Value
	}
	if af.mdPath.WasSet {
		o.MarkdownPath = &af.mdPath.Value
	}
	if af.history.WasSet {
		o.HistoryPath = &af.history.Value
	}
	if af.ignore.WasSet {
		o.Ignore = splitIgnore(af.ignore.Value)
	}
	if af.authorDate.WasSet {
		o.UseAuthorDate = &af.authorDate.Value
	}
	if af.uncommit.WasSet {
		o.IncludeUncommitted = &af.uncommit.Value
	}
	if af.workers.WasSet {
		o.Concurrency = &af.workers.Value
	}
	return o
}

func splitIgnore(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func cmdAudit(args []string) error {
	af, err := parseAuditFlags(args)
	if err != nil {
		return err
	}

	switch {
	case af.debug:
		logger.SetLevel(logger.LevelDebug)
	case af.verbose:
		logger.SetLevel(logger.LevelInfo)
	}

	configPath := af.configPath
	if configPath == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			configPath = DefaultConfigFile
		}
	}

	_, err = audit.Run(audit.Options{
		ConfigPath: configPath,
		Overrides:  af.overrides(),
	})
	return err
}

const starterConfig = `{
  // Staleness threshold in days. A document is stale when a related
  // artifact changed more than this many days after last_verified.
  "threshold": 7,

  // Directory scanned for markdown documents.
  "docs_root": "docs",

  // Glob patterns skipped while scanning, merged with the built-in set.
  "ignore": [],

  "output": {
    // "json", "markdown", or "both".
    "format": "both",
    "json_file": "docfresh-report.json",
    "markdown_file": "docfresh-report.md"
    // Uncomment to append a summary row per run to a sqlite database:
    // "history_file": ".docfresh/history.db"
  },

  "vcs": {
    // Compare against git author dates instead of committer dates.
    "use_author_date": false,
    // Treat uncommitted edits as modifications (uses file mtime).
    "include_uncommitted": false
  },

  // Maximum in-flight git queries during the batch phase.
  "concurrency": 10
}
`

func cmdInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	root := fs.String("root", ".", "directory to place the config file in")
	force := fs.Bool("force", false, "overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rootPath, err := filepath.Abs(*root)
	if err != nil {
		return err
	}

	path := filepath.Join(rootPath, DefaultConfigFile)
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote starter config to %s\n", path)
	return nil
}
