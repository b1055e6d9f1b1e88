// Package report renders the evaluation result into its output artifacts:
// a schema-validated JSON file, a deterministic Markdown file, and the
// stdout summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"docfresh/internal/config"
	"docfresh/internal/logger"
	"docfresh/internal/stale"
	"docfresh/internal/validate"
	"docfresh/schemas"
)

// Generate writes the configured report artifacts. Any failure here is an
// infrastructure failure: the caller maps it to exit code 2.
func Generate(rep stale.Report, cfg *config.Config) error {
	format := cfg.Output.Format
	if format == config.FormatJSON || format == config.FormatBoth {
		if err := writeJSON(rep, cfg.Output.JSONPath); err != nil {
			return err
		}
		logger.Info("wrote JSON report to %s", cfg.Output.JSONPath)
	}
	if format == config.FormatMarkdown || format == config.FormatBoth {
		if err := writeFile(cfg.Output.MarkdownPath, []byte(RenderMarkdown(rep))); err != nil {
			return err
		}
		logger.Info("wrote Markdown report to %s", cfg.Output.MarkdownPath)
	}
	return nil
}

// writeJSON serializes the report with stable field order and validates the
// artifact against the embedded schema before declaring success.
func writeJSON(rep stale.Report, path string) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	b = append(b, '\n')
	if err := writeFile(path, b); err != nil {
		return err
	}
	if err := validate.JSON(path, schemas.Report); err != nil {
		return err
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
