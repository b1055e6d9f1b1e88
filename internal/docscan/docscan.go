// Package docscan enumerates a documentation corpus and extracts the
// per-document header metadata the staleness audit needs.
package docscan

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"docfresh/internal/fsutil"
	"docfresh/internal/logger"
)

// PlaceholderTitle is used for documents whose header declares no title.
const PlaceholderTitle = "(untitled)"

var docExtensions = []string{".md", ".markdown"}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DocumentRecord is the extracted metadata for one scanned document.
// Records are immutable once constructed.
type DocumentRecord struct {
	// Path is the absolute path of the document file.
	Path        string
	Title       string
	Description string
	// RelatedArtifacts lists the path patterns the document claims to
	// describe. Nil when the header declares none (or declares them with
	// the wrong type).
	RelatedArtifacts []string
	// LastVerified is the calendar date the document was last checked
	// against its artifacts. Nil when absent.
	LastVerified *time.Time
}

// Scan walks root for markdown documents, skipping ignore matches, and
// returns one record per parseable document sorted by path. Documents with
// invalid headers are skipped with a warning; the scan itself only fails
// when the root cannot be walked at all.
func Scan(root string, ignore []string) ([]DocumentRecord, error) {
	rootPath, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(rootPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("docs root does not exist: %s", rootPath)
	}

	files, err := fsutil.ListFiles(rootPath, ignore, docExtensions)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", rootPath, err)
	}

	records := make([]DocumentRecord, 0, len(files))
	for _, rel := range files {
		abs := filepath.Join(rootPath, filepath.FromSlash(rel))
		record, ok := parseDocument(abs)
		if !ok {
			continue
		}
		records = append(records, record)
	}
	logger.Info("scanned %d documents under %s (%d parseable)", len(files), rootPath, len(records))
	return records, nil
}

// parseDocument reads one file and builds its record. The second return is
// false when the document must be skipped.
func parseDocument(path string) (DocumentRecord, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("read %s: %v; skipping", path, err)
		return DocumentRecord{}, false
	}

	header, err := frontMatter(data)
	if err != nil {
		logger.Warn("parse header of %s: %v; skipping", path, err)
		return DocumentRecord{}, false
	}

	record := DocumentRecord{Path: path, Title: PlaceholderTitle}

	if v, ok := header["title"]; ok {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			record.Title = strings.TrimSpace(s)
		}
	}
	if v, ok := header["description"]; ok {
		if s, ok := v.(string); ok {
			record.Description = strings.TrimSpace(s)
		}
	}

	// related_artifacts must be a list of strings; anything else is
	// downgraded to absent.
	if v, ok := header["related_artifacts"]; ok {
		if list, ok := stringList(v); ok {
			record.RelatedArtifacts = list
		} else {
			logger.Warn("%s: related_artifacts is not a list of strings; treating as absent", path)
		}
	}

	if v, ok := header["last_verified"]; ok {
		verified, err := parseVerifiedDate(v)
		if err != nil {
			logger.Warn("%s: invalid last_verified %v (%v); skipping document", path, v, err)
			return DocumentRecord{}, false
		}
		record.LastVerified = &verified
	}

	return record, true
}

// frontMatter extracts the YAML header block delimited by "---" lines.
// Documents without a header yield an empty map.
func frontMatter(data []byte) (map[string]any, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, "---\n") && text != "---" {
		return map[string]any{}, nil
	}

	rest := strings.TrimPrefix(text, "---\n")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, fmt.Errorf("unterminated front matter block")
	}
	block := rest[:end]

	header := map[string]any{}
	if err := yaml.Unmarshal([]byte(block), &header); err != nil {
		return nil, err
	}
	return header, nil
}

// parseVerifiedDate accepts a YYYY-MM-DD string. yaml.v3 resolves unquoted
// dates into time.Time, so that form is accepted as well.
func parseVerifiedDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case string:
		if !dateRe.MatchString(d) {
			return time.Time{}, fmt.Errorf("must match YYYY-MM-DD")
		}
		parsed, err := time.ParseInLocation("2006-01-02", d, time.UTC)
		if err != nil {
			return time.Time{}, err
		}
		return parsed, nil
	case time.Time:
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
	default:
		return time.Time{}, fmt.Errorf("must be a date")
	}
}

func stringList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, false
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, true
}
