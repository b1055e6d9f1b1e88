package report

import (
	"fmt"
	"strings"

	"docfresh/internal/stale"
)

// RenderMarkdown produces the human-readable report. The output is
// byte-for-byte reproducible for identical report content; the generation
// timestamp line is the only part that varies between runs.
func RenderMarkdown(rep stale.Report) string {
	var b strings.Builder

	b.WriteString("# Documentation Freshness Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", rep.ScannedAt)
	fmt.Fprintf(&b, "Staleness threshold: %d days\n\n", rep.ThresholdDays)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Documents scanned: %d\n", rep.TotalDocuments())
	fmt.Fprintf(&b, "- Fresh: %d\n", rep.FreshCount)
	fmt.Fprintf(&b, "- Stale: %d\n", len(rep.StaleDocuments))
	fmt.Fprintf(&b, "- Unchecked: %d\n\n", rep.UncheckedCount)

	if len(rep.StaleDocuments) == 0 {
		b.WriteString("All verified documents are up to date.\n")
		return b.String()
	}

	b.WriteString("## Stale documents\n\n")
	b.WriteString("| Document | Last verified | Changed artifacts |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, doc := range rep.StaleDocuments {
		fmt.Fprintf(&b, "| %s | %s | %s |\n",
			escapePipes(doc.Doc), doc.LastVerified, changeSummary(doc))
	}
	b.WriteString("\n")

	for _, doc := range rep.StaleDocuments {
		fmt.Fprintf(&b, "### %s\n\n", escapePipes(doc.Title))
		fmt.Fprintf(&b, "`%s`, last verified %s.\n\n", doc.Doc, doc.LastVerified)
		for _, c := range doc.Changes {
			fmt.Fprintf(&b, "- `%s` modified %s (%d days after verification)\n",
				c.File, c.LastModified, c.DaysSinceVerified)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// changeSummary compresses a change list into one table cell.
func changeSummary(doc stale.StaleDocument) string {
	if len(doc.Changes) == 0 {
		return "none"
	}
	// Changes are ordered most-drifted first.
	return fmt.Sprintf("%d file(s), up to %d days drift",
		len(doc.Changes), doc.Changes[0].DaysSinceVerified)
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
