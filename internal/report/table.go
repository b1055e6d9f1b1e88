package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"docfresh/internal/stale"
)

// Summary returns the stdout summary lines for a completed run.
func Summary(rep stale.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "fresh: %d\n", rep.FreshCount)
	fmt.Fprintf(&b, "stale: %d\n", len(rep.StaleDocuments))
	fmt.Fprintf(&b, "unchecked: %d\n", rep.UncheckedCount)
	return b.String()
}

// StaleTable renders the stale documents as a terminal table. Returns the
// empty string when nothing is stale.
func StaleTable(rep stale.Report) string {
	if len(rep.StaleDocuments) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Document", "Last verified", "Changes", "Max drift (days)"})

	for _, doc := range rep.StaleDocuments {
		drift := 0
		if len(doc.Changes) > 0 {
			drift = doc.Changes[0].DaysSinceVerified
		}
		tw.AppendRow(table.Row{doc.Doc, doc.LastVerified, len(doc.Changes), drift})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}
