package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"

	"suppqc/domain/pvalue"
)

// RenderMarkdown builds a human-readable batch report: per-class tallies, the
// flattened summary table and the diagnostic notes.
func RenderMarkdown(runID string, summaries []pvalue.TableSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# P-value diagnostics report\n\nRun `%s`, %d table(s).\n\n", runID, len(summaries))

	classTally := make(map[pvalue.Class]int)
	noteTally := 0
	for _, s := range summaries {
		if s.Record.IsNote() {
			noteTally++
			continue
		}
		classTally[s.Record.Class[0]]++
	}

	b.WriteString("## Raw distribution classes\n\n")
	b.WriteString("| Class | Tables |\n|---|---|\n")
	for _, c := range pvalue.Classes {
		fmt.Fprintf(&b, "| %s | %d |\n", c, classTally[c])
	}
	fmt.Fprintf(&b, "| (note) | %d |\n\n", noteTally)

	b.WriteString("## Summaries\n\n")
	b.WriteString("| " + strings.Join(Columns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(Columns)) + "\n")
	for _, s := range summaries {
		for _, row := range Rows(s) {
			b.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
	}
	return b.String()
}

// RenderHTML renders the batch report to HTML.
func RenderHTML(runID string, summaries []pvalue.TableSummary) []byte {
	return markdown.ToHTML([]byte(RenderMarkdown(runID, summaries)), nil, nil)
}
