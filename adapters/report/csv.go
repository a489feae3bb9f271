package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"suppqc/domain/pvalue"
)

// Columns is the fixed output header of the combined summary artifact.
var Columns = []string{"id", "Type", "Class", "Conversion", "pi0", "FDR_pval", "hist", "note"}

// CSVWriter flattens table summaries into delimited rows: one row per stage
// for full summaries, a single row for note records. The conversion label is
// broadcast across both stage rows of a filtered summary.
type CSVWriter struct {
	w io.Writer
}

// NewCSVWriter creates a writer emitting to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: w}
}

// Write serializes the summaries with a header row.
func (c *CSVWriter) Write(ctx context.Context, summaries []pvalue.TableSummary) error {
	w := csv.NewWriter(c.w)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range summaries {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, row := range Rows(s) {
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write row for %s: %w", s.ID, err)
			}
		}
	}
	w.Flush()
	return w.Error()
}

// Rows flattens one table summary into output rows ordered by stage.
func Rows(s pvalue.TableSummary) [][]string {
	if s.Record.IsNote() {
		return [][]string{{s.ID, "", "", "", "", "", "", s.Record.Note}}
	}
	out := make([][]string, 0, s.Record.Stages())
	for i := 0; i < s.Record.Stages(); i++ {
		out = append(out, []string{
			s.ID,
			s.Record.Type[i],
			string(s.Record.Class[i]),
			s.Record.Conversion,
			formatPi0(s.Record.Pi0[i]),
			strconv.Itoa(s.Record.FdrEffects[i]),
			formatCounts(s.Record.HistCounts[i]),
			"",
		})
	}
	return out
}

func formatPi0(f pvalue.NullFloat) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Float64, 'g', -1, 64)
}

// formatCounts renders bin counts as a bracketed list, e.g. [3, 4, 3].
func formatCounts(counts []int) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = strconv.Itoa(c)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
