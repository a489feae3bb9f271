package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"suppqc/domain/table"
)

var candidateDelimiters = []rune{'\t', ',', ';', '|'}

// delimitedTable parses delimited text into a single table, sniffing the
// delimiter from a leading sample and skipping '#' comment lines.
func (s *FileSource) delimitedTable(id string, data []byte) (*table.Table, error) {
	delim := sniffDelimiter(data, s.cfg.SniffRows)
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse delimited text: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows in %s", id)
	}
	return tableFromRows(id, rows, s.cfg.HeaderScanRows)
}

// sniffDelimiter picks the candidate delimiter with the highest stable count
// over the first sniffRows non-comment lines. Ties go to the earlier
// candidate, so tab beats comma for ambiguous content.
func sniffDelimiter(data []byte, sniffRows int) rune {
	lines := strings.Split(string(data), "\n")
	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		count, seen := 0, 0
		for _, line := range lines {
			if seen >= sniffRows {
				break
			}
			line = strings.TrimRight(line, "\r")
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			count += strings.Count(line, string(d))
			seen++
		}
		if count > bestCount {
			best, bestCount = d, count
		}
	}
	return best
}

// tableFromRows builds a rectangular table from raw rows. When the first row
// looks like data rather than a header, the first all-text row within
// headerScanRows is promoted to header, mirroring supplementary files that
// stack description lines above their real header.
func tableFromRows(name string, rows [][]string, headerScanRows int) (*table.Table, error) {
	if idx := headerRowIndex(rows, headerScanRows); idx > 0 {
		rows = rows[idx:]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows in %s", name)
	}

	header := make([]string, len(rows[0]))
	seen := make(map[string]int, len(rows[0]))
	for i, cell := range rows[0] {
		col := strings.TrimSpace(cell)
		if col == "" {
			col = fmt.Sprintf("unnamed_%d", i)
		}
		if n := seen[col]; n > 0 {
			seen[col] = n + 1
			col = fmt.Sprintf("%s_%d", col, n+1)
		} else {
			seen[col] = 1
		}
		header[i] = col
	}

	cells := make(map[string][]string, len(header))
	for _, col := range header {
		cells[col] = make([]string, 0, len(rows)-1)
	}
	for _, row := range rows[1:] {
		for j, col := range header {
			v := ""
			if j < len(row) {
				v = strings.TrimSpace(row[j])
			}
			cells[col] = append(cells[col], v)
		}
	}
	return table.New(name, header, cells)
}

// headerRowIndex returns the index of the first row whose cells are all
// non-empty text when the nominal first row does not look like a header, and
// zero otherwise.
func headerRowIndex(rows [][]string, scanRows int) int {
	if len(rows) == 0 || looksLikeHeader(rows[0]) {
		return 0
	}
	for i := 1; i < len(rows) && i < scanRows; i++ {
		if looksLikeHeader(rows[i]) {
			return i
		}
	}
	return 0
}

// looksLikeHeader reports whether every cell of the row is non-empty text.
func looksLikeHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			return false
		}
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			return false
		}
	}
	return true
}
