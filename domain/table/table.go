package table

import (
	"fmt"
)

// Table is an immutable rectangular collection of named columns as produced by
// the ingestion adapters. Cell values are kept as raw strings; numeric parsing
// happens during column selection so that a single unparseable cell never
// invalidates a whole table.
type Table struct {
	name    string
	columns []string
	cells   map[string][]string
	rows    int
}

// New builds a Table from an ordered header and a column name to values map.
// All columns must have equal length.
func New(name string, columns []string, cells map[string][]string) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %q has no columns", name)
	}
	rows := -1
	for _, col := range columns {
		vals, ok := cells[col]
		if !ok {
			return nil, fmt.Errorf("table %q: column %q has no values", name, col)
		}
		if rows == -1 {
			rows = len(vals)
		} else if len(vals) != rows {
			return nil, fmt.Errorf("table %q: column %q has %d values, want %d", name, col, len(vals), rows)
		}
	}
	return &Table{name: name, columns: columns, cells: cells, rows: rows}, nil
}

// Name returns the table identity (file, archive member or sheet derived).
func (t *Table) Name() string {
	return t.name
}

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]string, bool) {
	vals, ok := t.cells[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out, true
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return t.rows == 0
}
