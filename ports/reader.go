package ports

import (
	"context"

	"suppqc/domain/pvalue"
	"suppqc/domain/table"
)

// ProducedTable is one table extracted from a source file, or the error that
// prevented a member from being read. Exactly one of Table and Err is set;
// read failures stay attached to the member identity so the batch can report
// them without aborting.
type ProducedTable struct {
	ID    string
	Table *table.Table
	Err   error
}

// TableSource produces named tables from one input source: a flat delimited
// file, a workbook or a tar.gz archive of either.
type TableSource interface {
	Produce(ctx context.Context, path string) ([]ProducedTable, error)
}

// ColumnSelector locates the p-value column of a table and the configured
// expression-level covariates aligned with it. ok is false when the table has
// no column matching the p-value pattern.
type ColumnSelector interface {
	HasPValueColumn(t *table.Table) bool
	Select(t *table.Table, vars []pvalue.Variable) (in pvalue.Input, ok bool)
}
