package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"suppqc/domain/pvalue"
	"suppqc/domain/table"
	"suppqc/ports"
)

type fakeSource struct {
	produced map[string][]ports.ProducedTable
}

func (f *fakeSource) Produce(_ context.Context, path string) ([]ports.ProducedTable, error) {
	return f.produced[path], nil
}

type fakeSelector struct{}

func (fakeSelector) HasPValueColumn(t *table.Table) bool {
	_, ok := t.Column("pvalue")
	return ok
}

func (fakeSelector) Select(t *table.Table, _ []pvalue.Variable) (pvalue.Input, bool) {
	if _, ok := t.Column("pvalue"); !ok {
		return pvalue.Input{}, false
	}
	// A uniform grid keeps the summarizer on the happy path; the parsed cell
	// values are irrelevant to orchestration.
	pv := make([]float64, 90)
	for i := range pv {
		pv[i] = (float64(i) + 0.5) / float64(len(pv))
	}
	return pvalue.Input{PValues: pv}, true
}

func pvTable(t *testing.T, name string) *table.Table {
	t.Helper()
	tbl, err := table.New(name, []string{"pvalue"}, map[string][]string{"pvalue": {"0.5", "0.5"}})
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func plainTable(t *testing.T, name string) *table.Table {
	t.Helper()
	tbl, err := table.New(name, []string{"count"}, map[string][]string{"count": {"1", "2"}})
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func newService(t *testing.T, source ports.TableSource) *BatchService {
	t.Helper()
	cfg := pvalue.DefaultConfig()
	summarizer, err := pvalue.NewSummarizer(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewBatchService(source, fakeSelector{}, summarizer, cfg, 2, nil)
}

func TestBatchService_NoPValuesNote(t *testing.T) {
	source := &fakeSource{produced: map[string][]ports.ProducedTable{
		"/data/counts.csv": {{ID: "counts.csv", Table: plainTable(t, "counts.csv")}},
	}}
	svc := newService(t, source)

	_, results, err := svc.Run(context.Background(), []string{"/data/counts.csv"})
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "counts.csv", results[0].ID)
	assert.Equal(t, pvalue.NoteNoPValues, results[0].Record.Note)
}

func TestBatchService_IngestionErrorBecomesNote(t *testing.T) {
	source := &fakeSource{produced: map[string][]ports.ProducedTable{
		"/data/arch.tar.gz": {
			{ID: "GSE1_bad.csv", Err: errors.New("unexpected end of gzip stream")},
			{ID: "GSE1_de.csv", Table: pvTable(t, "GSE1_de.csv")},
		},
	}}
	svc := newService(t, source)

	_, results, err := svc.Run(context.Background(), []string{"/data/arch.tar.gz"})
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "GSE1_bad.csv", results[0].ID)
	assert.Contains(t, results[0].Record.Note, "gzip")
	assert.Equal(t, "GSE1_de.csv from arch.tar.gz", results[1].ID)
	assert.False(t, results[1].Record.IsNote())
}

func TestBatchService_DeterministicOrder(t *testing.T) {
	source := &fakeSource{produced: map[string][]ports.ProducedTable{
		"/data/a.xlsx": {
			{ID: "a.xlsx-sheet-S1", Table: pvTable(t, "a.xlsx-sheet-S1")},
			{ID: "a.xlsx-sheet-S2", Table: pvTable(t, "a.xlsx-sheet-S2")},
		},
		"/data/b.csv": {{ID: "b.csv", Table: pvTable(t, "b.csv")}},
	}}
	svc := newService(t, source)

	for i := 0; i < 5; i++ {
		_, results, err := svc.Run(context.Background(), []string{"/data/a.xlsx", "/data/b.csv"})
		assert.NoError(t, err)
		assert.Equal(t, []string{
			"sheet-S1 from a.xlsx",
			"sheet-S2 from a.xlsx",
			"b.csv",
		}, []string{results[0].ID, results[1].ID, results[2].ID})
	}
}

func TestBatchService_DisplayID(t *testing.T) {
	svc := newService(t, &fakeSource{})
	assert.Equal(t, "de.csv", svc.displayID("de.csv", "de.csv"))
	assert.Equal(t, "sheet-DE from supp.xlsx", svc.displayID("supp.xlsx-sheet-DE", "supp.xlsx"))
	assert.Equal(t, "GSE1_member.txt from GSE1_RAW.tar.gz", svc.displayID("GSE1_member.txt", "GSE1_RAW.tar.gz"))
}
