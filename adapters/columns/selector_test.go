package columns

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"suppqc/domain/pvalue"
	"suppqc/domain/table"
)

func mustTable(t *testing.T, name string, cols []string, cells map[string][]string) *table.Table {
	t.Helper()
	tbl, err := table.New(name, cols, cells)
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	return tbl
}

func TestSelector_PicksPValueSkipsAdjusted(t *testing.T) {
	s := NewSelector(DefaultConfig())
	tbl := mustTable(t, "de.csv",
		[]string{"gene", "adj.P.Val", "P.Value", "baseMean"},
		map[string][]string{
			"gene":      {"g1", "g2", "g3"},
			"adj.P.Val": {"0.9", "0.8", "0.7"},
			"P.Value":   {"0.01", "0.02", "0.03"},
			"baseMean":  {"5", "20", "30"},
		})

	assert.True(t, s.HasPValueColumn(tbl))
	in, ok := s.Select(tbl, pvalue.DefaultConfig().Variables)
	assert.True(t, ok)
	assert.Equal(t, []float64{0.01, 0.02, 0.03}, in.PValues)
	assert.Equal(t, []float64{5, 20, 30}, in.Covariates["basemean"])
}

func TestSelector_NoPValueColumn(t *testing.T) {
	s := NewSelector(DefaultConfig())
	tbl := mustTable(t, "counts.csv",
		[]string{"gene", "fdr", "count"},
		map[string][]string{
			"gene":  {"g1"},
			"fdr":   {"0.1"},
			"count": {"12"},
		})

	assert.False(t, s.HasPValueColumn(tbl))
	_, ok := s.Select(tbl, nil)
	assert.False(t, ok)
}

func TestSelector_ValueColumnsAverageToFpkm(t *testing.T) {
	s := NewSelector(DefaultConfig())
	tbl := mustTable(t, "cufflinks.tsv",
		[]string{"pval", "value_1", "value_2"},
		map[string][]string{
			"pval":    {"0.1", "0.2"},
			"value_1": {"2", "4"},
			"value_2": {"4", "NA"},
		})

	in, ok := s.Select(tbl, pvalue.DefaultConfig().Variables)
	assert.True(t, ok)
	// Row means skip unparseable cells.
	assert.Equal(t, []float64{3, 4}, in.Covariates["fpkm"])
}

func TestSelector_DropsRowsWithoutPValue(t *testing.T) {
	s := NewSelector(DefaultConfig())
	tbl := mustTable(t, "de.csv",
		[]string{"pvalue", "basemean"},
		map[string][]string{
			"pvalue":   {"0.1", "NA", "0.3", ""},
			"basemean": {"1", "2", "3", "4"},
		})

	in, ok := s.Select(tbl, pvalue.DefaultConfig().Variables)
	assert.True(t, ok)
	assert.Equal(t, []float64{0.1, 0.3}, in.PValues)
	assert.Equal(t, []float64{1, 3}, in.Covariates["basemean"], "covariates stay aligned after the drop")
}

func TestSelector_UnparseableCovariateIsNaN(t *testing.T) {
	s := NewSelector(DefaultConfig())
	tbl := mustTable(t, "de.csv",
		[]string{"pvalue", "rpkm"},
		map[string][]string{
			"pvalue": {"0.1", "0.2"},
			"rpkm":   {"high", "1.5"},
		})

	in, ok := s.Select(tbl, pvalue.DefaultConfig().Variables)
	assert.True(t, ok)
	assert.True(t, math.IsNaN(in.Covariates["rpkm"][0]))
	assert.Equal(t, 1.5, in.Covariates["rpkm"][1])
}
