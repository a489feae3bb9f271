package columns

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"suppqc/domain/pvalue"
	"suppqc/domain/table"
)

// Config holds the immutable column-matching patterns handed to the selector.
type Config struct {
	// PValue matches column names that look like a p-value, case-insensitive.
	PValue *regexp.Regexp
	// Adjusted excludes FDR-corrected / adjusted p-value variants.
	Adjusted *regexp.Regexp
	// Patterns maps variable names to the column patterns that carry them.
	Patterns map[string]*regexp.Regexp
}

// DefaultConfig returns the conventional patterns for expression submission
// supplementary tables. fpkm additionally matches value_N columns, which is
// how cufflinks-style tables label per-sample FPKM.
func DefaultConfig() Config {
	return Config{
		PValue:   regexp.MustCompile(`p.{0,4}val`),
		Adjusted: regexp.MustCompile(`adj|fdr|corr`),
		Patterns: map[string]*regexp.Regexp{
			"basemean": regexp.MustCompile(`basemean`),
			"fpkm":     regexp.MustCompile(`fpkm|^value_\d`),
			"logcpm":   regexp.MustCompile(`logcpm`),
			"rpkm":     regexp.MustCompile(`rpkm`),
		},
	}
}

// Selector implements p-value and covariate column selection over raw tables.
type Selector struct {
	cfg Config
}

// NewSelector creates a selector with the given pattern configuration.
func NewSelector(cfg Config) *Selector {
	return &Selector{cfg: cfg}
}

// HasPValueColumn reports whether any column matches the p-value pattern
// without matching the adjusted-variant exclusion.
func (s *Selector) HasPValueColumn(t *table.Table) bool {
	return s.pvalueColumn(t) != ""
}

// Select extracts the p-value series and the covariates configured in vars.
// Column names are matched lowercased. Several columns matching one variable
// are averaged row-wise, ignoring unparseable cells. Rows without a parseable
// p-value are dropped from every series so the output stays aligned. ok is
// false when no p-value column exists.
func (s *Selector) Select(t *table.Table, vars []pvalue.Variable) (pvalue.Input, bool) {
	name := s.pvalueColumn(t)
	if name == "" {
		return pvalue.Input{}, false
	}
	raw, _ := t.Column(name)
	pv := parseSeries(raw)

	covs := make(map[string][]float64)
	for _, v := range vars {
		pattern, ok := s.cfg.Patterns[v.Name]
		if !ok {
			continue
		}
		matched := s.matchingColumns(t, pattern, name)
		if len(matched) == 0 {
			continue
		}
		covs[v.Name] = rowMean(matched)
	}

	// Drop rows with a missing p-value, keeping covariates aligned.
	keep := make([]int, 0, len(pv))
	for i, p := range pv {
		if !math.IsNaN(p) {
			keep = append(keep, i)
		}
	}
	out := pvalue.Input{
		PValues:    make([]float64, len(keep)),
		Covariates: make(map[string][]float64, len(covs)),
	}
	for j, i := range keep {
		out.PValues[j] = pv[i]
	}
	for k, series := range covs {
		kept := make([]float64, len(keep))
		for j, i := range keep {
			kept[j] = series[i]
		}
		out.Covariates[k] = kept
	}
	return out, true
}

// pvalueColumn returns the first column matching the p-value pattern and not
// the adjusted exclusion, or "".
func (s *Selector) pvalueColumn(t *table.Table) string {
	for _, col := range t.Columns() {
		lower := strings.ToLower(col)
		if s.cfg.PValue.MatchString(lower) && !s.cfg.Adjusted.MatchString(lower) {
			return col
		}
	}
	return ""
}

// matchingColumns parses every column whose lowercased name matches the
// pattern, excluding the p-value column itself.
func (s *Selector) matchingColumns(t *table.Table, pattern *regexp.Regexp, pvCol string) [][]float64 {
	var out [][]float64
	for _, col := range t.Columns() {
		if col == pvCol {
			continue
		}
		if pattern.MatchString(strings.ToLower(col)) {
			raw, _ := t.Column(col)
			out = append(out, parseSeries(raw))
		}
	}
	return out
}

// parseSeries converts raw cells to floats, NaN for unparseable or empty.
func parseSeries(raw []string) []float64 {
	out := make([]float64, len(raw))
	for i, cell := range raw {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = v
	}
	return out
}

// rowMean averages aligned series row-wise, skipping NaN cells. Rows with no
// finite cell stay NaN.
func rowMean(series [][]float64) []float64 {
	if len(series) == 1 {
		return series[0]
	}
	n := 0
	for _, s := range series {
		if len(s) > n {
			n = len(s)
		}
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		sum, cnt := 0.0, 0
		for _, s := range series {
			if i < len(s) && !math.IsNaN(s[i]) {
				sum += s[i]
				cnt++
			}
		}
		if cnt == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(cnt)
	}
	return out
}
