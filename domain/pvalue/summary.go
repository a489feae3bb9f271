package pvalue

import (
	"encoding/json"
	"fmt"
	"math"

	apperrors "suppqc/internal/errors"
)

// Diagnostic notes attached to terminal records.
const (
	NoteOutOfRange = "p-values not in 0 to 1 range"
	NoteTruncated  = "p-values are truncated"
	NoteNoPValues  = "no pvalues"
)

// StageRaw labels the unfiltered stage of a summary.
const StageRaw = "raw"

// NullFloat is a float64 that may be absent, e.g. pi0 for distributions the
// estimator does not model. It marshals to JSON null when invalid.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float wraps a present value.
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// MarshalJSON implements json.Marshaler.
func (f NullFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Float64)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NullFloat{}
		return nil
	}
	if err := json.Unmarshal(data, &f.Float64); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

// SummaryRecord is the diagnostic summary for one input table. Type, Class,
// Pi0, FdrEffects and HistCounts are parallel sequences with one entry per
// stage: length one when no covariate filter applied, length two when a
// filtered stage exists. Conversion is populated iff two stages exist. A
// record with a Note is terminal: normal processing was skipped and the other
// fields are empty.
type SummaryRecord struct {
	Type       []string    `json:"type,omitempty"`
	Class      []Class     `json:"class,omitempty"`
	Conversion string      `json:"conversion,omitempty"`
	Pi0        []NullFloat `json:"pi0,omitempty"`
	FdrEffects []int       `json:"fdr_effects,omitempty"`
	HistCounts [][]int     `json:"hist_counts,omitempty"`
	Note       string      `json:"note,omitempty"`
}

// Stages returns the number of stages in the record, zero for note records.
func (r SummaryRecord) Stages() int {
	return len(r.Type)
}

// IsNote reports whether the record is a terminal diagnostic.
func (r SummaryRecord) IsNote() bool {
	return r.Note != ""
}

// NewSummary builds a summary record, enforcing the parallel-sequence
// invariant and the conversion rule.
func NewSummary(types []string, classes []Class, conversion string, pi0 []NullFloat, fdrEffects []int, hist [][]int) (SummaryRecord, error) {
	n := len(types)
	if n == 0 {
		return SummaryRecord{}, apperrors.ValidationError("summary needs at least one stage")
	}
	if len(classes) != n || len(pi0) != n || len(fdrEffects) != n || len(hist) != n {
		return SummaryRecord{}, apperrors.ValidationError(fmt.Sprintf(
			"summary stage sequences are not parallel: %d types, %d classes, %d pi0, %d effects, %d hists",
			n, len(classes), len(pi0), len(fdrEffects), len(hist)))
	}
	if (conversion != "") != (n == 2) {
		return SummaryRecord{}, apperrors.ValidationError("conversion label is present iff two stages exist")
	}
	return SummaryRecord{
		Type:       types,
		Class:      classes,
		Conversion: conversion,
		Pi0:        pi0,
		FdrEffects: fdrEffects,
		HistCounts: hist,
	}, nil
}

// NoteSummary builds a terminal record carrying only a diagnostic note.
func NoteSummary(note string) SummaryRecord {
	return SummaryRecord{Note: note}
}

// TableSummary pairs a summary record with the identity of the table it
// describes.
type TableSummary struct {
	ID     string        `json:"id"`
	Record SummaryRecord `json:"record"`
}

// Variable is one expression-level covariate with its filtering threshold.
// Order within a Config is the selection priority: the first variable whose
// column is present in a table wins.
type Variable struct {
	Name      string
	Threshold float64
}

// Config is the summarization configuration surface.
type Config struct {
	// Breaks is the number of equal-width histogram bins over [0, 1].
	Breaks int
	// FDR is the false discovery rate threshold.
	FDR float64
	// Variables are covariate filters in priority order.
	Variables []Variable
}

// DefaultConfig returns the standard configuration: 30 bins, FDR 0.05 and the
// conventional expression-level thresholds.
func DefaultConfig() Config {
	return Config{
		Breaks: 30,
		FDR:    0.05,
		Variables: []Variable{
			{Name: "basemean", Threshold: 10},
			{Name: "fpkm", Threshold: 0.5},
			{Name: "logcpm", Threshold: math.Log2(0.5)},
			{Name: "rpkm", Threshold: 0.5},
		},
	}
}

// Validate reports configuration errors. These are fatal at startup and never
// silently defaulted.
func (c Config) Validate() error {
	if c.Breaks < 2 {
		return apperrors.ConfigInvalid(fmt.Sprintf("breaks must be at least 2, got %d", c.Breaks))
	}
	if c.FDR <= 0 || c.FDR >= 1 {
		return apperrors.ConfigInvalid(fmt.Sprintf("fdr must be in (0, 1), got %g", c.FDR))
	}
	seen := make(map[string]bool, len(c.Variables))
	for _, v := range c.Variables {
		if v.Name == "" {
			return apperrors.ConfigInvalid("variable name must not be empty")
		}
		if seen[v.Name] {
			return apperrors.ConfigInvalid("duplicate variable: " + v.Name)
		}
		seen[v.Name] = true
	}
	return nil
}
