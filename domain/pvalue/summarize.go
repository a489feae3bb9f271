package pvalue

import (
	"math"

	"github.com/montanaflynn/stats"

	"suppqc/internal/logx"
)

// Input is the column-selected view of one table: the p-value series plus any
// expression-level covariates aligned row-for-row with it.
type Input struct {
	PValues    []float64
	Covariates map[string][]float64
}

// Summarizer orchestrates the per-table pipeline: validate, bin, truncation
// check, classify, conversion, pi0 estimation and FDR effect counting. Both
// outcomes, a full summary or a note-bearing terminal record, come back as a
// SummaryRecord so callers handle them uniformly.
type Summarizer struct {
	cfg Config
	pi0 *Pi0Estimator
	log *logx.Logger
}

// NewSummarizer validates the configuration and builds a summarizer with the
// default pi0 estimator.
func NewSummarizer(cfg Config, logger *logx.Logger) (*Summarizer, error) {
	if logger == nil {
		logger = logx.DefaultLogger
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	est, err := NewPi0Estimator(Pi0Options{}, logger)
	if err != nil {
		return nil, err
	}
	return &Summarizer{cfg: cfg, pi0: est, log: logger}, nil
}

// Summarize produces the diagnostic summary for one table. It never fails:
// invalid inputs yield terminal note records.
func (s *Summarizer) Summarize(in Input) SummaryRecord {
	for _, p := range in.PValues {
		if math.IsNaN(p) {
			return NoteSummary(NoteOutOfRange)
		}
	}
	min, err := stats.Min(in.PValues)
	if err != nil {
		// No usable p-values left after selection.
		return NoteSummary(NoteOutOfRange)
	}
	max, _ := stats.Max(in.PValues)
	if min < 0 || max > 1 {
		return NoteSummary(NoteOutOfRange)
	}

	stages := [][]float64{in.PValues}
	types := []string{StageRaw}
	if name, subset, ok := s.filteredSubset(in); ok {
		stages = append(stages, subset)
		types = append(types, name)
	}

	counts := make([][]int, len(stages))
	for i, pv := range stages {
		counts[i] = binCounts(pv, s.cfg.Breaks)
	}

	if truncated(counts[0]) {
		return NoteSummary(NoteTruncated)
	}

	classes := make([]Class, len(stages))
	for i, c := range counts {
		classes[i] = ClassifyHistogram(c, s.cfg.Breaks, s.cfg.FDR)
	}

	conversion := ""
	if len(classes) == 2 {
		label, err := Convert(classes[0], classes[1])
		if err != nil {
			// Unreachable with classifier output; surface rather than drop.
			return NoteSummary(err.Error())
		}
		conversion = label
	}

	pi0 := make([]NullFloat, len(stages))
	for i, pv := range stages {
		if classes[i] != ClassUniform && classes[i] != ClassAntiConservative {
			continue
		}
		est, err := s.pi0.Estimate(pv)
		if err != nil {
			s.log.Warn("pi0 estimation failed for %s stage: %v", types[i], err)
			continue
		}
		pi0[i] = Float(est)
	}

	effects := make([]int, len(stages))
	for i, pv := range stages {
		n := 0
		for _, p := range pv {
			if p < s.cfg.FDR {
				n++
			}
		}
		effects[i] = n
	}

	return SummaryRecord{
		Type:       types,
		Class:      classes,
		Conversion: conversion,
		Pi0:        pi0,
		FdrEffects: effects,
		HistCounts: counts,
	}
}

// filteredSubset applies the first configured covariate filter whose variable
// is present in the input. The configuration order is the documented priority:
// when several covariates are present, only the first match is used. An empty
// passing subset yields no filtered stage.
func (s *Summarizer) filteredSubset(in Input) (string, []float64, bool) {
	for _, v := range s.cfg.Variables {
		cov, ok := in.Covariates[v.Name]
		if !ok {
			continue
		}
		subset := make([]float64, 0, len(in.PValues))
		for i, p := range in.PValues {
			if i < len(cov) && cov[i] >= v.Threshold {
				subset = append(subset, p)
			}
		}
		if len(subset) == 0 {
			return "", nil, false
		}
		return v.Name, subset, true
	}
	return "", nil, false
}

// binCounts partitions [0, 1] into breaks equal-width bins and counts the
// p-values per bin. A p-value of exactly 1 lands in the last bin.
func binCounts(pv []float64, breaks int) []int {
	counts := make([]int, breaks)
	for _, p := range pv {
		idx := int(p * float64(breaks))
		if idx >= breaks {
			idx = breaks - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}
	return counts
}

// truncated detects p-value tables clipped by the upstream producer. Zero bins
// that form a single contiguous run (leading or trailing decay) are natural;
// zero runs separated by occupied bins mean the distribution was cut, which
// invalidates shape inference.
func truncated(counts []int) bool {
	mask := make([]bool, len(counts))
	for i, c := range counts {
		mask[i] = c == 0
	}
	var first, last = -1, -1
	for _, r := range EncodeRuns(mask) {
		if !r.Value {
			continue
		}
		if first == -1 {
			first = r.Start
		}
		last = r.Start
	}
	return first != -1 && last > first
}
