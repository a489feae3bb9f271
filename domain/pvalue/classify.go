package pvalue

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// Class labels the shape of a p-value histogram.
type Class string

const (
	// ClassUniform means no bin exceeds the binomial null threshold.
	ClassUniform Class = "uniform"
	// ClassAntiConservative means excess mass is confined to the low p-value
	// end, the signature of true effects.
	ClassAntiConservative Class = "anti-conservative"
	// ClassConservative means excess mass is confined to the high p-value end,
	// the signature of inflated p-values.
	ClassConservative Class = "conservative"
	// ClassOther covers mixed or irregular shapes.
	ClassOther Class = "other"
)

// Classes lists all histogram classes in matrix order.
var Classes = []Class{ClassUniform, ClassAntiConservative, ClassConservative, ClassOther}

// ClassifyHistogram assigns a shape class to integer bin counts of a p-value
// histogram. The threshold is the 1-fdr/breaks quantile of a
// Binomial(sum(counts), 1/breaks) distribution: the count a bin would need to
// exceed to be called "excess" under a uniform null at the given FDR.
//
// The classifier is total and deterministic over non-empty counts:
//
//	uniform            no bin is over the threshold
//	anti-conservative  the over mass is anchored at the low p-value end
//	conservative       the over mass is anchored at the high p-value end
//	other              neither pattern holds
func ClassifyHistogram(counts []int, breaks int, fdr float64) Class {
	total := 0
	for _, c := range counts {
		total += c
	}
	qc := binomialQuantile(total, 1/float64(breaks), 1-fdr/float64(breaks))

	over := make([]bool, len(counts))
	anyOver := false
	for i, c := range counts {
		over[i] = float64(c) > qc
		anyOver = anyOver || over[i]
	}

	switch {
	case !anyOver:
		return ClassUniform
	case lowAnchored(over):
		return ClassAntiConservative
	case lowAnchored(reversed(over)):
		return ClassConservative
	default:
		return ClassOther
	}
}

// lowAnchored reports whether the over mass is confined to the start of the
// mask: the first over bin lies within the first three positions and no over
// bin remains after skipping the first run plus two positions. Without the
// anchor condition a lone spike at the far end would slip through, because the
// skip window overruns the mask.
func lowAnchored(over []bool) bool {
	first := -1
	for i, v := range over {
		if v {
			first = i
			break
		}
	}
	if first == -1 || first > 2 {
		return false
	}
	runs := EncodeRuns(over)
	for i := runs[0].Length + 2; i < len(over); i++ {
		if over[i] {
			return false
		}
	}
	return true
}

func reversed(mask []bool) []bool {
	out := make([]bool, len(mask))
	for i, v := range mask {
		out[len(mask)-1-i] = v
	}
	return out
}

// binomialQuantile computes the inverse CDF of Binomial(n, p) at cumulative
// probability cum: the smallest k with CDF(k) >= cum. distuv exposes only the
// CDF for the binomial, so the quantile is found by bisection over [0, n].
func binomialQuantile(n int, p, cum float64) float64 {
	if n <= 0 {
		return 0
	}
	dist := distuv.Binomial{N: float64(n), P: p}
	lo, hi := 0, n
	for lo < hi {
		mid := lo + (hi-lo)/2
		if dist.CDF(float64(mid)) >= cum {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return float64(lo)
}
