package pvalue

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	apperrors "suppqc/internal/errors"
	"suppqc/internal/logx"
)

// Pi0Options configures the null-proportion estimator.
type Pi0Options struct {
	// Lambdas is the threshold grid; nil selects DefaultLambdas. A single
	// lambda uses the closed-form estimate, a grid of four or more values the
	// smoothed estimate. Two or three values are a configuration error.
	Lambdas []float64
	// Override, when set, is returned as-is (still bounds-checked).
	Override *float64
	// Df is the degree of the smoothing fit; zero selects the default of 3.
	Df int
	// SmoothLogPi0 fits the smoother in log space.
	SmoothLogPi0 bool
}

// DefaultLambdas returns the standard threshold grid 0, 0.05, ..., 0.90.
func DefaultLambdas() []float64 {
	lambdas := make([]float64, 0, 19)
	for i := 0; i <= 18; i++ {
		lambdas = append(lambdas, float64(i)*0.05)
	}
	return lambdas
}

// Pi0Estimator estimates the proportion of truly null hypotheses from the tail
// of a p-value distribution. The model assumes p-values above lambda are
// asymptotically uniform, which holds for uniform and anti-conservative
// distributions only.
type Pi0Estimator struct {
	lambdas   []float64
	override  *float64
	df        int
	smoothLog bool
	log       *logx.Logger
}

// NewPi0Estimator validates the lambda grid and builds an estimator. Grid
// configuration problems are reported here, before any table is processed.
func NewPi0Estimator(opts Pi0Options, logger *logx.Logger) (*Pi0Estimator, error) {
	if logger == nil {
		logger = logx.DefaultLogger
	}
	lambdas := opts.Lambdas
	if lambdas == nil {
		lambdas = DefaultLambdas()
	}
	if len(lambdas) == 0 {
		return nil, apperrors.ConfigInvalid("lambda grid must not be empty")
	}
	if len(lambdas) > 1 && len(lambdas) < 4 {
		return nil, apperrors.ConfigInvalid("lambda grid needs at least 4 values, or exactly 1")
	}
	for _, l := range lambdas {
		if l < 0 || l >= 1 {
			return nil, apperrors.ConfigInvalid(fmt.Sprintf("lambda %g outside [0, 1)", l))
		}
	}
	df := opts.Df
	if df == 0 {
		df = 3
	}
	if df < 1 {
		return nil, apperrors.ConfigInvalid("smoothing degree must be positive")
	}
	return &Pi0Estimator{
		lambdas:   lambdas,
		override:  opts.Override,
		df:        df,
		smoothLog: opts.SmoothLogPi0,
		log:       logger,
	}, nil
}

// Estimate returns the estimated null proportion for the given p-values.
// P-values outside [0, 1] are a validation error; the result is always in
// [0, 1] or an internal error.
func (e *Pi0Estimator) Estimate(pv []float64) (float64, error) {
	if len(pv) == 0 {
		return 0, apperrors.ValidationError("no p-values to estimate pi0 from")
	}
	for _, p := range pv {
		if math.IsNaN(p) {
			return 0, apperrors.ValidationError("p-values should be between 0 and 1")
		}
	}
	min, err := stats.Min(pv)
	if err != nil {
		return 0, apperrors.ValidationError("p-values are not a numeric series")
	}
	max, _ := stats.Max(pv)
	if min < 0 || max > 1 {
		return 0, apperrors.ValidationError("p-values should be between 0 and 1")
	}

	var pi0 float64
	switch {
	case e.override != nil:
		pi0 = *e.override
	case len(e.lambdas) == 1:
		l := e.lambdas[0]
		pi0 = tailFraction(pv, l) / (1 - l)
		pi0 = math.Min(pi0, 1)
	default:
		pi0 = e.smoothedEstimate(pv)
	}

	if pi0 < 0 || pi0 > 1 || math.IsNaN(pi0) {
		return 0, apperrors.InternalError(fmt.Sprintf("pi0 is not between 0 and 1: %f", pi0))
	}
	return pi0, nil
}

// smoothedEstimate evaluates pi0(lambda) over the grid, fits a degree-df
// least-squares polynomial through the points and evaluates it at the maximum
// lambda, extrapolating the tail behavior of the distribution.
func (e *Pi0Estimator) smoothedEstimate(pv []float64) float64 {
	grid := make([]float64, len(e.lambdas))
	maxLambda := e.lambdas[0]
	for i, l := range e.lambdas {
		grid[i] = tailFraction(pv, l) / (1 - l)
		if e.smoothLog {
			grid[i] = math.Log(grid[i])
		}
		if l > maxLambda {
			maxLambda = l
		}
	}

	coef := polyFit(e.lambdas, grid, e.df)
	pi0 := polyEval(coef, maxLambda)
	if e.smoothLog {
		pi0 = math.Exp(pi0)
	}
	if pi0 > 1 {
		e.log.Warn("got pi0 > 1 (%.3f), setting it to 1", pi0)
		pi0 = 1
	}
	return pi0
}

// tailFraction returns the fraction of p-values at or above lambda.
func tailFraction(pv []float64, lambda float64) float64 {
	n := 0
	for _, p := range pv {
		if p >= lambda {
			n++
		}
	}
	return float64(n) / float64(len(pv))
}

// polyFit solves the least-squares polynomial fit of the given degree through
// the (x, y) points and returns the coefficients, lowest order first.
func polyFit(x, y []float64, degree int) []float64 {
	if degree >= len(x) {
		degree = len(x) - 1
	}
	a := mat.NewDense(len(x), degree+1, nil)
	for i, xi := range x {
		v := 1.0
		for j := 0; j <= degree; j++ {
			a.Set(i, j, v)
			v *= xi
		}
	}
	b := mat.NewVecDense(len(y), y)
	coef := mat.NewVecDense(degree+1, nil)
	if err := coef.SolveVec(a, b); err != nil {
		// Degenerate grids fall back to the mean of the points.
		m := 0.0
		for _, yi := range y {
			m += yi
		}
		return []float64{m / float64(len(y))}
	}
	out := make([]float64, degree+1)
	for j := 0; j <= degree; j++ {
		out[j] = coef.AtVec(j)
	}
	return out
}

// polyEval evaluates a polynomial with coefficients in ascending order at x.
func polyEval(coef []float64, x float64) float64 {
	y := 0.0
	for j := len(coef) - 1; j >= 0; j-- {
		y = y*x + coef[j]
	}
	return y
}
