package pvalue

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "suppqc/internal/errors"
)

// uniformPValues returns n evenly spaced p-values over (0, 1), the
// deterministic stand-in for an i.i.d. uniform sample.
func uniformPValues(n int) []float64 {
	pv := make([]float64, n)
	for i := range pv {
		pv[i] = (float64(i) + 0.5) / float64(n)
	}
	return pv
}

func TestPi0Estimator_SingleLambdaUniform(t *testing.T) {
	est, err := NewPi0Estimator(Pi0Options{Lambdas: []float64{0.5}}, nil)
	assert.NoError(t, err)

	for _, n := range []int{100, 1000, 10000} {
		pi0, err := est.Estimate(uniformPValues(n))
		assert.NoError(t, err)
		assert.InDelta(t, 1.0, pi0, 0.02, "uniform p-values at n=%d", n)
	}
}

func TestPi0Estimator_SmoothedUniform(t *testing.T) {
	est, err := NewPi0Estimator(Pi0Options{}, nil)
	assert.NoError(t, err)

	pi0, err := est.Estimate(uniformPValues(2000))
	assert.NoError(t, err)
	assert.InDelta(t, 1.0, pi0, 0.05)
	assert.LessOrEqual(t, pi0, 1.0)
	assert.GreaterOrEqual(t, pi0, 0.0)
}

func TestPi0Estimator_SmoothedWithEffects(t *testing.T) {
	// Half uniform nulls, half concentrated near zero: pi0 well below 1.
	pv := uniformPValues(1000)
	for i := 0; i < 1000; i++ {
		pv = append(pv, 0.001)
	}
	est, err := NewPi0Estimator(Pi0Options{}, nil)
	assert.NoError(t, err)

	pi0, err := est.Estimate(pv)
	assert.NoError(t, err)
	assert.Less(t, pi0, 0.8)
	assert.GreaterOrEqual(t, pi0, 0.0)
}

func TestPi0Estimator_LambdaGridConfiguration(t *testing.T) {
	for _, lambdas := range [][]float64{
		{0.1, 0.5},
		{0.1, 0.3, 0.5},
	} {
		_, err := NewPi0Estimator(Pi0Options{Lambdas: lambdas}, nil)
		assert.Error(t, err, "grid %v", lambdas)
		assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
	}

	_, err := NewPi0Estimator(Pi0Options{Lambdas: []float64{1.0}}, nil)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))

	_, err = NewPi0Estimator(Pi0Options{Lambdas: []float64{-0.1, 0.2, 0.4, 0.6}}, nil)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))

	_, err = NewPi0Estimator(Pi0Options{Lambdas: []float64{0, 0.2, 0.4, 0.6}}, nil)
	assert.NoError(t, err)
}

func TestPi0Estimator_PValueValidation(t *testing.T) {
	est, err := NewPi0Estimator(Pi0Options{}, nil)
	assert.NoError(t, err)

	for _, pv := range [][]float64{
		{-0.1, 0.5},
		{0.5, 1.5},
		{0.5, math.NaN()},
		{},
	} {
		_, err := est.Estimate(pv)
		assert.Error(t, err, "p-values %v", pv)
		assert.Equal(t, apperrors.CodeValidationError, apperrors.GetCode(err))
	}
}

func TestPi0Estimator_Override(t *testing.T) {
	half := 0.5
	est, err := NewPi0Estimator(Pi0Options{Override: &half}, nil)
	assert.NoError(t, err)
	pi0, err := est.Estimate(uniformPValues(100))
	assert.NoError(t, err)
	assert.Equal(t, 0.5, pi0)

	// An out-of-range override trips the postcondition, not the clipping.
	bad := 1.5
	est, err = NewPi0Estimator(Pi0Options{Override: &bad}, nil)
	assert.NoError(t, err)
	_, err = est.Estimate(uniformPValues(100))
	assert.Error(t, err)
	assert.Equal(t, apperrors.CodeInternalError, apperrors.GetCode(err))
}

func TestPi0Estimator_SmoothLog(t *testing.T) {
	est, err := NewPi0Estimator(Pi0Options{SmoothLogPi0: true}, nil)
	assert.NoError(t, err)
	pi0, err := est.Estimate(uniformPValues(2000))
	assert.NoError(t, err)
	assert.InDelta(t, 1.0, pi0, 0.05)
}

func TestDefaultLambdas(t *testing.T) {
	lambdas := DefaultLambdas()
	assert.Len(t, lambdas, 19)
	assert.Equal(t, 0.0, lambdas[0])
	assert.InDelta(t, 0.9, lambdas[18], 1e-12)
}
