// Package stats implements the two-sample Student t-test used by the
// responder comparison.
package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrTooFewObservations is returned when a group has fewer than two values
	ErrTooFewObservations = errors.New("each group needs at least two observations")
	// ErrZeroVariance is returned when both groups are constant
	ErrZeroVariance = errors.New("pooled variance is zero")
)

// TTestResult is the outcome of a two-sample test
type TTestResult struct {
	DegreesOfFreedom float64
	MeanA            float64
	MeanB            float64
	PValue           float64
	TStatistic       float64
}

// Mean returns the arithmetic mean, or 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StudentTTest runs an independent two-sample t-test assuming equal
// variances and returns the two-sided p-value.
func StudentTTest(a, b []float64) (TTestResult, error) {
	na, nb := len(a), len(b)
	if na < 2 || nb < 2 {
		return TTestResult{}, ErrTooFewObservations
	}

	ma, va := stat.MeanVariance(a, nil)
	mb, vb := stat.MeanVariance(b, nil)
	df := float64(na + nb - 2)
	pooled := (float64(na-1)*va + float64(nb-1)*vb) / df
	result := TTestResult{DegreesOfFreedom: df, MeanA: ma, MeanB: mb}
	if pooled == 0 {
		return result, ErrZeroVariance
	}

	se := math.Sqrt(pooled * (1/float64(na) + 1/float64(nb)))
	t := (ma - mb) / se
	result.TStatistic = t
	result.PValue = TwoSidedP(t, df)
	return result, nil
}

// TwoSidedP returns P(|T| >= |t|) for Student's t distribution with df degrees of freedom
func TwoSidedP(t, df float64) float64 {
	if math.IsNaN(t) || df <= 0 {
		return math.NaN()
	}
	if math.IsInf(t, 0) {
		return 0
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return math.Min(1, 2*dist.CDF(-math.Abs(t)))
}
