package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentTTest(t *testing.T) {
	result, err := StudentTTest([]float64{1, 2, 3, 4, 5}, []float64{6, 7, 8, 9, 10})
	require.NoError(t, err)

	assert.Equal(t, 8.0, result.DegreesOfFreedom)
	assert.Equal(t, 3.0, result.MeanA)
	assert.Equal(t, 8.0, result.MeanB)
	assert.InDelta(t, -5.0, result.TStatistic, 1e-12)
	assert.InDelta(t, 0.0010528, result.PValue, 1e-6)
}

// responders 10% / 15% against non-responders 30% / 35%, as in the b_cell cohort
func TestStudentTTest_TwoPerGroup(t *testing.T) {
	result, err := StudentTTest([]float64{10, 15}, []float64{30, 35})
	require.NoError(t, err)

	assert.InDelta(t, -5.657, result.TStatistic, 1e-3)
	assert.InDelta(t, 0.0299, result.PValue, 1e-4)
}

func TestStudentTTest_UnequalSizes(t *testing.T) {
	result, err := StudentTTest([]float64{10, 12}, []float64{11, 11, 13})
	require.NoError(t, err)

	assert.Equal(t, 3.0, result.DegreesOfFreedom)
	assert.Less(t, result.TStatistic, 0.0)
	assert.Greater(t, result.PValue, 0.05)
}

func TestStudentTTest_Errors(t *testing.T) {
	_, err := StudentTTest([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrTooFewObservations)

	_, err = StudentTTest([]float64{1, 2}, nil)
	assert.ErrorIs(t, err, ErrTooFewObservations)

	result, err := StudentTTest([]float64{3, 3}, []float64{3, 3, 3})
	assert.ErrorIs(t, err, ErrZeroVariance)
	assert.Equal(t, 3.0, result.MeanA)
}

func TestTwoSidedP(t *testing.T) {
	tests := []struct {
		name string
		t    float64
		df   float64
		want float64
	}{
		{name: "zero statistic", t: 0, df: 5, want: 1},
		{name: "cauchy", t: 1, df: 1, want: 0.5},
		{name: "two dof closed form", t: 2, df: 2, want: 1 - 2/math.Sqrt(6)},
		{name: "symmetric", t: -2, df: 2, want: 1 - 2/math.Sqrt(6)},
		{name: "infinite", t: math.Inf(1), df: 4, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TwoSidedP(tt.t, tt.df), 1e-9)
		})
	}

	assert.True(t, math.IsNaN(TwoSidedP(math.NaN(), 3)))
	assert.True(t, math.IsNaN(TwoSidedP(1, 0)))
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.5, Mean([]float64{1, 2, 3, 4}))
}
