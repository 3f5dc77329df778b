package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cytodash/internal/domain"
)

func TestFrequencyTable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.loadCohort(t)
	_, err := env.samples.AddSample(ctx, domain.NewSampleRequest{SampleID: "z0", Counts: map[string]int{domain.PopulationBCell: 0}})
	require.NoError(t, err)

	rows, err := env.analysis.FrequencyTable(ctx)
	require.NoError(t, err)

	byKey := map[string]domain.FrequencyRow{}
	for _, r := range rows {
		byKey[r.SampleID+"/"+r.Population] = r
	}

	s1 := byKey["s1/"+domain.PopulationBCell]
	assert.Equal(t, 100, s1.Count)
	assert.Equal(t, 1000, s1.TotalCount)
	assert.Equal(t, 10.0, s1.Percentage)

	// zero total never divides
	z0 := byKey["z0/"+domain.PopulationBCell]
	assert.Equal(t, 0, z0.TotalCount)
	assert.Equal(t, 0.0, z0.Percentage)
}

func TestTreatmentResponse(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.loadCohort(t)

	result, err := env.analysis.TreatmentResponse(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultCohort, result.Cohort)
	// s1..s4 are the only melanoma / tr1 / PBMC samples
	assert.Len(t, result.Rows, 20)
	require.Len(t, result.Comparisons, len(domain.KnownPopulations))

	bcell := result.Comparisons[0]
	assert.Equal(t, domain.PopulationBCell, bcell.Population)
	assert.True(t, bcell.Applicable)
	assert.Equal(t, 2, bcell.Responders)
	assert.Equal(t, 2, bcell.NonResponders)
	assert.Equal(t, 12.5, bcell.MeanResponders)
	assert.Equal(t, 32.5, bcell.MeanNonResponders)
	assert.InDelta(t, -5.657, bcell.TStatistic, 1e-9)
	assert.InDelta(t, 0.03, bcell.PValue, 1e-9)
	assert.True(t, bcell.Significant)
}

func TestTreatmentResponse_NotApplicable(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.loadCohort(t)

	_, err := env.samples.RemoveSample(ctx, "s4")
	require.NoError(t, err)

	result, err := env.analysis.TreatmentResponse(ctx)
	require.NoError(t, err)

	for _, c := range result.Comparisons {
		assert.False(t, c.Applicable, c.Population)
		assert.False(t, c.Significant, c.Population)
		assert.Equal(t, 1, c.NonResponders)
	}
}

func TestBaselineSummary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.loadCohort(t)

	summary, err := env.analysis.BaselineSummary(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalSamples)
	assert.Equal(t, map[string]int{"prj1": 2, "prj2": 2, "prj3": 1}, summary.SamplesPerProject)
	assert.Equal(t, map[string]int{"y": 3, "n": 2}, summary.ResponseCounts)
	assert.Equal(t, map[string]int{"F": 3, "M": 2}, summary.SexCounts)

	custom, err := env.analysis.BaselineSummary(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 4, custom.TotalSamples)
	assert.True(t, custom.IncludeTreatment)
}

func TestReport(t *testing.T) {
	env := newTestEnv(t)
	env.loadCohort(t)

	report, err := env.analysis.Report(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Frequencies, 30)
	assert.Len(t, report.TreatmentResponse.Comparisons, 5)
	assert.Equal(t, 5, report.Baseline.TotalSamples)
	assert.Equal(t, 4, report.CustomBaseline.TotalSamples)
}
