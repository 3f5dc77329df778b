package integration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"cytodash/test/integration/harness"
)

type comparisonJSON struct {
	Applicable  bool    `json:"applicable"`
	PValue      float64 `json:"p_value"`
	Population  string  `json:"population"`
	Significant bool    `json:"significant"`
}

func TestAnalyze(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	loadCohort(t, env)

	t.Run("frequency csv", func(t *testing.T) {
		result := harness.RunCommand(t, env, "analyze", "frequency", "--format", "csv")
		harness.AssertSuccess(t, result)
		records := harness.ParseCSV(t, result)
		// six samples, five populations each
		assert.Len(t, records, 31)
	})

	t.Run("treatment-response json", func(t *testing.T) {
		result := harness.RunCommand(t, env, "analyze", "treatment-response", "--format", "json")
		harness.AssertSuccess(t, result)

		var out struct {
			Comparisons []comparisonJSON `json:"comparisons"`
		}
		harness.AssertValidJSON(t, result, &out)
		require.NotEmpty(t, out.Comparisons)

		byPop := map[string]comparisonJSON{}
		for _, c := range out.Comparisons {
			byPop[c.Population] = c
		}
		bCell := byPop["b_cell"]
		assert.True(t, bCell.Applicable)
		assert.True(t, bCell.Significant)
		assert.InDelta(t, 0.0298, bCell.PValue, 0.001)
	})

	t.Run("treatment-response table", func(t *testing.T) {
		result := harness.RunCommand(t, env, "analyze", "treatment-response")
		harness.AssertSuccess(t, result)
		harness.AssertStdoutContains(t, result, "Cohort: melanoma / tr1 / PBMC")
		harness.AssertStdoutContains(t, result, "b_cell")
	})

	t.Run("baseline json", func(t *testing.T) {
		result := harness.RunCommand(t, env, "analyze", "baseline", "--format", "json")
		harness.AssertSuccess(t, result)
		var summary struct {
			SamplesPerProject map[string]int `json:"samples_per_project"`
			TotalSamples      int            `json:"total_samples"`
		}
		harness.AssertValidJSON(t, result, &summary)
		assert.Equal(t, 5, summary.TotalSamples)
		assert.Equal(t, map[string]int{"prj1": 2, "prj2": 2, "prj3": 1}, summary.SamplesPerProject)
	})

	t.Run("baseline restricted to treatment", func(t *testing.T) {
		result := harness.RunCommand(t, env, "analyze", "baseline", "--include-treatment", "--format", "json")
		harness.AssertSuccess(t, result)
		var summary struct {
			TotalSamples int `json:"total_samples"`
		}
		harness.AssertValidJSON(t, result, &summary)
		assert.Equal(t, 4, summary.TotalSamples)
	})

	t.Run("report yaml", func(t *testing.T) {
		result := harness.RunCommand(t, env, "analyze", "report", "--format", "yaml")
		harness.AssertSuccess(t, result)
		var report map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(result.Stdout), &report))
		assert.Contains(t, report, "baseline")
		assert.Contains(t, report, "custom_baseline")
		assert.Contains(t, report, "frequencies")
		assert.Contains(t, report, "treatment_response")
	})

	t.Run("cohort override from settings", func(t *testing.T) {
		env.WriteSettings(`{"cohort": {"treatment": "tr2"}}`)
		defer env.WriteSettings(`{}`)

		result := harness.RunCommand(t, env, "analyze", "treatment-response")
		harness.AssertSuccess(t, result)
		harness.AssertStdoutContains(t, result, "Cohort: melanoma / tr2 / PBMC")
	})
}

func TestAnalyzeEmptyStore(t *testing.T) {
	env := harness.NewTestEnvironment(t)

	result := harness.RunCommand(t, env, "analyze", "treatment-response", "--format", "json")
	harness.AssertSuccess(t, result)
	var out struct {
		Comparisons []comparisonJSON `json:"comparisons"`
	}
	harness.AssertValidJSON(t, result, &out)
	assert.Empty(t, out.Comparisons)
}
