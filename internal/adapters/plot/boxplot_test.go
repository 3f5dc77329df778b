package plot

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cytodash/internal/domain"
)

func row(pop, response string, pct float64) domain.ResponseFrequencyRow {
	return domain.ResponseFrequencyRow{
		FrequencyRow: domain.FrequencyRow{Population: pop, Percentage: pct},
		Response:     response,
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4, 5, 6, 7, 8, 100})

	assert.Equal(t, 9, s.N)
	assert.Equal(t, 5.0, s.Median)
	assert.Equal(t, 3.0, s.Q1)
	assert.Equal(t, 7.0, s.Q3)
	assert.Equal(t, 1.0, s.LowerWhisker)
	assert.Equal(t, 8.0, s.UpperWhisker)
	assert.Equal(t, []float64{100}, s.Outliers)
}

func TestSummarize_Small(t *testing.T) {
	assert.Equal(t, BoxStats{}, Summarize(nil))

	s := Summarize([]float64{4})
	assert.Equal(t, 4.0, s.Median)
	assert.Equal(t, 4.0, s.LowerWhisker)
	assert.Equal(t, 4.0, s.UpperWhisker)
}

func TestGroupByPopulation_Order(t *testing.T) {
	order, groups := groupByPopulation([]domain.ResponseFrequencyRow{
		row("zeta_cell", "y", 1),
		row("monocyte", "n", 2),
		row("b_cell", "y", 3),
		row("b_cell", "", 4),
	})

	assert.Equal(t, []string{"b_cell", "monocyte", "zeta_cell"}, order)
	assert.Equal(t, []float64{3}, groups["b_cell"]["y"])
	assert.Empty(t, groups["b_cell"]["n"])
}

func TestRenderTreatmentResponse(t *testing.T) {
	result := domain.TreatmentResponseResult{
		Cohort: domain.DefaultCohort,
		Rows: []domain.ResponseFrequencyRow{
			row("b_cell", "y", 10), row("b_cell", "y", 12), row("b_cell", "n", 20),
			row("nk_cell", "y", 5), row("nk_cell", "n", 6), row("nk_cell", "n", 7),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderTreatmentResponse(&buf, result, Options{Width: 400, Height: 300}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestRenderTreatmentResponse_NoData(t *testing.T) {
	var buf bytes.Buffer
	err := RenderTreatmentResponse(&buf, domain.TreatmentResponseResult{}, Options{})
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
