package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cytodash/internal/domain"
)

func TestWideRowCells(t *testing.T) {
	age := 42
	rows := []domain.WideRow{{
		Sample: domain.Sample{SampleID: "s1", Age: &age},
		Counts: map[string]int{domain.PopulationBCell: 10, domain.PopulationMonocyte: 0},
	}}

	headers, cells := WideRowCells(rows)
	require.Len(t, cells, 1)
	assert.Equal(t, domain.FieldSampleID, headers[0])

	byHeader := map[string]string{}
	for i, h := range headers {
		byHeader[h] = cells[0][i]
	}
	assert.Equal(t, "s1", byHeader[domain.FieldSampleID])
	assert.Equal(t, "42", byHeader[domain.FieldAge])
	assert.Equal(t, "", byHeader[domain.FieldProject])
	assert.Equal(t, "10", byHeader[domain.PopulationBCell])
}

func TestComparisonCells(t *testing.T) {
	_, cells := ComparisonCells([]domain.PopulationComparison{
		{Population: domain.PopulationBCell, Applicable: true, Responders: 2, NonResponders: 2,
			MeanResponders: 12.5, MeanNonResponders: 32.5, TStatistic: -5.657, PValue: 0.03},
		{Population: domain.PopulationNKCell, Responders: 2, NonResponders: 1},
	})
	require.Len(t, cells, 2)

	assert.Equal(t, []string{"12.50", "32.50", "-5.657", "0.030", "no"}, cells[0][3:])
	assert.Contains(t, cells[1][3], notApplicable)
	assert.Equal(t, "no", cells[1][7])
}

func TestOperationLogCells(t *testing.T) {
	id := "s1"
	_, cells := OperationLogCells([]domain.OperationLogEntry{{
		ID:            7,
		OperationType: domain.OpRemoveSample,
		SampleID:      &id,
		Details:       map[string]any{"cell_counts_removed": 5},
		Timestamp:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}})

	assert.Equal(t, []string{"7", "2026-01-02 03:04:05", "remove_sample", "s1", `{"cell_counts_removed":5}`}, cells[0])
}

func TestIngestSummaryPairs(t *testing.T) {
	pairs := IngestSummaryPairs(domain.IngestSummary{Mode: domain.IngestIgnore, RowsProcessed: 12345})

	keys := make([]string, len(pairs))
	values := map[string]string{}
	for i, p := range pairs {
		keys[i] = p[0]
		values[p[0]] = p[1]
	}
	assert.Contains(t, keys, "samples_skipped_existing")
	assert.NotContains(t, keys, "samples_replaced")
	assert.Equal(t, "12,345", values["rows_processed"])
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"value", "samples"}, [][]string{{"prj1", "2"}})
	assert.Contains(t, out, "prj1")
	assert.Contains(t, out, "samples")
	assert.Equal(t, 5, strings.Count(out, "\n")+1)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
