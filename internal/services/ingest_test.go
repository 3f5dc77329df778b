package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cytodash/internal/adapters/csvsource"
	"cytodash/internal/domain"
)

func TestBulkLoad_Summary(t *testing.T) {
	env := newTestEnv(t)

	summary := env.loadCohort(t)

	assert.Equal(t, domain.IngestReplace, summary.Mode)
	assert.Equal(t, 6, summary.RowsProcessed)
	assert.Equal(t, 6, summary.SamplesAdded)
	assert.Zero(t, summary.SamplesReplaced)
	assert.Equal(t, 30, summary.CellCountsAdded)
	assert.Zero(t, summary.RowsWithErrors)
	assert.Equal(t, 1, summary.Chunks)

	n, err := env.samples.CountSamples(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	// condition is lower-cased on write
	row, err := env.samples.GetSample(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "melanoma", *row.Sample.Condition)
}

func TestBulkLoad_Idempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.loadCohort(t)

	before, err := env.queries.AllSamplesView(ctx)
	require.NoError(t, err)

	summary := env.loadCohort(t)
	assert.Zero(t, summary.SamplesAdded)
	assert.Equal(t, 6, summary.SamplesReplaced)

	after, err := env.queries.AllSamplesView(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestBulkLoad_ChunksAndProgress(t *testing.T) {
	env := newTestEnv(t)

	var progress []int
	summary, err := env.ingest.BulkLoad(context.Background(), writeFile(t, "c.csv", cohortCSV), IngestOptions{
		ChunkSize:  4,
		OnProgress: func(n int) { progress = append(progress, n) },
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Chunks)
	assert.Equal(t, []int{4, 6}, progress)
}

func TestBulkLoad_MissingIdentitySkipped(t *testing.T) {
	env := newTestEnv(t)
	csv := "sample,project,b_cell\n,prj1,5\ns1,prj1,abc\ns2,prj1,-3\n"

	var warnings []string
	summary, err := env.ingest.BulkLoad(context.Background(), writeFile(t, "c.csv", csv), IngestOptions{
		OnWarning: func(m string) { warnings = append(warnings, m) },
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.RowsProcessed)
	assert.Equal(t, 1, summary.RowsSkipped)
	assert.Zero(t, summary.RowsWithErrors)
	assert.Equal(t, 2, summary.SamplesAdded)
	assert.Equal(t, 3, summary.Warnings)
	assert.Len(t, warnings, 3)

	// invalid and negative counts are stored as null and count as zero
	row, err := env.samples.GetSample(context.Background(), "s2")
	require.NoError(t, err)
	assert.Equal(t, 0, row.Counts[domain.PopulationBCell])
}

func TestIncrementalAppend_SkipsExisting(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.loadCohort(t)

	csv := "sample,project,condition,b_cell,cd8_t_cell\ns1,changed,melanoma,1,1\ns7,prj4,melanoma,5,\n,prj4,melanoma,1,1\n"
	summary, err := env.ingest.IncrementalAppend(ctx, writeFile(t, "a.csv", csv), IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.IngestIgnore, summary.Mode)
	assert.Equal(t, 3, summary.RowsProcessed)
	assert.Equal(t, 1, summary.SamplesAdded)
	assert.Equal(t, 1, summary.SamplesSkippedExisting)
	assert.Equal(t, 1, summary.RowsWithErrors)
	assert.Equal(t, 2, summary.CellCountsAdded)

	row, err := env.samples.GetSample(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "prj1", *row.Sample.Project)
	assert.Equal(t, 100, row.Counts[domain.PopulationBCell])

	row, err = env.samples.GetSample(ctx, "s7")
	require.NoError(t, err)
	assert.Equal(t, 5, row.Counts[domain.PopulationBCell])
}

func TestIngest_EmptySource(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.ingest.BulkLoad(context.Background(), writeFile(t, "empty.csv", ""), IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrEmptySource)

	_, err = env.ingest.IncrementalAppend(context.Background(), writeFile(t, "header.csv", "sample,b_cell\n"), IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrEmptySource)

	assert.Equal(t, []domain.OperationType{domain.OpInitStore}, operationTypes(t, env.audit))
}

func TestIngest_AuditEntries(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.loadCohort(t)

	_, err := env.ingest.IncrementalAppend(ctx, writeFile(t, "a.csv", "sample,b_cell\ns9,1\n"), IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, []domain.OperationType{
		domain.OpAppendCSVData, domain.OpLoadCSVData, domain.OpInitStore,
	}, operationTypes(t, env.audit))

	entries, err := env.audit.OperationLog(ctx, 1)
	require.NoError(t, err)
	details, ok := entries[0].Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ignore", details["mode"])
	assert.Equal(t, float64(1), details["samples_added"])
}

func TestIngest_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	view, err := env.queries.AllSamplesView(ctx)
	require.NoError(t, err)
	assert.Empty(t, view)
	assert.Positive(t, env.cache.Len())

	env.loadCohort(t)

	view, err = env.queries.AllSamplesView(ctx)
	require.NoError(t, err)
	assert.Len(t, view, 6)
}

func TestIngest_FromReader(t *testing.T) {
	env := newTestEnv(t)

	src, err := csvsource.NewReader("inline", strings.NewReader("sample,nk_cell\nx1,4\n"), 10)
	require.NoError(t, err)

	summary, err := env.ingest.Ingest(context.Background(), src, domain.IngestReplace, IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, "inline", summary.SourceName)
	assert.Equal(t, 1, summary.SamplesAdded)
}
