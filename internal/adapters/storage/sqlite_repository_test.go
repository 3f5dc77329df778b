package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cytodash/internal/domain"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "cell-count.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.InitStore(context.Background()))
	return repo
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func record(id string, counts map[string]*int) domain.SampleRecord {
	return domain.SampleRecord{
		Sample: domain.Sample{
			SampleID:               id,
			Project:                strPtr("prj1"),
			Condition:              strPtr("melanoma"),
			Treatment:              strPtr("tr1"),
			Response:               strPtr("y"),
			SampleType:             strPtr("PBMC"),
			Sex:                    strPtr("F"),
			TimeFromTreatmentStart: intPtr(0),
		},
		Counts: counts,
	}
}

func TestInitStore_RecreatesEmptySchema(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.AddSample(ctx, record("s1", nil)))
	require.NoError(t, repo.InitStore(ctx))

	n, err := repo.CountSamples(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, table := range []string{"samples", "cell_counts", "operation_log"} {
		ok, err := repo.hasTable(ctx, table)
		require.NoError(t, err)
		assert.True(t, ok, table)
	}

	// EnsureSchema is a no-op on an initialized store
	require.NoError(t, repo.EnsureSchema(ctx))
}

func TestIngestChunk_ReplaceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	records := []domain.SampleRecord{
		record("s1", map[string]*int{domain.PopulationBCell: intPtr(10)}),
		record("s2", map[string]*int{domain.PopulationMonocyte: intPtr(5)}),
	}

	first, err := repo.IngestChunk(ctx, domain.IngestReplace, records)
	require.NoError(t, err)
	assert.Equal(t, 2, first.SamplesAdded)
	assert.Equal(t, 10, first.CellCountsAdded, "every known population is written")

	before, err := repo.LongRows(ctx, domain.SampleFilter{})
	require.NoError(t, err)

	second, err := repo.IngestChunk(ctx, domain.IngestReplace, records)
	require.NoError(t, err)
	assert.Equal(t, 0, second.SamplesAdded)
	assert.Equal(t, 2, second.SamplesReplaced)

	after, err := repo.LongRows(ctx, domain.SampleFilter{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, after, 10)
}

func TestIngestChunk_ReplaceOverwritesValues(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.IngestChunk(ctx, domain.IngestReplace, []domain.SampleRecord{
		record("s1", map[string]*int{domain.PopulationBCell: intPtr(10)}),
	})
	require.NoError(t, err)

	updated := record("s1", map[string]*int{domain.PopulationBCell: intPtr(99)})
	updated.Sample.Project = strPtr("prj2")
	_, err = repo.IngestChunk(ctx, domain.IngestReplace, []domain.SampleRecord{updated})
	require.NoError(t, err)

	row, err := repo.GetSample(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "prj2", *row.Sample.Project)
	assert.Equal(t, 99, row.Counts[domain.PopulationBCell])
}

func TestIngestChunk_IgnoreKeepsExisting(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.AddSample(ctx, record("s1", map[string]*int{domain.PopulationBCell: intPtr(10)})))

	existing := record("s1", map[string]*int{domain.PopulationBCell: intPtr(99), domain.PopulationNKCell: intPtr(3)})
	existing.Sample.Project = strPtr("other")
	result, err := repo.IngestChunk(ctx, domain.IngestIgnore, []domain.SampleRecord{
		existing,
		record("s2", map[string]*int{domain.PopulationBCell: intPtr(1)}),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.SamplesAdded)
	assert.Equal(t, 1, result.SamplesSkippedExisting)
	assert.Equal(t, 2, result.CellCountsAdded, "new nk_cell for s1 and b_cell for s2")

	row, err := repo.GetSample(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "prj1", *row.Sample.Project)
	assert.Equal(t, 10, row.Counts[domain.PopulationBCell])
	assert.Equal(t, 3, row.Counts[domain.PopulationNKCell])
}

func TestAddSample_DuplicateIsRejectedWithoutPartialWrites(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.AddSample(ctx, record("s1", map[string]*int{domain.PopulationBCell: intPtr(1)})))

	err := repo.AddSample(ctx, record("s1", map[string]*int{domain.PopulationMonocyte: intPtr(7)}))
	assert.ErrorIs(t, err, domain.ErrSampleExists)

	row, err := repo.GetSample(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, row.Counts[domain.PopulationMonocyte])
}

func TestRemoveSample(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.AddSample(ctx, record("s1", map[string]*int{
		domain.PopulationBCell:    intPtr(1),
		domain.PopulationMonocyte: intPtr(2),
	})))

	removed, err := repo.RemoveSample(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = repo.GetSample(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSampleNotFound)

	rows, err := repo.FrequencySource(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = repo.RemoveSample(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSampleNotFound)
}

func TestLongRows_AppliesFilters(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	s1 := record("s1", map[string]*int{domain.PopulationBCell: intPtr(1)})
	s2 := record("s2", nil)
	s2.Sample.Project = strPtr("prj2")
	s2.Sample.Response = strPtr("n")
	require.NoError(t, repo.AddSample(ctx, s1))
	require.NoError(t, repo.AddSample(ctx, s2))

	rows, err := repo.LongRows(ctx, domain.SampleFilter{Projects: []string{"prj2"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "s2", rows[0].Sample.SampleID)
	assert.Nil(t, rows[0].Population, "sample without counts still appears")

	rows, err = repo.LongRows(ctx, domain.SampleFilter{Conditions: []string{"Melanoma"}, Responses: []string{"y"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "s1", rows[0].Sample.SampleID)
}

func TestDistinctValues(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	a := record("a", nil)
	b := record("b", nil)
	b.Sample.Project = strPtr("prj0")
	c := record("c", nil)
	c.Sample.Project = nil
	for _, r := range []domain.SampleRecord{a, b, c} {
		require.NoError(t, repo.AddSample(ctx, r))
	}

	values, err := repo.DistinctValues(ctx, domain.FieldProject)
	require.NoError(t, err)
	assert.Equal(t, []string{"prj0", "prj1"}, values)

	_, err = repo.DistinctValues(ctx, "project; DROP TABLE samples")
	assert.ErrorIs(t, err, domain.ErrUnknownField)

	ids, err := repo.AllSampleIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestFrequencySource_TotalsPerSample(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.AddSample(ctx, record("s1", map[string]*int{
		domain.PopulationBCell:    intPtr(30),
		domain.PopulationMonocyte: intPtr(70),
		domain.PopulationNKCell:   nil,
	})))

	rows, err := repo.FrequencySource(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, 100, r.TotalCount)
	}
}

func TestCohortSources(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	inCohort := record("s1", map[string]*int{domain.PopulationBCell: intPtr(5)})
	otherTreatment := record("s2", map[string]*int{domain.PopulationBCell: intPtr(5)})
	otherTreatment.Sample.Treatment = strPtr("tr2")
	later := record("s3", map[string]*int{domain.PopulationBCell: intPtr(5)})
	later.Sample.TimeFromTreatmentStart = intPtr(7)
	for _, r := range []domain.SampleRecord{inCohort, otherTreatment, later} {
		require.NoError(t, repo.AddSample(ctx, r))
	}

	tr, err := repo.TreatmentResponseSource(ctx, domain.DefaultCohort)
	require.NoError(t, err)
	assert.Len(t, tr, 2, "s1 and s3")

	baseline, err := repo.BaselineSource(ctx, domain.DefaultCohort, false)
	require.NoError(t, err)
	assert.Len(t, baseline, 2, "s1 and s2")

	custom, err := repo.BaselineSource(ctx, domain.DefaultCohort, true)
	require.NoError(t, err)
	require.Len(t, custom, 1)
	assert.Equal(t, "s1", custom[0].SampleID)
}

func TestOperationLog(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.AppendOperation(ctx, domain.OpAddSample, strPtr("s1"), `{"sample_id":"s1"}`))
	require.NoError(t, repo.AppendOperation(ctx, domain.OpCreateCheckpoint, nil, ""))

	entries, err := repo.ListOperations(ctx, 50)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.OpCreateCheckpoint, entries[0].OperationType, "newest first")
	assert.Nil(t, entries[0].Details)
	assert.Equal(t, "s1", *entries[1].SampleID)

	limited, err := repo.ListOperations(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestListOperations_MissingTable(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer repo.Close()

	entries, err := repo.ListOperations(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReleaseAndReopen(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.Release())
	_, err := repo.CountSamples(ctx)
	assert.ErrorIs(t, err, errStoreClosed)

	require.NoError(t, repo.Reopen())
	_, err = repo.CountSamples(ctx)
	assert.NoError(t, err)
}

func TestIngestChunk_RowErrorDoesNotAbortChunk(t *testing.T) {
	for _, mode := range []domain.IngestMode{domain.IngestReplace, domain.IngestIgnore} {
		t.Run(string(mode), func(t *testing.T) {
			ctx := context.Background()
			repo := newTestRepository(t)

			// the CHECK constraint rejects the negative count of the middle row
			result, err := repo.IngestChunk(ctx, mode, []domain.SampleRecord{
				record("a", map[string]*int{domain.PopulationBCell: intPtr(1)}),
				record("bad", map[string]*int{domain.PopulationBCell: intPtr(-1)}),
				record("c", map[string]*int{domain.PopulationBCell: intPtr(1)}),
			})
			require.NoError(t, err)

			assert.Equal(t, 1, result.RowsWithErrors)
			assert.Equal(t, 2, result.SamplesAdded)

			ids, err := repo.AllSampleIDs(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "c"}, ids)

			_, err = repo.GetSample(ctx, "bad")
			assert.ErrorIs(t, err, domain.ErrSampleNotFound)
		})
	}
}

func TestWithRetry(t *testing.T) {
	t.Run("wraps the last busy error", func(t *testing.T) {
		busy := busyError()
		calls := 0
		err := withRetry(func() error {
			calls++
			return busy
		}, 2)

		assert.Equal(t, 2, calls)
		assert.ErrorIs(t, err, busy)
		assert.True(t, isBusy(err))
		assert.Contains(t, err.Error(), "after 2 retries")
	})

	t.Run("returns other errors immediately", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		err := withRetry(func() error {
			calls++
			return boom
		}, 3)

		assert.Equal(t, 1, calls)
		assert.Equal(t, boom, err)
	})

	t.Run("succeeds after a busy attempt", func(t *testing.T) {
		calls := 0
		err := withRetry(func() error {
			calls++
			if calls == 1 {
				return busyError()
			}
			return nil
		}, 3)

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})
}
