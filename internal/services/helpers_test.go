package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cytodash/internal/adapters/cache"
	"cytodash/internal/adapters/csvsource"
	"cytodash/internal/adapters/storage"
	"cytodash/internal/domain"
	"cytodash/internal/ports"
)

const cohortCSV = `project,subject,condition,age,sex,treatment,response,sample,sample_type,time_from_treatment_start,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte
prj1,sbj1,Melanoma,70,F,tr1,y,s1,PBMC,0,100,200,300,400,0
prj1,sbj2,melanoma,61,M,tr1,y,s2,PBMC,0,150,250,300,200,100
prj2,sbj3,melanoma,55,F,tr1,n,s3,PBMC,0,300,100,200,200,200
prj2,sbj4,melanoma,48,M,tr1,n,s4,PBMC,0,350,150,100,300,100
prj3,sbj5,melanoma,66,F,tr2,y,s5,PBMC,0,10,10,10,10,10
prj3,sbj6,carcinoma,52,M,tr1,n,s6,WB,7,20,20,20,20,20
`

type testEnv struct {
	analysis    *AnalysisService
	audit       *AuditService
	cache       *cache.MemoryCache
	checkpoints *CheckpointService
	export      *ExportService
	ingest      *IngestService
	queries     *QueryService
	repo        *storage.SQLiteRepository
	samples     *SampleService
	store       *StoreService
}

func openCSV(path string, chunkSize int) (ports.RecordSource, error) {
	r, err := csvsource.Open(path, chunkSize)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "cell-count.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	qc := cache.NewMemoryCache(time.Minute)
	audit := NewAuditService(repo)
	queries := NewQueryService(repo, repo, qc, domain.DefaultCohort, nil)
	analysis := NewAnalysisService(queries, nil)

	env := &testEnv{
		analysis:    analysis,
		audit:       audit,
		cache:       qc,
		checkpoints: NewCheckpointService(repo, audit, qc, nil, nil),
		export:      NewExportService(queries, analysis, audit, nil),
		ingest:      NewIngestService(repo, openCSV, audit, qc, nil),
		queries:     queries,
		repo:        repo,
		samples:     NewSampleService(repo, audit, qc, nil),
		store:       NewStoreService(repo, repo, audit, qc),
	}
	require.NoError(t, env.store.Bootstrap(context.Background(), false))
	return env
}

// loadCohort bulk loads cohortCSV into the environment's store
func (e *testEnv) loadCohort(t *testing.T) domain.IngestSummary {
	t.Helper()
	summary, err := e.ingest.BulkLoad(context.Background(), writeFile(t, "cohort.csv", cohortCSV), IngestOptions{})
	require.NoError(t, err)
	return summary
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func operationTypes(t *testing.T, audit *AuditService) []domain.OperationType {
	t.Helper()
	entries, err := audit.OperationLog(context.Background(), 100)
	require.NoError(t, err)
	types := make([]domain.OperationType, len(entries))
	for i, e := range entries {
		types[i] = e.OperationType
	}
	return types
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }
