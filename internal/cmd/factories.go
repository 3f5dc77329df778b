package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"cytodash/internal/adapters/blob"
	adaptercache "cytodash/internal/adapters/cache"
	"cytodash/internal/adapters/csvsource"
	"cytodash/internal/adapters/plot"
	adapterstorage "cytodash/internal/adapters/storage"
	"cytodash/internal/config"
	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/observability"
	"cytodash/internal/ports"
	"cytodash/internal/services"
)

// ContainerConfig holds the resolved settings the container is built from
type ContainerConfig struct {
	CacheBackend string
	CacheTTL     time.Duration
	Cohort       domain.Cohort
	DBPath       string
	MetricsFile  string
	Mirror       *config.MirrorSettings
	RedisAddr    string
}

// Container holds all dependencies for the application
type Container struct {
	// Services
	AnalysisService   *services.AnalysisService
	AuditService      *services.AuditService
	CheckpointService *services.CheckpointService
	ExportService     *services.ExportService
	IngestService     *services.IngestService
	QueryService      *services.QueryService
	SampleService     *services.SampleService
	StoreService      *services.StoreService

	// StoreExisted is false when the store file was created by this run
	StoreExisted bool

	// Internal - for cleanup only
	cache       ports.QueryCache
	metrics     *observability.StoreMetrics
	metricsFile string
	repo        *adapterstorage.SQLiteRepository
}

// NewContainer creates a new Container with all dependencies wired
func NewContainer(ctx context.Context, cfg ContainerConfig) (*Container, error) {
	dbPath := config.ExpandPath(cfg.DBPath)
	_, statErr := os.Stat(dbPath)
	existed := statErr == nil

	// Create adapters
	repo, err := adapterstorage.NewSQLiteRepository(dbPath)
	if err != nil {
		return nil, err
	}

	queryCache, err := newQueryCache(cfg, dbPath)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	metrics, err := observability.NewStoreMetrics(prometheus.NewRegistry())
	if err != nil {
		_ = repo.Close()
		_ = queryCache.Close()
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	var mirror ports.CheckpointMirror
	if cfg.Mirror.Enabled() {
		s3Mirror, err := blob.NewS3Mirror(ctx, blob.S3Config{
			Bucket:    cfg.Mirror.Bucket,
			Endpoint:  cfg.Mirror.Endpoint,
			PathStyle: cfg.Mirror.PathStyle != nil && *cfg.Mirror.PathStyle,
			Prefix:    cfg.Mirror.Prefix,
			Region:    cfg.Mirror.Region,
		})
		if err != nil {
			_ = repo.Close()
			_ = queryCache.Close()
			return nil, fmt.Errorf("failed to create checkpoint mirror: %w", err)
		}
		mirror = s3Mirror
		logging.Logger.Info("Checkpoint mirror enabled", "bucket", cfg.Mirror.Bucket)
	}

	// Create services
	auditService := services.NewAuditService(repo)
	queryService := services.NewQueryService(repo, repo, queryCache, cfg.Cohort, metrics)
	analysisService := services.NewAnalysisService(queryService, metrics)
	checkpointService := services.NewCheckpointService(repo, auditService, queryCache, mirror, metrics)
	exportService := services.NewExportService(queryService, analysisService, auditService, plot.Renderer{})
	ingestService := services.NewIngestService(repo, openCSV, auditService, queryCache, metrics)
	sampleService := services.NewSampleService(repo, auditService, queryCache, metrics)
	storeService := services.NewStoreService(repo, repo, auditService, queryCache)

	c := &Container{
		AnalysisService:   analysisService,
		AuditService:      auditService,
		CheckpointService: checkpointService,
		ExportService:     exportService,
		IngestService:     ingestService,
		QueryService:      queryService,
		SampleService:     sampleService,
		StoreExisted:      existed,
		StoreService:      storeService,
		cache:             queryCache,
		metrics:           metrics,
		metricsFile:       cfg.MetricsFile,
		repo:              repo,
	}

	if err := storeService.Bootstrap(ctx, existed); err != nil && !errors.Is(err, domain.ErrAuditWrite) {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

func newQueryCache(cfg ContainerConfig, dbPath string) (ports.QueryCache, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendNone:
		return adaptercache.NoopCache{}, nil
	case config.CacheBackendRedis:
		c, err := adaptercache.NewRedisCache(cfg.RedisAddr, dbPath, cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect query cache: %w", err)
		}
		return c, nil
	default:
		return adaptercache.NewMemoryCache(cfg.CacheTTL), nil
	}
}

func openCSV(path string, chunkSize int) (ports.RecordSource, error) {
	r, err := csvsource.Open(path, chunkSize)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Close flushes metrics and closes all resources held by the container
func (c *Container) Close() error {
	if c.metricsFile != "" && c.metrics != nil {
		if err := c.metrics.WriteTextfile(c.metricsFile); err != nil {
			logging.Logger.Warn("Failed to write metrics file", "path", c.metricsFile, "error", err)
		}
	}
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			logging.Logger.Warn("Failed to close query cache", "error", err)
		}
	}
	if c.repo != nil {
		return c.repo.Close()
	}
	return nil
}
