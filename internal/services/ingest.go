package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/ports"
)

// SourceOpener opens a record source reading chunkSize records at a time
type SourceOpener func(path string, chunkSize int) (ports.RecordSource, error)

// IngestOptions tunes a single load or append
type IngestOptions struct {
	ChunkSize int
	// OnProgress is called after each chunk with the number of rows processed so far
	OnProgress func(rowsProcessed int)
	// OnWarning receives every row-level warning
	OnWarning func(message string)
}

// IngestService loads CSV sources into the store chunk by chunk
type IngestService struct {
	audit    *AuditService
	cache    ports.QueryCache
	ingestor ports.ChunkIngestor
	metrics  ports.MetricsRecorder
	open     SourceOpener
}

// NewIngestService creates a new IngestService
func NewIngestService(
	ingestor ports.ChunkIngestor,
	open SourceOpener,
	audit *AuditService,
	cache ports.QueryCache,
	metrics ports.MetricsRecorder,
) *IngestService {
	return &IngestService{
		audit:    audit,
		cache:    cache,
		ingestor: ingestor,
		metrics:  metricsOrNop(metrics),
		open:     open,
	}
}

// BulkLoad inserts or replaces every sample in the file at path. Re-running
// it on the same file leaves the store unchanged.
func (s *IngestService) BulkLoad(ctx context.Context, path string, opts IngestOptions) (domain.IngestSummary, error) {
	return s.ingestFile(ctx, path, domain.IngestReplace, opts)
}

// IncrementalAppend adds the samples and counts of the file at path that are
// not already stored, leaving existing rows untouched
func (s *IngestService) IncrementalAppend(ctx context.Context, path string, opts IngestOptions) (domain.IngestSummary, error) {
	return s.ingestFile(ctx, path, domain.IngestIgnore, opts)
}

func (s *IngestService) ingestFile(ctx context.Context, path string, mode domain.IngestMode, opts IngestOptions) (domain.IngestSummary, error) {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = domain.DefaultChunkSize
	}

	src, err := s.open(path, opts.ChunkSize)
	if err != nil {
		return domain.IngestSummary{Mode: mode, SourceName: path}, err
	}
	defer src.Close()

	return s.Ingest(ctx, src, mode, opts)
}

// Ingest drains src, committing one transaction per chunk. Row-level problems
// are counted in the summary and never abort the load; a failed chunk
// transaction stops it, leaving earlier chunks committed.
func (s *IngestService) Ingest(ctx context.Context, src ports.RecordSource, mode domain.IngestMode, opts IngestOptions) (domain.IngestSummary, error) {
	start := time.Now()
	summary := domain.IngestSummary{Mode: mode, SourceName: src.Name()}

	opType := domain.OpLoadCSVData
	if mode == domain.IngestIgnore {
		opType = domain.OpAppendCSVData
	}

	logging.Logger.Info("Ingestion started", "source", src.Name(), "mode", mode, "chunk_size", opts.ChunkSize)

	warn := func(msg string) {
		summary.Warnings++
		logging.Logger.Warn("Ingestion warning", "source", src.Name(), "warning", msg)
		if opts.OnWarning != nil {
			opts.OnWarning(msg)
		}
	}

	for {
		chunk, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			summary.Duration = time.Since(start)
			observe(s.metrics, string(opType), start, err)
			return summary, fmt.Errorf("failed to read %s: %w", src.Name(), err)
		}

		summary.RowsProcessed += len(chunk.Rows) + chunk.MalformedRows
		summary.RowsWithErrors += chunk.MalformedRows
		if chunk.MalformedRows > 0 {
			warn(fmt.Sprintf("%d malformed rows skipped", chunk.MalformedRows))
		}

		records := make([]domain.SampleRecord, 0, len(chunk.Rows))
		for _, raw := range chunk.Rows {
			rec, err := domain.ParseSampleRecord(raw)
			if err != nil {
				if mode == domain.IngestReplace {
					summary.RowsSkipped++
					warn("row skipped: " + err.Error())
				} else {
					summary.RowsWithErrors++
					warn("row rejected: " + err.Error())
				}
				continue
			}
			for _, w := range rec.Warnings {
				warn(w)
			}
			records = append(records, rec)
		}

		if len(records) == 0 {
			summary.Chunks++
		} else {
			res, err := s.ingestor.IngestChunk(ctx, mode, records)
			if err != nil {
				summary.Duration = time.Since(start)
				observe(s.metrics, string(opType), start, err)
				logging.Logger.Error("Chunk failed, stopping ingestion",
					"source", src.Name(),
					"chunk", summary.Chunks+1,
					"error", err)
				return summary, err
			}
			summary.Add(res)
			if err := s.cache.Invalidate(ctx); err != nil {
				logging.Logger.Warn("Failed to invalidate query cache", "error", err)
			}
		}

		logging.Logger.Debug("Chunk committed", "chunk", summary.Chunks, "rows_processed", summary.RowsProcessed)
		if opts.OnProgress != nil {
			opts.OnProgress(summary.RowsProcessed)
		}
	}

	summary.Duration = time.Since(start)
	if summary.RowsProcessed == 0 {
		observe(s.metrics, string(opType), start, domain.ErrEmptySource)
		return summary, fmt.Errorf("%s: %w", src.Name(), domain.ErrEmptySource)
	}
	observe(s.metrics, string(opType), start, nil)
	s.recordRows(summary)

	logging.Logger.Info("Ingestion finished",
		"source", summary.SourceName,
		"mode", mode,
		"rows_processed", summary.RowsProcessed,
		"samples_added", summary.SamplesAdded,
		"samples_replaced", summary.SamplesReplaced,
		"samples_skipped_existing", summary.SamplesSkippedExisting,
		"rows_with_errors", summary.RowsWithErrors,
		"duration", summary.Duration)

	return summary, s.audit.LogOperation(ctx, opType, nil, summary)
}

func (s *IngestService) recordRows(summary domain.IngestSummary) {
	mode := string(summary.Mode)
	s.metrics.RecordIngestRows(mode, "added", summary.SamplesAdded)
	s.metrics.RecordIngestRows(mode, "replaced", summary.SamplesReplaced)
	s.metrics.RecordIngestRows(mode, "skipped", summary.SamplesSkippedExisting+summary.RowsSkipped)
	s.metrics.RecordIngestRows(mode, "error", summary.RowsWithErrors)
}
