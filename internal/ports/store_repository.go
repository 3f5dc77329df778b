package ports

import (
	"context"

	"cytodash/internal/domain"
)

// SchemaManager creates the on-disk schema
type SchemaManager interface {
	// EnsureSchema creates missing tables and indexes without touching data
	EnsureSchema(ctx context.Context) error
	// InitStore drops and recreates every table and index in one transaction
	InitStore(ctx context.Context) error
}

// SampleReader reads individual samples
type SampleReader interface {
	CountSamples(ctx context.Context) (int64, error)
	GetSample(ctx context.Context, sampleID string) (*domain.WideRow, error)
}

// SampleWriter adds and removes single samples transactionally
type SampleWriter interface {
	// AddSample inserts the sample and its counts; returns domain.ErrSampleExists on collision
	AddSample(ctx context.Context, record domain.SampleRecord) error
	// RemoveSample deletes counts then the sample; returns domain.ErrSampleNotFound if absent
	RemoveSample(ctx context.Context, sampleID string) (int64, error)
}

// ChunkIngestor writes one chunk of validated records in a single transaction
type ChunkIngestor interface {
	IngestChunk(ctx context.Context, mode domain.IngestMode, records []domain.SampleRecord) (domain.ChunkResult, error)
}

// QueryReader serves the read-only queries behind the wide view and reports
type QueryReader interface {
	AllSampleIDs(ctx context.Context) ([]string, error)
	BaselineSource(ctx context.Context, cohort domain.Cohort, includeTreatment bool) ([]domain.BaselineRow, error)
	DistinctValues(ctx context.Context, field string) ([]string, error)
	FrequencySource(ctx context.Context) ([]domain.FrequencySourceRow, error)
	LongRows(ctx context.Context, filter domain.SampleFilter) ([]domain.LongRow, error)
	TreatmentResponseSource(ctx context.Context, cohort domain.Cohort) ([]domain.TreatmentResponseRow, error)
}

// AuditLog appends and reads operation log entries
type AuditLog interface {
	AppendOperation(ctx context.Context, opType domain.OperationType, sampleID *string, details string) error
	ListOperations(ctx context.Context, limit int) ([]domain.OperationLogEntry, error)
}

// StoreFile exposes the file behind the store for checkpointing
type StoreFile interface {
	Path() string
	// Release closes the handle so the file can be replaced
	Release() error
	// Reopen opens the handle again after Release
	Reopen() error
}

// StoreRepository is the composite interface
type StoreRepository interface {
	SchemaManager
	SampleReader
	SampleWriter
	ChunkIngestor
	QueryReader
	AuditLog
	StoreFile
	Close() error
}
