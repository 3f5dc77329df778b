package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/ports"
)

// SampleStore is the subset of the repository used for single-sample edits
type SampleStore interface {
	ports.SampleReader
	ports.SampleWriter
}

// SampleService adds, removes and reads individual samples
type SampleService struct {
	audit   *AuditService
	cache   ports.QueryCache
	metrics ports.MetricsRecorder
	store   SampleStore
}

// NewSampleService creates a new SampleService
func NewSampleService(
	store SampleStore,
	audit *AuditService,
	cache ports.QueryCache,
	metrics ports.MetricsRecorder,
) *SampleService {
	return &SampleService{
		audit:   audit,
		cache:   cache,
		metrics: metricsOrNop(metrics),
		store:   store,
	}
}

// addSampleDetails is the audit payload for add_sample
type addSampleDetails struct {
	Age                    *int            `json:"age"`
	CellCounts             map[string]*int `json:"cell_counts"`
	Condition              *string         `json:"condition"`
	Project                *string         `json:"project"`
	Response               *string         `json:"response"`
	SampleID               string          `json:"sample_id"`
	SampleType             *string         `json:"sample_type"`
	Sex                    *string         `json:"sex"`
	Subject                *string         `json:"subject"`
	TimeFromTreatmentStart *int            `json:"time_from_treatment_start"`
	Treatment              *string         `json:"treatment"`
	Warnings               []string        `json:"warnings,omitempty"`
}

// AddSample validates req and inserts the sample with its counts in one
// transaction. The returned record carries any validation warnings. An
// error wrapping domain.ErrAuditWrite means the sample was stored but the
// audit entry was not.
func (s *SampleService) AddSample(ctx context.Context, req domain.NewSampleRequest) (domain.SampleRecord, error) {
	start := time.Now()

	record, err := req.Validate()
	if err != nil {
		observe(s.metrics, string(domain.OpAddSample), start, err)
		return domain.SampleRecord{}, err
	}
	for _, w := range record.Warnings {
		logging.Logger.Warn("Sample validation warning", "sample_id", record.Sample.SampleID, "warning", w)
	}

	if err := s.store.AddSample(ctx, record); err != nil {
		logging.Logger.Error("Failed to add sample", "sample_id", record.Sample.SampleID, "error", err)
		observe(s.metrics, string(domain.OpAddSample), start, err)
		return record, err
	}
	observe(s.metrics, string(domain.OpAddSample), start, nil)
	s.invalidate(ctx)

	logging.Logger.Info("Sample added", "sample_id", record.Sample.SampleID, "cell_counts", len(record.Counts))

	sm := record.Sample
	details := addSampleDetails{
		Age:                    sm.Age,
		CellCounts:             record.Counts,
		Condition:              sm.Condition,
		Project:                sm.Project,
		Response:               sm.Response,
		SampleID:               sm.SampleID,
		SampleType:             sm.SampleType,
		Sex:                    sm.Sex,
		Subject:                sm.Subject,
		TimeFromTreatmentStart: sm.TimeFromTreatmentStart,
		Treatment:              sm.Treatment,
		Warnings:               record.Warnings,
	}
	id := sm.SampleID
	return record, s.audit.LogOperation(ctx, domain.OpAddSample, &id, details)
}

// RemoveSample deletes a sample and its counts, returning how many counts
// were removed
func (s *SampleService) RemoveSample(ctx context.Context, sampleID string) (int64, error) {
	start := time.Now()

	id := strings.TrimSpace(sampleID)
	if id == "" {
		return 0, domain.ErrMissingSampleID
	}

	removed, err := s.store.RemoveSample(ctx, id)
	observe(s.metrics, string(domain.OpRemoveSample), start, err)
	if err != nil {
		logging.Logger.Error("Failed to remove sample", "sample_id", id, "error", err)
		return 0, err
	}
	s.invalidate(ctx)

	logging.Logger.Info("Sample removed", "sample_id", id, "cell_counts", removed)

	details := map[string]any{"sample_id": id, "cell_counts_removed": removed}
	return removed, s.audit.LogOperation(ctx, domain.OpRemoveSample, &id, details)
}

// GetSample returns one sample as a wide row
func (s *SampleService) GetSample(ctx context.Context, sampleID string) (*domain.WideRow, error) {
	id := strings.TrimSpace(sampleID)
	if id == "" {
		return nil, domain.ErrMissingSampleID
	}
	row, err := s.store.GetSample(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sample %s: %w", id, err)
	}
	return row, nil
}

// CountSamples returns the number of stored samples
func (s *SampleService) CountSamples(ctx context.Context) (int64, error) {
	return s.store.CountSamples(ctx)
}

func (s *SampleService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logging.Logger.Warn("Failed to invalidate query cache", "error", err)
	}
}
