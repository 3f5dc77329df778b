package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/ports"
)

// Query identities used in cache keys and metrics labels
const (
	queryAllSampleIDs      = "all_sample_ids"
	queryBaseline          = "baseline"
	queryDistinct          = "distinct"
	queryFilteredView      = "filtered_view"
	queryFrequency         = "frequency"
	queryTreatmentResponse = "treatment_response"
)

// QueryService serves read-only views of the store through a read-through cache
type QueryService struct {
	cache   ports.QueryCache
	cohort  domain.Cohort
	metrics ports.MetricsRecorder
	reader  ports.QueryReader
	store   ports.StoreFile
}

// NewQueryService creates a new QueryService. store is used to derive the
// store version part of cache keys.
func NewQueryService(
	reader ports.QueryReader,
	store ports.StoreFile,
	cache ports.QueryCache,
	cohort domain.Cohort,
	metrics ports.MetricsRecorder,
) *QueryService {
	return &QueryService{
		cache:   cache,
		cohort:  cohort,
		metrics: metricsOrNop(metrics),
		reader:  reader,
		store:   store,
	}
}

// Cohort returns the cohort used by the treatment-response and baseline queries
func (s *QueryService) Cohort() domain.Cohort {
	return s.cohort
}

// Invalidate drops every cached result
func (s *QueryService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

// storeVersion identifies the current contents of the store file
func (s *QueryService) storeVersion() string {
	info, err := os.Stat(s.store.Path())
	if err != nil {
		return "unknown"
	}
	return fmt.Sprintf("%d-%d", info.ModTime().UnixNano(), info.Size())
}

// cached returns the value stored under (query, args, store version) or
// loads, stores and returns it. Errors are never cached.
func cached[T any](ctx context.Context, s *QueryService, query string, args string, load func() (T, error)) (T, error) {
	key := strings.Join([]string{query, args, s.storeVersion()}, ":")

	if b, ok := s.cache.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			s.metrics.RecordCacheLookup(query, true)
			return v, nil
		}
		logging.Logger.Warn("Discarding undecodable cache entry", "query", query)
	}
	s.metrics.RecordCacheLookup(query, false)

	v, err := load()
	if err != nil {
		return v, err
	}
	if b, err := json.Marshal(v); err == nil {
		s.cache.Set(ctx, key, b)
	}
	return v, nil
}

// DistinctValues returns the sorted non-blank values of a sample field
func (s *QueryService) DistinctValues(ctx context.Context, field string) ([]string, error) {
	if !domain.IsSampleField(field) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownField, field)
	}
	return cached(ctx, s, queryDistinct, field, func() ([]string, error) {
		return s.reader.DistinctValues(ctx, field)
	})
}

// FilteredView returns one wide row per sample matching filter
func (s *QueryService) FilteredView(ctx context.Context, filter domain.SampleFilter) ([]domain.WideRow, error) {
	return cached(ctx, s, queryFilteredView, filter.Key(), func() ([]domain.WideRow, error) {
		rows, err := s.reader.LongRows(ctx, filter)
		if err != nil {
			return nil, err
		}
		wide := domain.PivotWide(rows)
		logging.Logger.Debug("Filtered view built", "long_rows", len(rows), "samples", len(wide))
		return wide, nil
	})
}

// AllSamplesView returns the unfiltered wide view
func (s *QueryService) AllSamplesView(ctx context.Context) ([]domain.WideRow, error) {
	return s.FilteredView(ctx, domain.SampleFilter{})
}

// AllSampleIDs returns every non-blank sample id in order
func (s *QueryService) AllSampleIDs(ctx context.Context) ([]string, error) {
	return cached(ctx, s, queryAllSampleIDs, "", func() ([]string, error) {
		return s.reader.AllSampleIDs(ctx)
	})
}

// FrequencySource returns every (sample, population) count with its sample total
func (s *QueryService) FrequencySource(ctx context.Context) ([]domain.FrequencySourceRow, error) {
	return cached(ctx, s, queryFrequency, "", func() ([]domain.FrequencySourceRow, error) {
		return s.reader.FrequencySource(ctx)
	})
}

// TreatmentResponseSource returns the frequency rows of the configured cohort
func (s *QueryService) TreatmentResponseSource(ctx context.Context) ([]domain.TreatmentResponseRow, error) {
	return cached(ctx, s, queryTreatmentResponse, s.cohort.Key(), func() ([]domain.TreatmentResponseRow, error) {
		return s.reader.TreatmentResponseSource(ctx, s.cohort)
	})
}

// BaselineSource returns the cohort's samples taken at treatment start.
// includeTreatment additionally restricts the cohort treatment.
func (s *QueryService) BaselineSource(ctx context.Context, includeTreatment bool) ([]domain.BaselineRow, error) {
	args := fmt.Sprintf("%s|%t", s.cohort.Key(), includeTreatment)
	return cached(ctx, s, queryBaseline, args, func() ([]domain.BaselineRow, error) {
		return s.reader.BaselineSource(ctx, s.cohort, includeTreatment)
	})
}
