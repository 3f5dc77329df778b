package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/ports"
	"cytodash/internal/stats"
)

// AnalysisService derives descriptive statistics from query results
type AnalysisService struct {
	metrics ports.MetricsRecorder
	queries *QueryService
}

// NewAnalysisService creates a new AnalysisService
func NewAnalysisService(queries *QueryService, metrics ports.MetricsRecorder) *AnalysisService {
	return &AnalysisService{
		metrics: metricsOrNop(metrics),
		queries: queries,
	}
}

// FrequencyTable returns each sample's population counts with their
// percentage of the sample total
func (s *AnalysisService) FrequencyTable(ctx context.Context) ([]domain.FrequencyRow, error) {
	source, err := s.queries.FrequencySource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load frequency source: %w", err)
	}

	rows := make([]domain.FrequencyRow, 0, len(source))
	for _, r := range source {
		rows = append(rows, toFrequencyRow(r))
	}
	return rows, nil
}

func toFrequencyRow(r domain.FrequencySourceRow) domain.FrequencyRow {
	count := 0
	if r.Count != nil {
		count = *r.Count
	}
	return domain.FrequencyRow{
		Count:      count,
		Percentage: domain.Percentage(count, r.TotalCount),
		Population: r.Population,
		SampleID:   r.SampleID,
		TotalCount: r.TotalCount,
	}
}

// TreatmentResponse compares responder and non-responder relative
// frequencies per population within the configured cohort
func (s *AnalysisService) TreatmentResponse(ctx context.Context) (domain.TreatmentResponseResult, error) {
	start := time.Now()
	result := domain.TreatmentResponseResult{Cohort: s.queries.Cohort()}

	source, err := s.queries.TreatmentResponseSource(ctx)
	if err != nil {
		observe(s.metrics, "treatment_response", start, err)
		return result, fmt.Errorf("failed to load treatment response source: %w", err)
	}

	result.Rows = make([]domain.ResponseFrequencyRow, 0, len(source))
	var populations []string
	for _, r := range source {
		result.Rows = append(result.Rows, domain.ResponseFrequencyRow{
			FrequencyRow: toFrequencyRow(r.FrequencySourceRow),
			Response:     derefOr(r.Response, ""),
		})
		populations = append(populations, r.Population)
	}

	for _, pop := range domain.OrderPopulations(populations) {
		result.Comparisons = append(result.Comparisons, comparePopulation(pop, result.Rows))
	}

	observe(s.metrics, "treatment_response", start, nil)
	return result, nil
}

// comparePopulation runs the responder test for one population. The test is
// only applicable when each group has at least two observations.
func comparePopulation(population string, rows []domain.ResponseFrequencyRow) domain.PopulationComparison {
	var responders, nonResponders []float64
	for _, r := range rows {
		if r.Population != population {
			continue
		}
		switch r.Response {
		case domain.ResponseResponder:
			responders = append(responders, r.Percentage)
		case domain.ResponseNonResponder:
			nonResponders = append(nonResponders, r.Percentage)
		}
	}

	cmp := domain.PopulationComparison{
		MeanNonResponders: domain.Round(stats.Mean(nonResponders), 2),
		MeanResponders:    domain.Round(stats.Mean(responders), 2),
		NonResponders:     len(nonResponders),
		Population:        population,
		Responders:        len(responders),
	}

	res, err := stats.StudentTTest(responders, nonResponders)
	if err != nil {
		if !errors.Is(err, stats.ErrTooFewObservations) {
			logging.Logger.Info("Responder comparison not applicable", "population", population, "reason", err)
		}
		return cmp
	}

	cmp.Applicable = true
	cmp.TStatistic = domain.Round(res.TStatistic, 3)
	cmp.PValue = domain.Round(res.PValue, 3)
	cmp.Significant = res.PValue < domain.SignificanceLevel
	return cmp
}

// BaselineSummary counts the cohort's baseline samples by project, response and sex
func (s *AnalysisService) BaselineSummary(ctx context.Context, includeTreatment bool) (domain.BaselineSummary, error) {
	rows, err := s.queries.BaselineSource(ctx, includeTreatment)
	if err != nil {
		return domain.BaselineSummary{}, fmt.Errorf("failed to load baseline source: %w", err)
	}
	return domain.SummarizeBaseline(rows, includeTreatment), nil
}

// Report computes every analysis section concurrently
func (s *AnalysisService) Report(ctx context.Context) (domain.Report, error) {
	start := time.Now()
	var report domain.Report

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.FrequencyTable(gctx)
		report.Frequencies = rows
		return err
	})
	g.Go(func() error {
		tr, err := s.TreatmentResponse(gctx)
		report.TreatmentResponse = tr
		return err
	})
	g.Go(func() error {
		b, err := s.BaselineSummary(gctx, false)
		report.Baseline = b
		return err
	})
	g.Go(func() error {
		b, err := s.BaselineSummary(gctx, true)
		report.CustomBaseline = b
		return err
	})

	err := g.Wait()
	observe(s.metrics, "report", start, err)
	if err != nil {
		return domain.Report{}, err
	}

	logging.Logger.Info("Report generated",
		"frequencies", len(report.Frequencies),
		"comparisons", len(report.TreatmentResponse.Comparisons),
		"duration", time.Since(start))
	return report, nil
}
