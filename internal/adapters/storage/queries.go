package storage

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"cytodash/internal/domain"
)

const longRowColumns = `s.sample_id, s.project, s.subject, s.condition, s.age, s.sex,
	s.treatment, s.response, s.sample_type, s.time_from_treatment_start,
	c.population, c.count`

// longRowsQuery builds the samples LEFT JOIN cell_counts base query
func longRowsQuery(db *gorm.DB) *gorm.DB {
	return db.Table("samples AS s").
		Select(longRowColumns).
		Joins("LEFT JOIN cell_counts AS c ON s.sample_id = c.sample_id")
}

// DistinctValues implements QueryReader.DistinctValues.
// field is checked against the sample field list and never taken from input verbatim.
func (r *SQLiteRepository) DistinctValues(ctx context.Context, field string) ([]string, error) {
	if !domain.IsSampleField(field) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownField, field)
	}
	db, err := r.handle()
	if err != nil {
		return nil, err
	}

	var values []string
	err = withRetry(func() error {
		return db.WithContext(ctx).
			Model(&SampleModel{}).
			Distinct(field).
			Where(fmt.Sprintf("%s IS NOT NULL AND TRIM(%s) != ''", field, field)).
			Order(field).
			Pluck(field, &values).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct %s values: %w", field, err)
	}
	return values, nil
}

// LongRows implements QueryReader.LongRows
func (r *SQLiteRepository) LongRows(ctx context.Context, filter domain.SampleFilter) ([]domain.LongRow, error) {
	db, err := r.handle()
	if err != nil {
		return nil, err
	}

	var rows []longRowModel
	err = withRetry(func() error {
		q := longRowsQuery(db.WithContext(ctx))
		if len(filter.Projects) > 0 {
			q = q.Where("s.project IN ?", filter.Projects)
		}
		if len(filter.Conditions) > 0 {
			q = q.Where("s.condition IN ?", lowerAll(filter.Conditions))
		}
		if len(filter.Treatments) > 0 {
			q = q.Where("s.treatment IN ?", filter.Treatments)
		}
		if len(filter.Responses) > 0 {
			q = q.Where("s.response IN ?", filter.Responses)
		}
		return q.Order("s.sample_id").Order("c.population").Scan(&rows).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}

	result := make([]domain.LongRow, len(rows))
	for i, m := range rows {
		result[i] = longRowModelToDomain(m)
	}
	return result, nil
}

// AllSampleIDs implements QueryReader.AllSampleIDs
func (r *SQLiteRepository) AllSampleIDs(ctx context.Context) ([]string, error) {
	db, err := r.handle()
	if err != nil {
		return nil, err
	}

	var ids []string
	err = withRetry(func() error {
		return db.WithContext(ctx).
			Model(&SampleModel{}).
			Where("sample_id IS NOT NULL AND TRIM(sample_id) != ''").
			Order("sample_id").
			Pluck("sample_id", &ids).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to list sample ids: %w", err)
	}
	return ids, nil
}

// FrequencySource implements QueryReader.FrequencySource
func (r *SQLiteRepository) FrequencySource(ctx context.Context) ([]domain.FrequencySourceRow, error) {
	db, err := r.handle()
	if err != nil {
		return nil, err
	}

	var rows []frequencyRowModel
	err = withRetry(func() error {
		return db.WithContext(ctx).Raw(`
			SELECT s.sample_id, c.population, c.count,
				SUM(c.count) OVER (PARTITION BY s.sample_id) AS total_count
			FROM samples s
			JOIN cell_counts c ON s.sample_id = c.sample_id
			ORDER BY s.sample_id, c.population
		`).Scan(&rows).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to query frequency source: %w", err)
	}

	result := make([]domain.FrequencySourceRow, len(rows))
	for i, m := range rows {
		result[i] = frequencyRowModelToDomain(m)
	}
	return result, nil
}

// TreatmentResponseSource implements QueryReader.TreatmentResponseSource
func (r *SQLiteRepository) TreatmentResponseSource(ctx context.Context, cohort domain.Cohort) ([]domain.TreatmentResponseRow, error) {
	db, err := r.handle()
	if err != nil {
		return nil, err
	}

	var rows []frequencyRowModel
	err = withRetry(func() error {
		return db.WithContext(ctx).Raw(`
			SELECT s.sample_id, s.condition, s.treatment, s.response, s.sample_type,
				c.population, c.count,
				SUM(c.count) OVER (PARTITION BY s.sample_id) AS total_count
			FROM samples s
			JOIN cell_counts c ON s.sample_id = c.sample_id
			WHERE s.condition = ? AND s.treatment = ? AND s.sample_type = ?
			ORDER BY s.sample_id, c.population
		`, strings.ToLower(cohort.Condition), cohort.Treatment, cohort.SampleType).Scan(&rows).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to query treatment response source: %w", err)
	}

	result := make([]domain.TreatmentResponseRow, len(rows))
	for i, m := range rows {
		result[i] = domain.TreatmentResponseRow{
			FrequencySourceRow: frequencyRowModelToDomain(m),
			Condition:          m.Condition,
			Response:           m.Response,
			SampleType:         m.SampleType,
			Treatment:          m.Treatment,
		}
	}
	return result, nil
}

// BaselineSource implements QueryReader.BaselineSource.
// includeTreatment additionally restricts to the cohort treatment.
func (r *SQLiteRepository) BaselineSource(ctx context.Context, cohort domain.Cohort, includeTreatment bool) ([]domain.BaselineRow, error) {
	db, err := r.handle()
	if err != nil {
		return nil, err
	}

	var rows []baselineRowModel
	err = withRetry(func() error {
		q := db.WithContext(ctx).
			Model(&SampleModel{}).
			Select("sample_id, project, subject, response, sex").
			Where("condition = ? AND sample_type = ? AND time_from_treatment_start = 0",
				strings.ToLower(cohort.Condition), cohort.SampleType)
		if includeTreatment {
			q = q.Where("treatment = ?", cohort.Treatment)
		}
		return q.Order("sample_id").Scan(&rows).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to query baseline source: %w", err)
	}

	result := make([]domain.BaselineRow, len(rows))
	for i, m := range rows {
		result[i] = domain.BaselineRow{
			Project:  m.Project,
			Response: m.Response,
			SampleID: m.SampleID,
			Sex:      m.Sex,
			Subject:  m.Subject,
		}
	}
	return result, nil
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}
