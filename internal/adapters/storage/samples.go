package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
)

// CountSamples implements SampleReader.CountSamples
func (r *SQLiteRepository) CountSamples(ctx context.Context) (int64, error) {
	db, err := r.handle()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.WithContext(ctx).Model(&SampleModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	return n, nil
}

// GetSample implements SampleReader.GetSample
func (r *SQLiteRepository) GetSample(ctx context.Context, sampleID string) (*domain.WideRow, error) {
	db, err := r.handle()
	if err != nil {
		return nil, err
	}

	var rows []longRowModel
	err = withRetry(func() error {
		return longRowsQuery(db.WithContext(ctx)).
			Where("s.sample_id = ?", sampleID).
			Order("c.population").
			Scan(&rows).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to get sample %s: %w", sampleID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrSampleNotFound, sampleID)
	}

	long := make([]domain.LongRow, len(rows))
	for i, m := range rows {
		long[i] = longRowModelToDomain(m)
	}
	wide := domain.PivotWide(long)
	return &wide[0], nil
}

// AddSample implements SampleWriter.AddSample
func (r *SQLiteRepository) AddSample(ctx context.Context, record domain.SampleRecord) error {
	db, err := r.handle()
	if err != nil {
		return err
	}

	err = withRetry(func() error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			model := domainToSampleModel(record.Sample)
			if err := tx.Create(&model).Error; err != nil {
				if isConstraintViolation(err) {
					return fmt.Errorf("%w: %s", domain.ErrSampleExists, record.Sample.SampleID)
				}
				return fmt.Errorf("failed to create sample: %w", err)
			}

			for _, c := range record.CellCounts() {
				c.ID = uuid.New().String()
				countModel := domainToCellCountModel(c)
				if err := tx.Create(&countModel).Error; err != nil {
					return fmt.Errorf("failed to create cell count %s: %w", c.Population, err)
				}
			}
			return nil
		})
	}, 3)
	if err != nil {
		logging.Logger.Debug("Add sample rolled back", "sample_id", record.Sample.SampleID, "error", err)
		return err
	}
	return nil
}

// RemoveSample implements SampleWriter.RemoveSample.
// Returns the number of cell count rows deleted alongside the sample.
func (r *SQLiteRepository) RemoveSample(ctx context.Context, sampleID string) (int64, error) {
	db, err := r.handle()
	if err != nil {
		return 0, err
	}

	var countsDeleted int64
	err = withRetry(func() error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Where("sample_id = ?", sampleID).Delete(&CellCountModel{})
			if res.Error != nil {
				return fmt.Errorf("failed to delete cell counts: %w", res.Error)
			}
			countsDeleted = res.RowsAffected

			res = tx.Where("sample_id = ?", sampleID).Delete(&SampleModel{})
			if res.Error != nil {
				return fmt.Errorf("failed to delete sample: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", domain.ErrSampleNotFound, sampleID)
			}
			return nil
		})
	}, 3)
	if err != nil {
		if !errors.Is(err, domain.ErrSampleNotFound) {
			logging.Logger.Error("Remove sample failed", "sample_id", sampleID, "error", err)
		}
		return 0, err
	}
	return countsDeleted, nil
}
