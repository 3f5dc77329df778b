package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
)

const (
	rowSavePoint = "ingest_row"
	lookupBatch  = 500
)

// rowOutcome is what writing one record changed
type rowOutcome struct {
	cellCountsAdded int
	sampleAdded     bool
	sampleReplaced  bool
}

// IngestChunk implements ChunkIngestor.IngestChunk.
// All records are written in one transaction. A record whose statements fail
// is rolled back to its savepoint and counted as an error without aborting
// the chunk.
func (r *SQLiteRepository) IngestChunk(ctx context.Context, mode domain.IngestMode, records []domain.SampleRecord) (domain.ChunkResult, error) {
	db, err := r.handle()
	if err != nil {
		return domain.ChunkResult{}, err
	}

	var result domain.ChunkResult
	err = withRetry(func() error {
		result = domain.ChunkResult{}
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			existing, err := existingSampleIDs(tx, records)
			if err != nil {
				return err
			}

			for _, rec := range records {
				if err := tx.SavePoint(rowSavePoint).Error; err != nil {
					return fmt.Errorf("failed to create savepoint: %w", err)
				}

				outcome, err := writeRecord(tx, mode, rec, existing)
				if err != nil {
					logging.Logger.Error("Failed to ingest row",
						"sample_id", rec.Sample.SampleID,
						"mode", mode,
						"error", err)
					if rbErr := tx.RollbackTo(rowSavePoint).Error; rbErr != nil {
						return fmt.Errorf("failed to roll back row: %w", rbErr)
					}
					result.RowsWithErrors++
				} else {
					result.CellCountsAdded += outcome.cellCountsAdded
					if outcome.sampleAdded {
						result.SamplesAdded++
					}
					if outcome.sampleReplaced {
						result.SamplesReplaced++
					}
					if !outcome.sampleAdded && !outcome.sampleReplaced {
						result.SamplesSkippedExisting++
					}
				}

				if err := tx.Exec("RELEASE SAVEPOINT " + rowSavePoint).Error; err != nil {
					return fmt.Errorf("failed to release savepoint: %w", err)
				}
			}
			return nil
		})
	}, 3)
	if err != nil {
		return domain.ChunkResult{}, fmt.Errorf("failed to ingest chunk: %w", err)
	}

	return result, nil
}

func writeRecord(tx *gorm.DB, mode domain.IngestMode, rec domain.SampleRecord, existing map[string]bool) (rowOutcome, error) {
	var outcome rowOutcome
	id := rec.Sample.SampleID
	model := domainToSampleModel(rec.Sample)

	switch mode {
	case domain.IngestReplace:
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sample_id"}},
			UpdateAll: true,
		}).Create(&model)
		if res.Error != nil {
			return outcome, fmt.Errorf("failed to upsert sample: %w", res.Error)
		}
		if existing[id] {
			outcome.sampleReplaced = true
		} else {
			outcome.sampleAdded = true
		}

		for _, c := range rec.WithAllKnownPopulations().CellCounts() {
			c.ID = uuid.New().String()
			countModel := domainToCellCountModel(c)
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "sample_id"}, {Name: "population"}},
				DoUpdates: clause.AssignmentColumns([]string{"count"}),
			}).Create(&countModel)
			if res.Error != nil {
				return outcome, fmt.Errorf("failed to upsert cell count %s: %w", c.Population, res.Error)
			}
			outcome.cellCountsAdded += int(res.RowsAffected)
		}

	case domain.IngestIgnore:
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
		if res.Error != nil {
			return outcome, fmt.Errorf("failed to insert sample: %w", res.Error)
		}
		outcome.sampleAdded = res.RowsAffected > 0

		for _, c := range rec.CellCounts() {
			c.ID = uuid.New().String()
			countModel := domainToCellCountModel(c)
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&countModel)
			if res.Error != nil {
				return outcome, fmt.Errorf("failed to insert cell count %s: %w", c.Population, res.Error)
			}
			outcome.cellCountsAdded += int(res.RowsAffected)
		}

	default:
		return outcome, fmt.Errorf("unknown ingest mode %q", mode)
	}

	existing[id] = true
	return outcome, nil
}

// existingSampleIDs returns which record ids are already stored
func existingSampleIDs(tx *gorm.DB, records []domain.SampleRecord) (map[string]bool, error) {
	existing := make(map[string]bool, len(records))
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.Sample.SampleID)
	}

	for start := 0; start < len(ids); start += lookupBatch {
		end := min(start+lookupBatch, len(ids))
		var found []string
		if err := tx.Model(&SampleModel{}).
			Where("sample_id IN ?", ids[start:end]).
			Pluck("sample_id", &found).Error; err != nil {
			return nil, fmt.Errorf("failed to look up existing samples: %w", err)
		}
		for _, id := range found {
			existing[id] = true
		}
	}
	return existing, nil
}
