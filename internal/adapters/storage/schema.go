package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"cytodash/internal/logging"
)

const (
	createSamplesTable = `
		CREATE TABLE %s samples (
			sample_id TEXT PRIMARY KEY,
			project TEXT,
			subject TEXT,
			condition TEXT,
			age INTEGER,
			sex TEXT,
			treatment TEXT,
			response TEXT,
			sample_type TEXT,
			time_from_treatment_start INTEGER
		)`

	createCellCountsTable = `
		CREATE TABLE %s cell_counts (
			id TEXT PRIMARY KEY,
			sample_id TEXT NOT NULL,
			population TEXT NOT NULL,
			count INTEGER CHECK (count IS NULL OR count >= 0),
			FOREIGN KEY (sample_id) REFERENCES samples(sample_id) ON DELETE CASCADE
		)`

	createOperationLogTable = `
		CREATE TABLE %s operation_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			operation_type TEXT NOT NULL,
			sample_id TEXT,
			details TEXT
		)`
)

var indexStatements = []string{
	"CREATE INDEX %s idx_samples_sample_id ON samples(sample_id)",
	"CREATE INDEX %s idx_samples_time_from_treatment_start ON samples(time_from_treatment_start)",
	"CREATE INDEX %s idx_cell_counts_sample_id ON cell_counts(sample_id)",
	"CREATE UNIQUE INDEX %s idx_cell_counts_sample_population ON cell_counts(sample_id, population)",
}

// schemaStatements returns the DDL for every table and index
func schemaStatements(ifNotExists bool) []string {
	guard := ""
	if ifNotExists {
		guard = "IF NOT EXISTS"
	}
	stmts := []string{
		fmt.Sprintf(createSamplesTable, guard),
		fmt.Sprintf(createCellCountsTable, guard),
		fmt.Sprintf(createOperationLogTable, guard),
	}
	for _, idx := range indexStatements {
		stmts = append(stmts, fmt.Sprintf(idx, guard))
	}
	return stmts
}

// InitStore implements SchemaManager.InitStore
func (r *SQLiteRepository) InitStore(ctx context.Context) error {
	db, err := r.handle()
	if err != nil {
		return err
	}

	logging.Logger.Info("Recreating store schema", "path", r.path)

	err = withRetry(func() error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, table := range []string{"cell_counts", "samples", "operation_log"} {
				if err := tx.Exec("DROP TABLE IF EXISTS " + table).Error; err != nil {
					return fmt.Errorf("failed to drop %s table: %w", table, err)
				}
			}
			for _, stmt := range schemaStatements(false) {
				if err := tx.Exec(stmt).Error; err != nil {
					return fmt.Errorf("failed to create schema: %w", err)
				}
			}
			return nil
		})
	}, 3)
	if err != nil {
		logging.Logger.Error("Failed to recreate store schema", "error", err)
		return err
	}

	logging.Logger.Info("Store schema created", "path", r.path)
	return nil
}

// EnsureSchema implements SchemaManager.EnsureSchema
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	db, err := r.handle()
	if err != nil {
		return err
	}

	return withRetry(func() error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, stmt := range schemaStatements(true) {
				if err := tx.Exec(stmt).Error; err != nil {
					return fmt.Errorf("failed to ensure schema: %w", err)
				}
			}
			return nil
		})
	}, 3)
}
