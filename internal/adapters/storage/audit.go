package storage

import (
	"context"
	"fmt"
	"time"

	"cytodash/internal/domain"
)

// AppendOperation implements AuditLog.AppendOperation
func (r *SQLiteRepository) AppendOperation(ctx context.Context, opType domain.OperationType, sampleID *string, details string) error {
	db, err := r.handle()
	if err != nil {
		return err
	}

	model := OperationLogModel{
		OperationType: string(opType),
		SampleID:      sampleID,
		Timestamp:     time.Now().Format(time.RFC3339Nano),
	}
	if details != "" {
		model.Details = &details
	}

	return withRetry(func() error {
		if err := db.WithContext(ctx).Create(&model).Error; err != nil {
			return fmt.Errorf("failed to append operation log: %w", err)
		}
		return nil
	}, 3)
}

// ListOperations implements AuditLog.ListOperations.
// A store without an operation_log table yields an empty result.
func (r *SQLiteRepository) ListOperations(ctx context.Context, limit int) ([]domain.OperationLogEntry, error) {
	exists, err := r.hasTable(ctx, OperationLogModel{}.TableName())
	if err != nil {
		return nil, err
	}
	if !exists {
		return []domain.OperationLogEntry{}, nil
	}

	db, err := r.handle()
	if err != nil {
		return nil, err
	}

	var models []OperationLogModel
	err = withRetry(func() error {
		q := db.WithContext(ctx).Order("id DESC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q.Find(&models).Error
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to read operation log: %w", err)
	}

	result := make([]domain.OperationLogEntry, len(models))
	for i, m := range models {
		result[i] = operationLogModelToDomain(m)
	}
	return result, nil
}
