package services

import (
	"context"
	"encoding/json"
	"fmt"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/ports"
)

// DefaultOperationLogLimit is the number of entries returned when no limit is given
const DefaultOperationLogLimit = 50

// AuditService records and reads the operation log
type AuditService struct {
	log ports.AuditLog
}

// NewAuditService creates a new AuditService
func NewAuditService(log ports.AuditLog) *AuditService {
	return &AuditService{log: log}
}

// LogOperation appends an audit entry. Details are stored as JSON, falling
// back to their %v rendering when they cannot be encoded. A failed write is
// logged and returned wrapped in domain.ErrAuditWrite; it never undoes the
// mutation being audited.
func (s *AuditService) LogOperation(
	ctx context.Context,
	opType domain.OperationType,
	sampleID *string,
	details any,
) error {
	encoded := encodeDetails(details)

	if err := s.log.AppendOperation(ctx, opType, sampleID, encoded); err != nil {
		logging.Logger.Error("Failed to write operation log",
			"operation", opType,
			"sample_id", derefOr(sampleID, ""),
			"error", err)
		return fmt.Errorf("%w: %s: %v", domain.ErrAuditWrite, opType, err)
	}

	logging.Logger.Debug("Operation logged", "operation", opType)
	return nil
}

// OperationLog returns the most recent entries first.
// JSON details are decoded; anything else is returned as text.
func (s *AuditService) OperationLog(ctx context.Context, limit int) ([]domain.OperationLogEntry, error) {
	if limit <= 0 {
		limit = DefaultOperationLogLimit
	}

	entries, err := s.log.ListOperations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read operation log: %w", err)
	}

	for i := range entries {
		text, ok := entries[i].Details.(string)
		if !ok {
			continue
		}
		var decoded any
		if err := json.Unmarshal([]byte(text), &decoded); err == nil {
			entries[i].Details = decoded
		}
	}
	return entries, nil
}

func encodeDetails(details any) string {
	if details == nil {
		return ""
	}
	b, err := json.Marshal(details)
	if err != nil {
		return fmt.Sprintf("%v", details)
	}
	return string(b)
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
