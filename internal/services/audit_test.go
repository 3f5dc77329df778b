package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cytodash/internal/domain"
	portsmocks "cytodash/internal/ports/mocks"
)

func TestLogOperation_EncodesDetails(t *testing.T) {
	auditLog := portsmocks.NewMockAuditLog(t)
	id := "s1"
	auditLog.EXPECT().
		AppendOperation(mock.Anything, domain.OpRemoveSample, &id, `{"cell_counts_removed":5}`).
		Return(nil)

	svc := NewAuditService(auditLog)
	err := svc.LogOperation(context.Background(), domain.OpRemoveSample, &id, map[string]int{"cell_counts_removed": 5})
	require.NoError(t, err)
}

func TestLogOperation_FallsBackToText(t *testing.T) {
	auditLog := portsmocks.NewMockAuditLog(t)
	auditLog.EXPECT().
		AppendOperation(mock.Anything, domain.OpInitStore, (*string)(nil), "map[bad:NaN]").
		Return(nil)

	svc := NewAuditService(auditLog)
	err := svc.LogOperation(context.Background(), domain.OpInitStore, nil, map[string]float64{"bad": math.NaN()})
	require.NoError(t, err)
}

func TestLogOperation_NilDetails(t *testing.T) {
	auditLog := portsmocks.NewMockAuditLog(t)
	auditLog.EXPECT().AppendOperation(mock.Anything, domain.OpInitStore, (*string)(nil), "").Return(nil)

	require.NoError(t, NewAuditService(auditLog).LogOperation(context.Background(), domain.OpInitStore, nil, nil))
}

func TestLogOperation_WriteFailure(t *testing.T) {
	auditLog := portsmocks.NewMockAuditLog(t)
	auditLog.EXPECT().AppendOperation(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("readonly database"))

	err := NewAuditService(auditLog).LogOperation(context.Background(), domain.OpInitStore, nil, nil)
	assert.ErrorIs(t, err, domain.ErrAuditWrite)
}

func TestOperationLog_DecodesDetails(t *testing.T) {
	auditLog := portsmocks.NewMockAuditLog(t)
	auditLog.EXPECT().ListOperations(mock.Anything, DefaultOperationLogLimit).Return([]domain.OperationLogEntry{
		{ID: 3, OperationType: domain.OpLoadCSVData, Details: `{"rows_processed":10}`, Timestamp: time.Now()},
		{ID: 2, OperationType: domain.OpAddSample, Details: "not json", Timestamp: time.Now()},
		{ID: 1, OperationType: domain.OpInitStore, Timestamp: time.Now()},
	}, nil)

	entries, err := NewAuditService(auditLog).OperationLog(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, map[string]any{"rows_processed": float64(10)}, entries[0].Details)
	assert.Equal(t, "not json", entries[1].Details)
	assert.Nil(t, entries[2].Details)
}

func TestOperationLog_AfterReopen(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.repo.Release())
	require.NoError(t, env.repo.Reopen())

	entries, err := env.audit.OperationLog(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
