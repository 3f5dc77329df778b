package services

import (
	"context"
	"fmt"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/ports"
)

// StoreService prepares the store schema
type StoreService struct {
	audit  *AuditService
	cache  ports.QueryCache
	schema ports.SchemaManager
	store  ports.StoreFile
}

// NewStoreService creates a new StoreService
func NewStoreService(
	schema ports.SchemaManager,
	store ports.StoreFile,
	audit *AuditService,
	cache ports.QueryCache,
) *StoreService {
	return &StoreService{
		audit:  audit,
		cache:  cache,
		schema: schema,
		store:  store,
	}
}

// Bootstrap initializes a freshly created store, or creates any missing
// tables of an existing one without touching its data
func (s *StoreService) Bootstrap(ctx context.Context, existed bool) error {
	if !existed {
		return s.Initialize(ctx)
	}
	if err := s.schema.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Initialize drops and recreates every table. All stored data is lost.
func (s *StoreService) Initialize(ctx context.Context) error {
	if err := s.schema.InitStore(ctx); err != nil {
		logging.Logger.Error("Failed to initialize store", "path", s.store.Path(), "error", err)
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logging.Logger.Warn("Failed to invalidate query cache", "error", err)
	}

	logging.Logger.Info("Store initialized", "path", s.store.Path())
	return s.audit.LogOperation(ctx, domain.OpInitStore, nil, map[string]any{"path": s.store.Path()})
}

// Path returns the store file path
func (s *StoreService) Path() string {
	return s.store.Path()
}
