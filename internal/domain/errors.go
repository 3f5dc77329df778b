package domain

import "errors"

var (
	ErrAuditWrite          = errors.New("operation log write failed")
	ErrCheckpointNotFound  = errors.New("checkpoint not found")
	ErrEmptySource         = errors.New("empty source")
	ErrMissingSampleID     = errors.New("missing or empty sample_id")
	ErrSampleExists        = errors.New("sample already exists")
	ErrSampleNotFound      = errors.New("sample not found")
	ErrStoreNotInitialized = errors.New("store not initialized")
	ErrUnknownField        = errors.New("unknown sample field")
)
