package ports

import "context"

// QueryCache stores encoded query results keyed by query identity and store version
type QueryCache interface {
	// Get returns the cached payload and true on a hit
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	// Invalidate drops every entry
	Invalidate(ctx context.Context) error
	Close() error
}
