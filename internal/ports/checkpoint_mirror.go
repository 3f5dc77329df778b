package ports

import (
	"context"
	"io"
)

// CheckpointMirror copies checkpoint files to off-host storage
type CheckpointMirror interface {
	Upload(ctx context.Context, name string, body io.Reader, size int64, checksum string) (string, error)
	List(ctx context.Context) ([]string, error)
}
