package ports

import "context"

// RawChunk is a bounded batch of source records keyed by column name
type RawChunk struct {
	// MalformedRows counts lines the reader could not parse into a record
	MalformedRows int
	Rows          []map[string]string
}

// RecordSource streams raw tabular records in chunks.
// Next returns io.EOF after the last chunk.
type RecordSource interface {
	Close() error
	Columns() []string
	Name() string
	Next(ctx context.Context) (RawChunk, error)
}
