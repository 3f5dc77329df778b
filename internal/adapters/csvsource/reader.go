package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/ports"
)

// Reader streams a CSV file in fixed-size chunks of header-keyed records
type Reader struct {
	chunkSize int
	closer    io.Closer
	csv       *csv.Reader
	done      bool
	header    []string
	line      int
	name      string
}

// Verify interface compliance at compile time
var _ ports.RecordSource = (*Reader)(nil)

// Open opens a CSV file. It returns domain.ErrEmptySource when the file has no header row.
func Open(path string, chunkSize int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	r, err := NewReader(filepath.Base(path), f, chunkSize)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader wraps an io.Reader and consumes its header row
func NewReader(name string, src io.Reader, chunkSize int) (*Reader, error) {
	if chunkSize <= 0 {
		chunkSize = domain.DefaultChunkSize
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptySource, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}

	for i, col := range header {
		col = strings.TrimSpace(col)
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		header[i] = col
	}

	logging.Logger.Debug("CSV source opened", "name", name, "columns", header, "chunk_size", chunkSize)

	return &Reader{
		chunkSize: chunkSize,
		csv:       cr,
		header:    header,
		line:      1,
		name:      name,
	}, nil
}

// Name implements RecordSource.Name
func (r *Reader) Name() string {
	return r.name
}

// Columns implements RecordSource.Columns
func (r *Reader) Columns() []string {
	return append([]string(nil), r.header...)
}

// Next implements RecordSource.Next
func (r *Reader) Next(ctx context.Context) (ports.RawChunk, error) {
	var chunk ports.RawChunk
	if r.done {
		return chunk, io.EOF
	}

	for len(chunk.Rows) < r.chunkSize {
		if err := ctx.Err(); err != nil {
			return chunk, err
		}

		fields, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			r.done = true
			break
		}
		r.line++

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			logging.Logger.Warn("Skipping malformed CSV line", "name", r.name, "line", parseErr.Line, "error", err)
			chunk.MalformedRows++
			continue
		}
		if err != nil {
			return chunk, fmt.Errorf("failed to read %s line %d: %w", r.name, r.line, err)
		}

		chunk.Rows = append(chunk.Rows, r.record(fields))
	}

	if len(chunk.Rows) == 0 && chunk.MalformedRows == 0 {
		return chunk, io.EOF
	}
	return chunk, nil
}

// record maps fields onto the header. Short rows yield blank values,
// extra fields beyond the header are dropped.
func (r *Reader) record(fields []string) map[string]string {
	rec := make(map[string]string, len(r.header))
	for i, col := range r.header {
		if col == "" {
			continue
		}
		if i < len(fields) {
			rec[col] = fields[i]
		} else {
			rec[col] = ""
		}
	}
	return rec
}

// Close implements RecordSource.Close
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
