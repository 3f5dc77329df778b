package domain

import "time"

// IngestMode selects the conflict rule applied when loading a source
type IngestMode string

const (
	// IngestReplace overwrites existing samples and counts (authoritative reload)
	IngestReplace IngestMode = "replace"
	// IngestIgnore leaves existing samples and counts untouched (additive merge)
	IngestIgnore IngestMode = "ignore"
)

// DefaultChunkSize is the number of source rows committed per transaction
const DefaultChunkSize = 1000

// ChunkResult reports what a single committed chunk changed
type ChunkResult struct {
	CellCountsAdded        int
	RowsWithErrors         int
	SamplesAdded           int
	SamplesReplaced        int
	SamplesSkippedExisting int
}

// IngestSummary is the outcome of a bulk load or incremental append
type IngestSummary struct {
	CellCountsAdded        int           `json:"cell_counts_added" yaml:"cell_counts_added"`
	Chunks                 int           `json:"chunks" yaml:"chunks"`
	Duration               time.Duration `json:"-" yaml:"-"`
	Mode                   IngestMode    `json:"mode" yaml:"mode"`
	RowsProcessed          int           `json:"rows_processed" yaml:"rows_processed"`
	RowsSkipped            int           `json:"rows_skipped" yaml:"rows_skipped"`
	RowsWithErrors         int           `json:"rows_with_errors" yaml:"rows_with_errors"`
	SamplesAdded           int           `json:"samples_added" yaml:"samples_added"`
	SamplesReplaced        int           `json:"samples_replaced" yaml:"samples_replaced"`
	SamplesSkippedExisting int           `json:"samples_skipped_existing" yaml:"samples_skipped_existing"`
	SourceName             string        `json:"file_name" yaml:"file_name"`
	Warnings               int           `json:"warnings" yaml:"warnings"`
}

// Add folds a chunk result into the summary
func (s *IngestSummary) Add(c ChunkResult) {
	s.CellCountsAdded += c.CellCountsAdded
	s.RowsWithErrors += c.RowsWithErrors
	s.SamplesAdded += c.SamplesAdded
	s.SamplesReplaced += c.SamplesReplaced
	s.SamplesSkippedExisting += c.SamplesSkippedExisting
	s.Chunks++
}
