package domain

import "time"

// OperationType identifies an audited store mutation
type OperationType string

const (
	OpAddSample        OperationType = "add_sample"
	OpAppendCSVData    OperationType = "append_csv_data"
	OpCreateCheckpoint OperationType = "create_checkpoint"
	OpInitStore        OperationType = "init_store"
	OpLoadCSVData      OperationType = "load_csv_data"
	OpRemoveSample     OperationType = "remove_sample"
	OpRevertCheckpoint OperationType = "revert_checkpoint"
)

// OperationLogEntry is one append-only audit row.
// Details holds the decoded JSON payload when it parses, otherwise the raw text.
type OperationLogEntry struct {
	Details       any
	ID            int64
	OperationType OperationType
	SampleID      *string
	Timestamp     time.Time
}
