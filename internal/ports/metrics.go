package ports

import "time"

// MetricsRecorder receives service-level measurements
type MetricsRecorder interface {
	RecordCacheLookup(query string, hit bool)
	RecordCheckpoint(action, status string)
	RecordIngestRows(mode, outcome string, n int)
	RecordOperation(operation, status string, elapsed time.Duration)
}
