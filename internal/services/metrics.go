package services

import (
	"time"

	"cytodash/internal/ports"
)

// nopMetrics discards measurements when no recorder is configured
type nopMetrics struct{}

func (nopMetrics) RecordCacheLookup(string, bool)                {}
func (nopMetrics) RecordCheckpoint(string, string)               {}
func (nopMetrics) RecordIngestRows(string, string, int)          {}
func (nopMetrics) RecordOperation(string, string, time.Duration) {}

func metricsOrNop(m ports.MetricsRecorder) ports.MetricsRecorder {
	if m == nil {
		return nopMetrics{}
	}
	return m
}

// observe records the outcome of an operation started at start
func observe(m ports.MetricsRecorder, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RecordOperation(operation, status, time.Since(start))
}
