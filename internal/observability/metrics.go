// Package observability provides prometheus metrics for store operations
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"cytodash/internal/ports"
)

// Status label values
const (
	StatusError   = "error"
	StatusSuccess = "success"
)

// StoreMetrics contains Prometheus metrics for ingestion, queries and checkpoints
type StoreMetrics struct {
	registry *prometheus.Registry

	cacheLookupsTotal *prometheus.CounterVec
	checkpointsTotal  *prometheus.CounterVec
	ingestRowsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationsTotal   *prometheus.CounterVec

	collectors []prometheus.Collector
}

// Verify interface compliance at compile time
var _ ports.MetricsRecorder = (*StoreMetrics)(nil)

// NewStoreMetrics creates and registers store metrics on registry
func NewStoreMetrics(registry *prometheus.Registry) (*StoreMetrics, error) {
	m := &StoreMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register store metrics: %w", err)
	}
	return m, nil
}

func (m *StoreMetrics) initMetrics() {
	m.cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cytodash_query_cache_lookups_total",
			Help: "Query cache lookups",
		},
		[]string{"query", "result"}, // result: hit, miss
	)

	m.checkpointsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cytodash_checkpoints_total",
			Help: "Checkpoint operations",
		},
		[]string{"action", "status"}, // action: create, revert, mirror
	)

	m.ingestRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cytodash_ingest_rows_total",
			Help: "CSV rows processed by ingestion outcome",
		},
		[]string{"mode", "outcome"}, // outcome: added, replaced, skipped, error
	)

	m.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cytodash_operation_duration_seconds",
			Help:    "Time taken by service operations",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{"operation"},
	)

	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cytodash_operations_total",
			Help: "Service operations by status",
		},
		[]string{"operation", "status"},
	)

	m.collectors = []prometheus.Collector{
		m.cacheLookupsTotal,
		m.checkpointsTotal,
		m.ingestRowsTotal,
		m.operationDuration,
		m.operationsTotal,
	}
}

// Describe implements the Collector interface
func (m *StoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *StoreMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordCacheLookup records a query cache hit or miss
func (m *StoreMetrics) RecordCacheLookup(query string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(query, result).Inc()
}

// RecordCheckpoint records a checkpoint action
func (m *StoreMetrics) RecordCheckpoint(action, status string) {
	m.checkpointsTotal.WithLabelValues(action, status).Inc()
}

// RecordIngestRows adds n rows with the given outcome
func (m *StoreMetrics) RecordIngestRows(mode, outcome string, n int) {
	if n <= 0 {
		return
	}
	m.ingestRowsTotal.WithLabelValues(mode, outcome).Add(float64(n))
}

// RecordOperation records the status and duration of a service operation
func (m *StoreMetrics) RecordOperation(operation, status string, elapsed time.Duration) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// WriteTextfile writes the registry in the node_exporter textfile format
func (m *StoreMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
