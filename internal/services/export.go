package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"cytodash/internal/domain"
	"cytodash/internal/ports"
)

// ExportFormat selects the serialization of an export
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
	FormatYAML ExportFormat = "yaml"
)

// ErrUnsupportedFormat is returned when an export cannot be written in the requested format
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ExportService serializes views and analysis results
type ExportService struct {
	analysis *AnalysisService
	audit    *AuditService
	charts   ports.ChartRenderer
	queries  *QueryService
}

// NewExportService creates a new ExportService. charts may be nil when
// image export is not needed.
func NewExportService(
	queries *QueryService,
	analysis *AnalysisService,
	audit *AuditService,
	charts ports.ChartRenderer,
) *ExportService {
	return &ExportService{
		analysis: analysis,
		audit:    audit,
		charts:   charts,
		queries:  queries,
	}
}

// WideView writes the filtered wide view
func (s *ExportService) WideView(ctx context.Context, w io.Writer, filter domain.SampleFilter, format ExportFormat) error {
	rows, err := s.queries.FilteredView(ctx, filter)
	if err != nil {
		return err
	}

	columns := domain.WideColumns(rows)
	records := make([]map[string]any, len(rows))
	for i, r := range rows {
		records[i] = r.Values()
	}

	switch format {
	case FormatCSV:
		table := make([][]string, len(records))
		for i, rec := range records {
			table[i] = make([]string, len(columns))
			for j, col := range columns {
				table[i][j] = formatCell(rec[col])
			}
		}
		return writeCSV(w, columns, table)
	default:
		return writeStructured(w, records, format)
	}
}

// Frequencies writes the relative frequency table
func (s *ExportService) Frequencies(ctx context.Context, w io.Writer, format ExportFormat) error {
	rows, err := s.analysis.FrequencyTable(ctx)
	if err != nil {
		return err
	}
	if format != FormatCSV {
		return writeStructured(w, rows, format)
	}

	table := make([][]string, len(rows))
	for i, r := range rows {
		table[i] = []string{
			r.SampleID,
			strconv.Itoa(r.TotalCount),
			r.Population,
			strconv.Itoa(r.Count),
			strconv.FormatFloat(r.Percentage, 'f', 2, 64),
		}
	}
	return writeCSV(w, []string{"sample", "total_count", "population", "count", "percentage"}, table)
}

// TreatmentResponse writes the per-population responder comparisons
func (s *ExportService) TreatmentResponse(ctx context.Context, w io.Writer, format ExportFormat) error {
	result, err := s.analysis.TreatmentResponse(ctx)
	if err != nil {
		return err
	}
	if format != FormatCSV {
		return writeStructured(w, result, format)
	}

	table := make([][]string, len(result.Comparisons))
	for i, c := range result.Comparisons {
		t, p, sig := "N/A", "N/A", "N/A"
		if c.Applicable {
			t = strconv.FormatFloat(c.TStatistic, 'f', 3, 64)
			p = strconv.FormatFloat(c.PValue, 'f', 3, 64)
			sig = strconv.FormatBool(c.Significant)
		}
		table[i] = []string{
			c.Population,
			strconv.Itoa(c.Responders),
			strconv.Itoa(c.NonResponders),
			strconv.FormatFloat(c.MeanResponders, 'f', 2, 64),
			strconv.FormatFloat(c.MeanNonResponders, 'f', 2, 64),
			t, p, sig,
		}
	}
	return writeCSV(w, []string{
		"population", "responders", "non_responders", "mean_responders",
		"mean_non_responders", "t_statistic", "p_value", "significant",
	}, table)
}

// TreatmentResponsePlot writes the responder box plot as PNG
func (s *ExportService) TreatmentResponsePlot(ctx context.Context, w io.Writer) error {
	if s.charts == nil {
		return fmt.Errorf("%w: png", ErrUnsupportedFormat)
	}
	result, err := s.analysis.TreatmentResponse(ctx)
	if err != nil {
		return err
	}
	return s.charts.RenderTreatmentResponse(w, result)
}

// Baseline writes a baseline summary. Only structured formats are supported.
func (s *ExportService) Baseline(ctx context.Context, w io.Writer, includeTreatment bool, format ExportFormat) error {
	if format == FormatCSV {
		return fmt.Errorf("%w: baseline summary as %s", ErrUnsupportedFormat, format)
	}
	summary, err := s.analysis.BaselineSummary(ctx, includeTreatment)
	if err != nil {
		return err
	}
	return writeStructured(w, summary, format)
}

// Report writes every analysis section. Only structured formats are supported.
func (s *ExportService) Report(ctx context.Context, w io.Writer, format ExportFormat) error {
	if format == FormatCSV {
		return fmt.Errorf("%w: report as %s", ErrUnsupportedFormat, format)
	}
	report, err := s.analysis.Report(ctx)
	if err != nil {
		return err
	}
	return writeStructured(w, report, format)
}

// operationLogRecord is the export shape of an operation log entry
type operationLogRecord struct {
	Details       any    `json:"details" yaml:"details"`
	ID            int64  `json:"id" yaml:"id"`
	OperationType string `json:"operation_type" yaml:"operation_type"`
	SampleID      string `json:"sample_id,omitempty" yaml:"sample_id,omitempty"`
	Timestamp     string `json:"timestamp" yaml:"timestamp"`
}

// OperationLog writes the most recent audit entries
func (s *ExportService) OperationLog(ctx context.Context, w io.Writer, limit int, format ExportFormat) error {
	entries, err := s.audit.OperationLog(ctx, limit)
	if err != nil {
		return err
	}

	records := make([]operationLogRecord, len(entries))
	for i, e := range entries {
		records[i] = operationLogRecord{
			Details:       e.Details,
			ID:            e.ID,
			OperationType: string(e.OperationType),
			SampleID:      derefOr(e.SampleID, ""),
			Timestamp:     e.Timestamp.Format(time.RFC3339),
		}
	}
	if format != FormatCSV {
		return writeStructured(w, records, format)
	}

	table := make([][]string, len(records))
	for i, r := range records {
		table[i] = []string{
			strconv.FormatInt(r.ID, 10),
			r.Timestamp,
			r.OperationType,
			r.SampleID,
			DetailsText(r.Details),
		}
	}
	return writeCSV(w, []string{"id", "timestamp", "operation_type", "sample_id", "details"}, table)
}

// DetailsText renders decoded operation details on one line
func DetailsText(details any) string {
	switch d := details.(type) {
	case nil:
		return ""
	case string:
		return d
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return fmt.Sprintf("%v", d)
		}
		return string(b)
	}
}

func formatCell(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func writeStructured(w io.Writer, v any, format ExportFormat) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
