package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"cytodash/internal/domain"
	"cytodash/internal/services"
	"cytodash/internal/theme"
)

const notApplicable = "N/A"

// WideRowCells returns the header and cell text of a wide view
func WideRowCells(rows []domain.WideRow) ([]string, [][]string) {
	columns := domain.WideColumns(rows)
	cells := make([][]string, len(rows))
	for i, row := range rows {
		values := row.Values()
		line := make([]string, len(columns))
		for j, col := range columns {
			line[j] = formatValue(values[col])
		}
		cells[i] = line
	}
	return columns, cells
}

// FrequencyCells returns the header and cell text of a frequency table
func FrequencyCells(rows []domain.FrequencyRow) ([]string, [][]string) {
	headers := []string{"sample", "total_count", "population", "count", "percentage"}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{
			r.SampleID,
			strconv.Itoa(r.TotalCount),
			r.Population,
			strconv.Itoa(r.Count),
			strconv.FormatFloat(r.Percentage, 'f', 2, 64),
		}
	}
	return headers, cells
}

// ComparisonCells returns the header and styled cell text of the
// responder versus non-responder comparisons
func ComparisonCells(comparisons []domain.PopulationComparison) ([]string, [][]string) {
	headers := []string{"population", "responders", "non_responders", "mean_responders", "mean_non_responders", "t_statistic", "p_value", "significant"}
	cells := make([][]string, len(comparisons))
	for i, c := range comparisons {
		line := []string{
			c.Population,
			strconv.Itoa(c.Responders),
			strconv.Itoa(c.NonResponders),
		}
		if !c.Applicable {
			na := theme.NotApplicableStyle.Render(notApplicable)
			line = append(line, na, na, na, na, "no")
			cells[i] = line
			continue
		}
		significant := "no"
		if c.Significant {
			significant = theme.SignificantStyle.Render("yes")
		}
		line = append(line,
			strconv.FormatFloat(c.MeanResponders, 'f', 2, 64),
			strconv.FormatFloat(c.MeanNonResponders, 'f', 2, 64),
			strconv.FormatFloat(c.TStatistic, 'f', 3, 64),
			strconv.FormatFloat(c.PValue, 'f', 3, 64),
			significant,
		)
		cells[i] = line
	}
	return headers, cells
}

// RenderBaseline renders a baseline summary as count blocks
func RenderBaseline(summary domain.BaselineSummary) string {
	var b strings.Builder
	title := "Baseline samples"
	if summary.IncludeTreatment {
		title += " (treatment filter on)"
	}
	b.WriteString(theme.SubtitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(RenderKeyValues([][2]string{{"total_samples", humanize.Comma(int64(summary.TotalSamples))}}))
	b.WriteString("\n")

	for _, group := range []struct {
		name   string
		counts map[string]int
	}{
		{"samples_per_project", summary.SamplesPerProject},
		{"response", summary.ResponseCounts},
		{"sex", summary.SexCounts},
	} {
		b.WriteString("\n")
		b.WriteString(theme.HelpLabelStyle.Render(group.name))
		b.WriteString("\n")
		b.WriteString(RenderTable([]string{"value", "samples"}, countCells(group.counts)))
		b.WriteString("\n")
	}
	return b.String()
}

func countCells(counts map[string]int) [][]string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cells := make([][]string, len(keys))
	for i, k := range keys {
		cells[i] = []string{k, strconv.Itoa(counts[k])}
	}
	return cells
}

// OperationLogCells returns the header and cell text of operation log entries
func OperationLogCells(entries []domain.OperationLogEntry) ([]string, [][]string) {
	headers := []string{"id", "timestamp", "operation", "sample_id", "details"}
	cells := make([][]string, len(entries))
	for i, e := range entries {
		sampleID := ""
		if e.SampleID != nil {
			sampleID = *e.SampleID
		}
		cells[i] = []string{
			strconv.FormatInt(e.ID, 10),
			e.Timestamp.Format("2006-01-02 15:04:05"),
			string(e.OperationType),
			sampleID,
			truncate(services.DetailsText(e.Details), 60),
		}
	}
	return headers, cells
}

// CheckpointCells returns the header and cell text of checkpoints
func CheckpointCells(checkpoints []domain.Checkpoint) ([]string, [][]string) {
	headers := []string{"name", "created", "size"}
	cells := make([][]string, len(checkpoints))
	for i, cp := range checkpoints {
		cells[i] = []string{
			cp.Name,
			fmt.Sprintf("%s (%s)", cp.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(cp.CreatedAt)),
			humanize.Bytes(uint64(cp.SizeBytes)),
		}
	}
	return headers, cells
}

// IngestSummaryPairs returns the summary of a load or append as key/value pairs
func IngestSummaryPairs(s domain.IngestSummary) [][2]string {
	comma := func(n int) string { return humanize.Comma(int64(n)) }
	pairs := [][2]string{
		{"file", s.SourceName},
		{"mode", string(s.Mode)},
		{"rows_processed", comma(s.RowsProcessed)},
		{"chunks", comma(s.Chunks)},
		{"samples_added", comma(s.SamplesAdded)},
	}
	if s.Mode == domain.IngestReplace {
		pairs = append(pairs, [2]string{"samples_replaced", comma(s.SamplesReplaced)})
	} else {
		pairs = append(pairs, [2]string{"samples_skipped_existing", comma(s.SamplesSkippedExisting)})
	}
	return append(pairs,
		[2]string{"cell_counts_added", comma(s.CellCountsAdded)},
		[2]string{"rows_skipped", comma(s.RowsSkipped)},
		[2]string{"rows_with_errors", comma(s.RowsWithErrors)},
		[2]string{"warnings", comma(s.Warnings)},
		[2]string{"duration", s.Duration.Round(1e6).String()},
	)
}

// SamplePairs returns the fields and population counts of one sample
func SamplePairs(row domain.WideRow) [][2]string {
	values := row.Values()
	pairs := make([][2]string, 0, len(domain.SampleFields)+len(row.Counts)+1)
	for _, f := range domain.SampleFields {
		pairs = append(pairs, [2]string{f, formatValue(values[f])})
	}
	for _, pop := range row.Populations() {
		pairs = append(pairs, [2]string{pop, strconv.Itoa(row.Counts[pop])})
	}
	return append(pairs, [2]string{"total", humanize.Comma(int64(row.Total()))})
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
