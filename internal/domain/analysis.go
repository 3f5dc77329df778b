package domain

import "math"

// SignificanceLevel is the p-value threshold below which a difference is reported significant
const SignificanceLevel = 0.05

// FrequencyRow is a frequency source row with its relative frequency
type FrequencyRow struct {
	Count      int     `json:"count" yaml:"count"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
	Population string  `json:"population" yaml:"population"`
	SampleID   string  `json:"sample_id" yaml:"sample_id"`
	TotalCount int     `json:"total_count" yaml:"total_count"`
}

// ResponseFrequencyRow is a frequency row tagged with the sample's response
type ResponseFrequencyRow struct {
	FrequencyRow `yaml:",inline"`
	Response string `json:"response" yaml:"response"`
}

// Percentage returns round(count/total*100, 2), or 0 when total is 0
func Percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round(float64(count)/float64(total)*100, 2)
}

// Round rounds v to the given number of decimal places
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// PopulationComparison is the responder versus non-responder result for one population.
// When Applicable is false the statistic fields are meaningless and reported as N/A.
type PopulationComparison struct {
	Applicable        bool    `json:"applicable" yaml:"applicable"`
	MeanNonResponders float64 `json:"mean_non_responders" yaml:"mean_non_responders"`
	MeanResponders    float64 `json:"mean_responders" yaml:"mean_responders"`
	NonResponders     int     `json:"non_responders" yaml:"non_responders"`
	PValue            float64 `json:"p_value" yaml:"p_value"`
	Population        string  `json:"population" yaml:"population"`
	Responders        int     `json:"responders" yaml:"responders"`
	Significant       bool    `json:"significant" yaml:"significant"`
	TStatistic        float64 `json:"t_statistic" yaml:"t_statistic"`
}

// TreatmentResponseResult holds the cohort frequencies and per-population comparisons
type TreatmentResponseResult struct {
	Cohort      Cohort                 `json:"cohort" yaml:"cohort"`
	Comparisons []PopulationComparison `json:"comparisons" yaml:"comparisons"`
	Rows        []ResponseFrequencyRow `json:"rows" yaml:"rows"`
}

// BaselineSummary counts baseline cohort samples by project, response and sex
type BaselineSummary struct {
	IncludeTreatment  bool           `json:"include_treatment" yaml:"include_treatment"`
	ResponseCounts    map[string]int `json:"response_counts" yaml:"response_counts"`
	Rows              []BaselineRow  `json:"-" yaml:"-"`
	SamplesPerProject map[string]int `json:"samples_per_project" yaml:"samples_per_project"`
	SexCounts         map[string]int `json:"sex_counts" yaml:"sex_counts"`
	TotalSamples      int            `json:"total_samples" yaml:"total_samples"`
}

// SummarizeBaseline groups baseline rows. Null values are not counted in the
// per-category maps but are included in the total.
func SummarizeBaseline(rows []BaselineRow, includeTreatment bool) BaselineSummary {
	summary := BaselineSummary{
		IncludeTreatment:  includeTreatment,
		ResponseCounts:    map[string]int{},
		Rows:              rows,
		SamplesPerProject: map[string]int{},
		SexCounts:         map[string]int{},
		TotalSamples:      len(rows),
	}
	for _, r := range rows {
		if r.Project != nil {
			summary.SamplesPerProject[*r.Project]++
		}
		if r.Response != nil {
			summary.ResponseCounts[*r.Response]++
		}
		if r.Sex != nil {
			summary.SexCounts[*r.Sex]++
		}
	}
	return summary
}

// Report bundles the standard analysis sections
type Report struct {
	Baseline          BaselineSummary         `json:"baseline" yaml:"baseline"`
	CustomBaseline    BaselineSummary         `json:"custom_baseline" yaml:"custom_baseline"`
	Frequencies       []FrequencyRow          `json:"frequencies" yaml:"frequencies"`
	TreatmentResponse TreatmentResponseResult `json:"treatment_response" yaml:"treatment_response"`
}
