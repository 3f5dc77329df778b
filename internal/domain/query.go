package domain

import (
	"sort"
	"strings"
)

// SampleFilter holds optional IN predicates. An empty slice means no constraint.
type SampleFilter struct {
	Conditions []string
	Projects   []string
	Responses  []string
	Treatments []string
}

// IsEmpty reports whether the filter constrains nothing
func (f SampleFilter) IsEmpty() bool {
	return len(f.Conditions) == 0 && len(f.Projects) == 0 &&
		len(f.Responses) == 0 && len(f.Treatments) == 0
}

// Key returns a canonical string for the filter, independent of value order
func (f SampleFilter) Key() string {
	part := func(name string, values []string) string {
		sorted := append([]string(nil), values...)
		sort.Strings(sorted)
		return name + "=" + strings.Join(sorted, ",")
	}
	return strings.Join([]string{
		part(FieldProject, f.Projects),
		part(FieldCondition, f.Conditions),
		part(FieldTreatment, f.Treatments),
		part(FieldResponse, f.Responses),
	}, ";")
}

// Cohort is the fixed predicate used by the standard reports
type Cohort struct {
	Condition  string `json:"condition,omitempty" yaml:"condition,omitempty"`
	SampleType string `json:"sample_type,omitempty" yaml:"sample_type,omitempty"`
	Treatment  string `json:"treatment,omitempty" yaml:"treatment,omitempty"`
}

// DefaultCohort is the melanoma / tr1 / PBMC cohort
var DefaultCohort = Cohort{
	Condition:  "melanoma",
	SampleType: "PBMC",
	Treatment:  "tr1",
}

// Key returns a canonical string for the cohort
func (c Cohort) Key() string {
	return c.Condition + "|" + c.Treatment + "|" + c.SampleType
}

// FrequencySourceRow is one (sample, population) count with the sample's total
type FrequencySourceRow struct {
	Count      *int
	Population string
	SampleID   string
	TotalCount int
}

// TreatmentResponseRow is a frequency source row restricted to the cohort
type TreatmentResponseRow struct {
	FrequencySourceRow
	Condition  *string
	Response   *string
	SampleType *string
	Treatment  *string
}

// BaselineRow is one cohort sample taken at treatment start
type BaselineRow struct {
	Project  *string
	Response *string
	SampleID string
	Sex      *string
	Subject  *string
}
