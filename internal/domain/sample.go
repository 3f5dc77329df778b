package domain

import "strings"

// CSVSampleIDColumn is the name of the identity column in external CSV sources
const CSVSampleIDColumn = "sample"

// Sample field names, in storage order
const (
	FieldSampleID               = "sample_id"
	FieldProject                = "project"
	FieldSubject                = "subject"
	FieldCondition              = "condition"
	FieldAge                    = "age"
	FieldSex                    = "sex"
	FieldTreatment              = "treatment"
	FieldResponse               = "response"
	FieldSampleType             = "sample_type"
	FieldTimeFromTreatmentStart = "time_from_treatment_start"
)

// Known cell populations, in canonical column order
const (
	PopulationBCell    = "b_cell"
	PopulationCD8TCell = "cd8_t_cell"
	PopulationCD4TCell = "cd4_t_cell"
	PopulationNKCell   = "nk_cell"
	PopulationMonocyte = "monocyte"
)

// Response values
const (
	ResponseResponder    = "y"
	ResponseNonResponder = "n"
)

// SampleFields lists every sample column shared by the loader, CRUD and queries
var SampleFields = []string{
	FieldSampleID,
	FieldProject,
	FieldSubject,
	FieldCondition,
	FieldAge,
	FieldSex,
	FieldTreatment,
	FieldResponse,
	FieldSampleType,
	FieldTimeFromTreatmentStart,
}

// KnownPopulations lists the populations every wide view carries
var KnownPopulations = []string{
	PopulationBCell,
	PopulationCD8TCell,
	PopulationCD4TCell,
	PopulationNKCell,
	PopulationMonocyte,
}

// IsKnownPopulation reports whether name is one of KnownPopulations
func IsKnownPopulation(name string) bool {
	for _, p := range KnownPopulations {
		if p == name {
			return true
		}
	}
	return false
}

// OrderPopulations returns the distinct names with known populations first in
// canonical order, followed by the rest sorted by name
func OrderPopulations(names []string) []string {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return orderedPopulations(set)
}

// IsTextField reports whether field is a free-text sample column usable for distinct lookups
func IsTextField(field string) bool {
	switch field {
	case FieldSampleID, FieldProject, FieldSubject, FieldCondition, FieldSex,
		FieldTreatment, FieldResponse, FieldSampleType:
		return true
	}
	return false
}

// IsSampleField reports whether field is one of SampleFields
func IsSampleField(field string) bool {
	for _, f := range SampleFields {
		if f == field {
			return true
		}
	}
	return false
}

// Sample represents one physical specimen (domain entity).
// Optional fields are nil when unknown.
type Sample struct {
	Age                    *int
	Condition              *string
	Project                *string
	Response               *string
	SampleID               string
	SampleType             *string
	Sex                    *string
	Subject                *string
	TimeFromTreatmentStart *int
	Treatment              *string
}

// IsBaseline reports whether the sample was taken at treatment start
func (s Sample) IsBaseline() bool {
	return s.TimeFromTreatmentStart != nil && *s.TimeFromTreatmentStart == 0
}

// CellCount is one (sample, population) measurement
type CellCount struct {
	Count      *int
	ID         string
	Population string
	SampleID   string
}

// SampleRecord is a validated sample plus the population counts supplied with it.
// Counts holds an entry for every population the source carried, nil when the
// value was blank or rejected.
type SampleRecord struct {
	Counts   map[string]*int
	Sample   Sample
	Warnings []string
}

// CellCounts returns the record's counts as CellCount values in a stable order:
// known populations first, then any extra populations sorted by name.
func (r SampleRecord) CellCounts() []CellCount {
	result := make([]CellCount, 0, len(r.Counts))
	for _, pop := range orderedPopulations(r.Counts) {
		result = append(result, CellCount{
			SampleID:   r.Sample.SampleID,
			Population: pop,
			Count:      r.Counts[pop],
		})
	}
	return result
}

// WithAllKnownPopulations returns a copy of the record where every known
// population has an entry (nil when absent from the source)
func (r SampleRecord) WithAllKnownPopulations() SampleRecord {
	counts := make(map[string]*int, len(r.Counts)+len(KnownPopulations))
	for pop, c := range r.Counts {
		counts[pop] = c
	}
	for _, pop := range KnownPopulations {
		if _, ok := counts[pop]; !ok {
			counts[pop] = nil
		}
	}
	r.Counts = counts
	return r
}

// NewSampleRequest is the typed payload for adding a single sample.
// Age and TimeFromTreatmentStart are raw text so that the same coercion
// rules as CSV ingestion apply.
type NewSampleRequest struct {
	Age                    string
	Condition              string
	Counts                 map[string]int
	Project                string
	Response               string
	SampleID               string
	SampleType             string
	Sex                    string
	Subject                string
	TimeFromTreatmentStart string
	Treatment              string
}

// Validate normalizes the request into a SampleRecord.
// Negative counts are dropped with a warning.
func (req NewSampleRequest) Validate() (SampleRecord, error) {
	id := strings.TrimSpace(req.SampleID)
	if id == "" {
		return SampleRecord{}, ErrMissingSampleID
	}

	var warnings []string
	age, w := CoerceAge(req.Age)
	warnings = append(warnings, w...)
	tfs, w := CoerceInt(FieldTimeFromTreatmentStart, req.TimeFromTreatmentStart)
	warnings = append(warnings, w...)

	sample := Sample{
		SampleID:               id,
		Project:                NormalizeText(req.Project),
		Subject:                NormalizeText(req.Subject),
		Condition:              NormalizeCondition(req.Condition),
		Age:                    age,
		Sex:                    NormalizeText(req.Sex),
		Treatment:              NormalizeText(req.Treatment),
		Response:               NormalizeText(req.Response),
		SampleType:             NormalizeText(req.SampleType),
		TimeFromTreatmentStart: tfs,
	}

	counts := make(map[string]*int, len(req.Counts))
	for pop, c := range req.Counts {
		pop = strings.TrimSpace(pop)
		if pop == "" {
			continue
		}
		if c < 0 {
			warnings = append(warnings, "negative count for "+pop+" skipped")
			continue
		}
		v := c
		counts[pop] = &v
	}

	return SampleRecord{Sample: sample, Counts: counts, Warnings: warnings}, nil
}
