package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// NormalizeText trims s and returns nil for blank values
func NormalizeText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// NormalizeCondition trims and lower-cases a condition value
func NormalizeCondition(s string) *string {
	v := NormalizeText(s)
	if v == nil {
		return nil
	}
	lower := strings.ToLower(*v)
	return &lower
}

// parseWhole parses integer or decimal text, truncating toward zero
func parseWhole(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("out of range: %q", s)
	}
	return int(f), nil
}

// CoerceInt converts raw text to an integer. Blank input yields nil silently,
// unparseable input yields nil and a warning.
func CoerceInt(field, raw string) (*int, []string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := parseWhole(raw)
	if err != nil {
		return nil, []string{fmt.Sprintf("invalid %s %q stored as NULL", field, raw)}
	}
	return &n, nil
}

// CoerceAge is CoerceInt for ages, which are never negative
func CoerceAge(raw string) (*int, []string) {
	n, warnings := CoerceInt(FieldAge, raw)
	if n != nil && *n < 0 {
		return nil, []string{fmt.Sprintf("negative %s (%d) stored as NULL", FieldAge, *n)}
	}
	return n, warnings
}

// ParseCount converts a raw population count. Blank yields nil; invalid or
// negative values yield nil with a warning.
func ParseCount(population, raw string) (*int, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ""
	}
	n, err := parseWhole(raw)
	if err != nil {
		return nil, fmt.Sprintf("invalid cell count %q for %s stored as NULL", raw, population)
	}
	if n < 0 {
		return nil, fmt.Sprintf("negative cell count (%d) for %s stored as NULL", n, population)
	}
	return &n, ""
}

// ResolveSampleID returns the trimmed identity of a raw source row, read from
// the external identity column or, failing that, from sample_id
func ResolveSampleID(raw map[string]string) string {
	if v, ok := raw[CSVSampleIDColumn]; ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(raw[FieldSampleID])
}

// ParseSampleRecord validates one raw source row keyed by column name.
// Only known population columns present in raw produce count entries.
func ParseSampleRecord(raw map[string]string) (SampleRecord, error) {
	id := ResolveSampleID(raw)
	if id == "" {
		return SampleRecord{}, ErrMissingSampleID
	}

	var warnings []string
	age, w := CoerceAge(raw[FieldAge])
	warnings = append(warnings, w...)
	tfs, w := CoerceInt(FieldTimeFromTreatmentStart, raw[FieldTimeFromTreatmentStart])
	warnings = append(warnings, w...)

	record := SampleRecord{
		Sample: Sample{
			SampleID:               id,
			Project:                NormalizeText(raw[FieldProject]),
			Subject:                NormalizeText(raw[FieldSubject]),
			Condition:              NormalizeCondition(raw[FieldCondition]),
			Age:                    age,
			Sex:                    NormalizeText(raw[FieldSex]),
			Treatment:              NormalizeText(raw[FieldTreatment]),
			Response:               NormalizeText(raw[FieldResponse]),
			SampleType:             NormalizeText(raw[FieldSampleType]),
			TimeFromTreatmentStart: tfs,
		},
		Counts: make(map[string]*int, len(KnownPopulations)),
	}

	for _, pop := range KnownPopulations {
		value, ok := raw[pop]
		if !ok {
			continue
		}
		count, warning := ParseCount(pop, value)
		if warning != "" {
			warnings = append(warnings, warning)
		}
		record.Counts[pop] = count
	}

	for i, w := range warnings {
		warnings[i] = fmt.Sprintf("sample %s: %s", id, w)
	}
	record.Warnings = warnings

	return record, nil
}

// orderedPopulations returns the keys of counts with known populations first
// in canonical order, followed by the rest sorted by name
func orderedPopulations[V any](counts map[string]V) []string {
	result := make([]string, 0, len(counts))
	for _, pop := range KnownPopulations {
		if _, ok := counts[pop]; ok {
			result = append(result, pop)
		}
	}
	var extra []string
	for pop := range counts {
		if !IsKnownPopulation(pop) {
			extra = append(extra, pop)
		}
	}
	sort.Strings(extra)
	return append(result, extra...)
}
