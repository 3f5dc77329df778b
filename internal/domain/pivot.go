package domain

import (
	"strconv"
	"strings"
)

// LongRow is one row of the samples LEFT JOIN cell_counts result.
// Population is nil for a sample with no count rows.
type LongRow struct {
	Count      *int
	Population *string
	Sample     Sample
}

// WideRow is one sample with one column per population
type WideRow struct {
	Counts map[string]int
	Sample Sample
}

// Total returns the sum of the row's population counts
func (w WideRow) Total() int {
	total := 0
	for _, c := range w.Counts {
		total += c
	}
	return total
}

// Populations returns the row's population columns in display order
func (w WideRow) Populations() []string {
	return orderedPopulations(w.Counts)
}

// Values returns the row as field name to value, with nil for unknown metadata
func (w WideRow) Values() map[string]any {
	s := w.Sample
	values := map[string]any{
		FieldSampleID:               s.SampleID,
		FieldProject:                derefString(s.Project),
		FieldSubject:                derefString(s.Subject),
		FieldCondition:              derefString(s.Condition),
		FieldAge:                    derefInt(s.Age),
		FieldSex:                    derefString(s.Sex),
		FieldTreatment:              derefString(s.Treatment),
		FieldResponse:               derefString(s.Response),
		FieldSampleType:             derefString(s.SampleType),
		FieldTimeFromTreatmentStart: derefInt(s.TimeFromTreatmentStart),
	}
	for pop, c := range w.Counts {
		values[pop] = c
	}
	return values
}

// WideColumns returns the column order for a set of wide rows: sample fields,
// the known populations, then any extra populations seen in rows
func WideColumns(rows []WideRow) []string {
	all := make(map[string]struct{})
	for _, pop := range KnownPopulations {
		all[pop] = struct{}{}
	}
	for _, r := range rows {
		for pop := range r.Counts {
			all[pop] = struct{}{}
		}
	}
	cols := make([]string, 0, len(SampleFields)+len(all))
	cols = append(cols, SampleFields...)
	return append(cols, orderedPopulations(all)...)
}

// PivotWide turns long rows into one row per sample.
//
// Phase one groups rows by the full metadata key, with nulls keyed as empty
// strings so rows with missing metadata are never dropped. Phase two builds a
// fixed-width row per group with every known population present and
// zero-defaulted. Output order follows first appearance in rows.
func PivotWide(rows []LongRow) []WideRow {
	type group struct {
		sample Sample
		counts map[string]int
	}

	var order []string
	groups := make(map[string]*group)

	for _, r := range rows {
		key := sampleKey(r.Sample)
		g, ok := groups[key]
		if !ok {
			g = &group{sample: r.Sample, counts: make(map[string]int)}
			groups[key] = g
			order = append(order, key)
		}
		if r.Population == nil || *r.Population == "" {
			continue
		}
		if r.Count != nil {
			g.counts[*r.Population] += *r.Count
		} else if _, seen := g.counts[*r.Population]; !seen {
			g.counts[*r.Population] = 0
		}
	}

	result := make([]WideRow, 0, len(order))
	for _, key := range order {
		g := groups[key]
		counts := make(map[string]int, len(KnownPopulations)+len(g.counts))
		for _, pop := range KnownPopulations {
			counts[pop] = 0
		}
		for pop, c := range g.counts {
			counts[pop] = c
		}
		result = append(result, WideRow{Sample: g.sample, Counts: counts})
	}
	return result
}

func sampleKey(s Sample) string {
	parts := []string{
		s.SampleID,
		derefKey(s.Project),
		derefKey(s.Subject),
		derefKey(s.Condition),
		intKey(s.Age),
		derefKey(s.Sex),
		derefKey(s.Treatment),
		derefKey(s.Response),
		derefKey(s.SampleType),
		intKey(s.TimeFromTreatmentStart),
	}
	return strings.Join(parts, "\x1f")
}

func derefKey(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intKey(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func derefString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}
