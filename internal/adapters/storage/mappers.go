package storage

import (
	"time"

	"cytodash/internal/domain"
)

// sampleModelToDomain converts a SampleModel to domain.Sample
func sampleModelToDomain(m SampleModel) domain.Sample {
	return domain.Sample{
		Age:                    m.Age,
		Condition:              m.Condition,
		Project:                m.Project,
		Response:               m.Response,
		SampleID:               m.SampleID,
		SampleType:             m.SampleType,
		Sex:                    m.Sex,
		Subject:                m.Subject,
		TimeFromTreatmentStart: m.TimeFromTreatmentStart,
		Treatment:              m.Treatment,
	}
}

// domainToSampleModel converts domain.Sample to SampleModel
func domainToSampleModel(s domain.Sample) SampleModel {
	return SampleModel{
		Age:                    s.Age,
		Condition:              s.Condition,
		Project:                s.Project,
		Response:               s.Response,
		SampleID:               s.SampleID,
		SampleType:             s.SampleType,
		Sex:                    s.Sex,
		Subject:                s.Subject,
		TimeFromTreatmentStart: s.TimeFromTreatmentStart,
		Treatment:              s.Treatment,
	}
}

// domainToCellCountModel converts domain.CellCount to CellCountModel
func domainToCellCountModel(c domain.CellCount) CellCountModel {
	return CellCountModel{
		Count:      c.Count,
		ID:         c.ID,
		Population: c.Population,
		SampleID:   c.SampleID,
	}
}

func longRowModelToDomain(m longRowModel) domain.LongRow {
	return domain.LongRow{
		Count:      m.Count,
		Population: m.Population,
		Sample:     sampleModelToDomain(m.SampleModel),
	}
}

func frequencyRowModelToDomain(m frequencyRowModel) domain.FrequencySourceRow {
	total := 0
	if m.TotalCount != nil {
		total = *m.TotalCount
	}
	return domain.FrequencySourceRow{
		Count:      m.Count,
		Population: m.Population,
		SampleID:   m.SampleID,
		TotalCount: total,
	}
}

func operationLogModelToDomain(m OperationLogModel) domain.OperationLogEntry {
	ts, err := time.Parse(time.RFC3339Nano, m.Timestamp)
	if err != nil {
		// Older rows may carry a bare ISO timestamp without zone
		ts, _ = time.ParseInLocation("2006-01-02T15:04:05.999999", m.Timestamp, time.Local)
	}
	var details any
	if m.Details != nil {
		details = *m.Details
	}
	return domain.OperationLogEntry{
		Details:       details,
		ID:            m.ID,
		OperationType: domain.OperationType(m.OperationType),
		SampleID:      m.SampleID,
		Timestamp:     ts,
	}
}
