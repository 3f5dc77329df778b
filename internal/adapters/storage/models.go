package storage

// SampleModel is the GORM model for samples table
type SampleModel struct {
	Age                    *int    `gorm:"column:age"`
	Condition              *string `gorm:"column:condition"`
	Project                *string `gorm:"column:project"`
	Response               *string `gorm:"column:response"`
	SampleID               string  `gorm:"column:sample_id;primaryKey"`
	SampleType             *string `gorm:"column:sample_type"`
	Sex                    *string `gorm:"column:sex"`
	Subject                *string `gorm:"column:subject"`
	TimeFromTreatmentStart *int    `gorm:"column:time_from_treatment_start"`
	Treatment              *string `gorm:"column:treatment"`
}

// TableName specifies the table name for GORM
func (SampleModel) TableName() string { return "samples" }

// CellCountModel is the GORM model for cell_counts table
type CellCountModel struct {
	Count      *int   `gorm:"column:count"`
	ID         string `gorm:"column:id;primaryKey"`
	Population string `gorm:"column:population"`
	SampleID   string `gorm:"column:sample_id"`
}

// TableName specifies the table name for GORM
func (CellCountModel) TableName() string { return "cell_counts" }

// OperationLogModel is the GORM model for operation_log table
type OperationLogModel struct {
	Details       *string `gorm:"column:details"`
	ID            int64   `gorm:"column:id;primaryKey;autoIncrement"`
	OperationType string  `gorm:"column:operation_type"`
	SampleID      *string `gorm:"column:sample_id"`
	Timestamp     string  `gorm:"column:timestamp"`
}

// TableName specifies the table name for GORM
func (OperationLogModel) TableName() string { return "operation_log" }

// longRowModel is the scan target for the samples LEFT JOIN cell_counts query
type longRowModel struct {
	SampleModel
	Count      *int    `gorm:"column:count"`
	Population *string `gorm:"column:population"`
}

// frequencyRowModel is the scan target for the windowed frequency queries
type frequencyRowModel struct {
	Condition  *string `gorm:"column:condition"`
	Count      *int    `gorm:"column:count"`
	Population string  `gorm:"column:population"`
	Response   *string `gorm:"column:response"`
	SampleID   string  `gorm:"column:sample_id"`
	SampleType *string `gorm:"column:sample_type"`
	TotalCount *int    `gorm:"column:total_count"`
	Treatment  *string `gorm:"column:treatment"`
}

// baselineRowModel is the scan target for the baseline cohort query
type baselineRowModel struct {
	Project  *string `gorm:"column:project"`
	Response *string `gorm:"column:response"`
	SampleID string  `gorm:"column:sample_id"`
	Sex      *string `gorm:"column:sex"`
	Subject  *string `gorm:"column:subject"`
}
