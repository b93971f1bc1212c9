package model

import "time"

// ReportID identifies one of the fixed reports
type ReportID int

const (
	ReportLifeByYear ReportID = iota + 1
	ReportDeathByRace
	ReportLifeBySex
	ReportDeathByYearRace
	ReportCorrelation
)

// AggregateRow is one output tuple of a report. Value is nil for SQL NULL.
type AggregateRow struct {
	Keys  []string `json:"keys"`
	Value *float64 `json:"value"`
	Count int      `json:"record_count"`
}

// AggregateResult is the ordered output of one report
type AggregateResult struct {
	Report  ReportID       `json:"report"`
	Name    string         `json:"name"`
	Columns []string       `json:"columns"` // key columns followed by the value column
	Rows    []AggregateRow `json:"rows"`
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "csv", "json", "xlsx", "database"
	Path        string    `json:"path"` // file path or table name
	RecordCount int       `json:"record_count"`
	FileType    string    `json:"file_type,omitempty"`
	FileSize    int64     `json:"file_size,omitempty"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
