package model

import "time"

// Export defines export targets for a run
type Export struct {
	Formats []string `json:"formats"` // csv, json, xlsx
	DB      bool     `json:"db"`      // persist report rows in the run store
}

// RunSpec defines the whole report run configuration
type RunSpec struct {
	DataPath        string   `json:"data_path"`
	OutputDir       string   `json:"output_dir"`
	Transformations []string `json:"transformations"` // label transforms applied after load
	Export          Export   `json:"export"`
	Workers         int      `json:"workers"`      // >1 computes reports concurrently
	PreviewRows     int      `json:"preview_rows"` // rows of the dataset printed before the reports
	Charts          bool     `json:"charts"`
}

// RunSummary is what a finished run hands back to its caller
type RunSummary struct {
	RunID       string            `json:"run_id"`
	OutputDir   string            `json:"output_dir"`
	RecordCount int               `json:"record_count"`
	Results     []AggregateResult `json:"results"`
	Charts      []*Chart          `json:"charts"`
	Exports     []ExportResult    `json:"exports"`
	Metrics     PipelineMetrics   `json:"metrics"`
}

// RunInfo is a persisted run as listed by the history command
type RunInfo struct {
	ID          string    `db:"id" json:"id"`
	DataPath    string    `db:"data_path" json:"data_path"`
	Spec        string    `db:"spec" json:"spec"`
	Status      string    `db:"status" json:"status"`
	RecordCount int       `db:"record_count" json:"record_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// StoredRow is one persisted report row. Key2 is empty for single-key reports.
type StoredRow struct {
	RunID       string   `db:"run_id" json:"run_id"`
	Report      int      `db:"report" json:"report"`
	ReportName  string   `db:"report_name" json:"report_name"`
	Position    int      `db:"position" json:"position"`
	Key1        string   `db:"key1" json:"key1"`
	Key2        string   `db:"key2" json:"key2"`
	Value       *float64 `db:"value" json:"value"`
	RecordCount int      `db:"record_count" json:"record_count"`
}
