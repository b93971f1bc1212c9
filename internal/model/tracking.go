package model

import "time"

// PipelineMetrics represents overall run metrics
type PipelineMetrics struct {
	RunID         string                  `json:"run_id"`
	Status        string                  `json:"status"`
	StartTime     time.Time               `json:"start_time"`
	EndTime       time.Time               `json:"end_time"`
	Duration      time.Duration           `json:"duration"`
	TotalRecords  int64                   `json:"total_records"`
	ReportCount   int64                   `json:"report_count"`
	ChartCount    int64                   `json:"chart_count"`
	ErrorCount    int64                   `json:"error_count"`
	StageMetrics  map[string]StageMetrics `json:"stage_metrics"`
	Errors        []ErrorDetail           `json:"errors"`
	ThroughputRPS float64                 `json:"throughput_rps"`
}

// StageMetrics represents metrics for a specific pipeline stage
type StageMetrics struct {
	StageName        string        `json:"stage_name"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          time.Time     `json:"end_time"`
	Duration         time.Duration `json:"duration"`
	RecordsProcessed int64         `json:"records_processed"`
	WorkerCount      int           `json:"worker_count"`
	Status           string        `json:"status"` // "running", "completed", "failed"
}

// ErrorDetail represents a detailed error with context
type ErrorDetail struct {
	Stage     string    `json:"stage"`
	ErrorType string    `json:"error_type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
