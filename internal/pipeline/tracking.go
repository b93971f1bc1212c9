package pipeline

import (
	"log"
	"sync"
	"time"

	"go-lifeexp-report/internal/model"
)

// Stage names as recorded by the tracker
const (
	StageIngestion   = "ingestion"
	StageTransform   = "transformation"
	StageAggregation = "aggregation"
	StageRender      = "render"
	StageExport      = "export"
)

// PipelineTracker records per-stage timing and counts for one run. It is
// safe for concurrent use.
type PipelineTracker struct {
	mu      sync.RWMutex
	metrics model.PipelineMetrics
	now     func() time.Time
}

// NewPipelineTracker creates a tracker for a run that starts now
func NewPipelineTracker(runID string) *PipelineTracker {
	pt := &PipelineTracker{now: time.Now}
	pt.metrics = model.PipelineMetrics{
		RunID:        runID,
		Status:       "running",
		StartTime:    pt.now(),
		StageMetrics: make(map[string]model.StageMetrics),
		Errors:       make([]model.ErrorDetail, 0),
	}
	return pt
}

// StartStage marks the start of a pipeline stage
func (pt *PipelineTracker) StartStage(stage string, workerCount int) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.metrics.StageMetrics[stage] = model.StageMetrics{
		StageName:   stage,
		StartTime:   pt.now(),
		WorkerCount: workerCount,
		Status:      "running",
	}
}

// EndStage marks the end of a pipeline stage
func (pt *PipelineTracker) EndStage(stage string, recordsProcessed int64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	sm := pt.metrics.StageMetrics[stage]
	sm.StageName = stage
	sm.EndTime = pt.now()
	sm.Duration = sm.EndTime.Sub(sm.StartTime)
	sm.RecordsProcessed = recordsProcessed
	sm.Status = "completed"
	pt.metrics.StageMetrics[stage] = sm

	switch stage {
	case StageIngestion:
		pt.metrics.TotalRecords = recordsProcessed
	case StageAggregation:
		pt.metrics.ReportCount = recordsProcessed
	case StageRender:
		pt.metrics.ChartCount = recordsProcessed
	}

	log.Printf("📊 Stage '%s' completed: %d processed in %v", stage, recordsProcessed, sm.Duration)
}

// RecordError records a stage failure
func (pt *PipelineTracker) RecordError(stage, errorType string, err error) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if sm, ok := pt.metrics.StageMetrics[stage]; ok && sm.Status == "running" {
		sm.Status = "failed"
		sm.EndTime = pt.now()
		sm.Duration = sm.EndTime.Sub(sm.StartTime)
		pt.metrics.StageMetrics[stage] = sm
	}
	pt.metrics.Errors = append(pt.metrics.Errors, model.ErrorDetail{
		Stage:     stage,
		ErrorType: errorType,
		Message:   err.Error(),
		Timestamp: pt.now(),
	})
	pt.metrics.ErrorCount++
}

// Complete marks the run as completed
func (pt *PipelineTracker) Complete() {
	pt.finish("completed")
	m := pt.GetMetrics()
	log.Printf("📊 Run completed in %v: %d records, %d reports, %d charts",
		m.Duration, m.TotalRecords, m.ReportCount, m.ChartCount)
}

// Fail marks the run as failed
func (pt *PipelineTracker) Fail() {
	pt.finish("failed")
	log.Printf("❌ Run failed after %v", pt.GetMetrics().Duration)
}

func (pt *PipelineTracker) finish(status string) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.metrics.Status = status
	pt.metrics.EndTime = pt.now()
	pt.metrics.Duration = pt.metrics.EndTime.Sub(pt.metrics.StartTime)
	if secs := pt.metrics.Duration.Seconds(); secs > 0 {
		pt.metrics.ThroughputRPS = float64(pt.metrics.TotalRecords) / secs
	}
}

// GetMetrics returns a copy of the current metrics
func (pt *PipelineTracker) GetMetrics() model.PipelineMetrics {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	metrics := pt.metrics
	metrics.StageMetrics = make(map[string]model.StageMetrics, len(pt.metrics.StageMetrics))
	for k, v := range pt.metrics.StageMetrics {
		metrics.StageMetrics[k] = v
	}
	metrics.Errors = append([]model.ErrorDetail(nil), pt.metrics.Errors...)
	return metrics
}
