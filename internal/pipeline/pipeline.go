package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"go-lifeexp-report/internal/model"
	"go-lifeexp-report/pkg/utils"
)

// Presenter takes charts for display. Show must not block on the chart being
// drawn.
type Presenter interface {
	Show(chart *model.Chart)
}

// RunStore persists a run and its outcome
type RunStore interface {
	ReportStore
	CreateRun(ctx context.Context, runID string, spec model.RunSpec) error
	UpdateRunStatus(ctx context.Context, runID, status string, recordCount int) error
	SaveRunError(ctx context.Context, runID string, err error) error
}

// Deps are the collaborators of a run. Every field is optional: a nil Store
// skips persistence, a nil Presenter skips chart display, a nil Output skips
// file exports and Out defaults to stdout.
type Deps struct {
	Store     RunStore
	Presenter Presenter
	Output    *utils.OutputManager
	Out       io.Writer
}

// ------------------- Pipeline Runner -------------------

// Run loads the dataset, prints a preview, computes and prints the five
// reports, hands reports 1-4 to the presenter as charts and exports the
// results. The run record is marked completed or failed whichever step
// returns.
func Run(ctx context.Context, runID string, spec model.RunSpec, deps Deps) (summary *model.RunSummary, err error) {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}

	tracker := NewPipelineTracker(runID)
	summary = &model.RunSummary{RunID: runID}
	log.Printf("🚀 Starting report run %s on %s", runID, spec.DataPath)

	if deps.Store != nil {
		if err := deps.Store.CreateRun(ctx, runID, spec); err != nil {
			return summary, fmt.Errorf("create run: %w", err)
		}
		if err := deps.Store.UpdateRunStatus(ctx, runID, "running", 0); err != nil {
			return summary, fmt.Errorf("update run: %w", err)
		}
	}

	defer func() {
		status := "completed"
		if err != nil {
			status = "failed"
			tracker.Fail()
		} else {
			tracker.Complete()
		}
		summary.Metrics = tracker.GetMetrics()

		if deps.Store == nil {
			return
		}
		// the caller's context may be cancelled already; the outcome is still recorded
		bg := context.WithoutCancel(ctx)
		if err != nil {
			if serr := deps.Store.SaveRunError(bg, runID, err); serr != nil {
				log.Printf("❌ Failed to save error for run %s: %v", runID, serr)
			}
		}
		if serr := deps.Store.UpdateRunStatus(bg, runID, status, summary.RecordCount); serr != nil {
			log.Printf("❌ Failed to update run %s: %v", runID, serr)
		}
	}()

	// --- INGESTION STAGE ---
	tracker.StartStage(StageIngestion, 1)
	table, err := Load(ctx, spec.DataPath, model.LifeSchema())
	if err != nil {
		tracker.RecordError(StageIngestion, errorType(err), err)
		return summary, err
	}
	summary.RecordCount = table.Len()
	tracker.EndStage(StageIngestion, int64(table.Len()))

	// --- TRANSFORMATION STAGE ---
	if len(spec.Transformations) > 0 {
		tracker.StartStage(StageTransform, 1)
		table, err = TransformTable(table, spec.Transformations)
		if err != nil {
			tracker.RecordError(StageTransform, "transform", err)
			return summary, err
		}
		tracker.EndStage(StageTransform, int64(table.Len()))
	}

	// the run directory exists only for runs whose dataset loaded
	if deps.Output != nil {
		dir, err := deps.Output.CreateRunOutputDir(runID)
		if err != nil {
			return summary, err
		}
		summary.OutputDir = dir
	}

	if spec.PreviewRows > 0 {
		PrintTable(out, table, spec.PreviewRows)
	}

	// --- AGGREGATION STAGE ---
	reports := Reports()
	workers := max(spec.Workers, 1)
	tracker.StartStage(StageAggregation, workers)
	results, err := ComputeReports(ctx, table, reports, workers)
	if err != nil {
		tracker.RecordError(StageAggregation, "cancelled", err)
		return summary, err
	}
	summary.Results = results
	tracker.EndStage(StageAggregation, int64(len(results)))

	// --- PRINT AND CHART ---
	tracker.StartStage(StageRender, 1)
	for i, report := range reports {
		PrintResult(out, results[i])

		chart, ok := BuildChart(report, results[i])
		if !ok {
			continue
		}
		summary.Charts = append(summary.Charts, chart)
		if spec.Charts && deps.Presenter != nil {
			deps.Presenter.Show(chart)
		}
	}
	tracker.EndStage(StageRender, int64(len(summary.Charts)))

	// --- EXPORT STAGE ---
	if deps.Output != nil || spec.Export.DB {
		tracker.StartStage(StageExport, 1)
		em := &ExportManager{RunID: runID, Spec: spec.Export, Output: deps.Output}
		if deps.Output == nil {
			em.Spec.Formats = nil
		}
		if deps.Store != nil {
			em.Store = deps.Store
		}
		summary.Exports, err = em.Export(ctx, results)
		if err != nil {
			tracker.RecordError(StageExport, "export", err)
			return summary, err
		}
		tracker.EndStage(StageExport, int64(len(summary.Exports)))
	}

	return summary, nil
}

// ComputeReports runs every report against the table. With workers > 1 the
// reports are computed concurrently; results are always returned in report
// order.
func ComputeReports(ctx context.Context, table *model.Table, reports []Report, workers int) ([]model.AggregateResult, error) {
	results := make([]model.AggregateResult, len(reports))

	if workers <= 1 {
		for i, report := range reports {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = report.Run(table)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, report := range reports {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = report.Run(table)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func errorType(err error) string {
	var ioErr *IoError
	var schemaErr *SchemaMismatchError
	switch {
	case errors.As(err, &schemaErr):
		return "schema_mismatch"
	case errors.As(err, &ioErr):
		return "io"
	default:
		return "unknown"
	}
}
