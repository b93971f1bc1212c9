package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"go-lifeexp-report/internal/model"
	"go-lifeexp-report/pkg/utils"
)

// Export file names inside the run directory
const (
	CSVFileName  = "reports.csv"
	JSONFileName = "reports.json"
	XLSXFileName = "reports.xlsx"
)

// ReportStore persists report rows
type ReportStore interface {
	SaveReportRows(ctx context.Context, runID string, results []model.AggregateResult) (int, error)
}

// ExportManager writes the report results of one run to the configured
// targets
type ExportManager struct {
	RunID  string
	Spec   model.Export
	Output *utils.OutputManager
	Store  ReportStore // nil disables the database target
}

// Export writes every configured target and returns one result per target.
// A failing target does not stop the others; the returned error is the
// first failure.
func (em *ExportManager) Export(ctx context.Context, results []model.AggregateResult) ([]model.ExportResult, error) {
	var exports []model.ExportResult
	var firstErr error

	record := func(res model.ExportResult, err error) {
		res.Success = err == nil
		res.Timestamp = time.Now()
		if err != nil {
			res.Error = err.Error()
			log.Printf("❌ Export to %s failed: %v", res.Type, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("export %s: %w", res.Type, err)
			}
		} else {
			log.Printf("💾 Export to %s successful: %d rows written to %s", res.Type, res.RecordCount, res.Path)
		}
		exports = append(exports, res)
	}

	for _, format := range em.Spec.Formats {
		if err := ctx.Err(); err != nil {
			return exports, err
		}

		exportFn, fileName := em.target(format)
		if exportFn == nil {
			record(model.ExportResult{Type: format}, fmt.Errorf("unsupported export format: %s", format))
			continue
		}
		path, err := em.Output.GetOutputFilePath(em.RunID, fileName)
		if err != nil {
			record(model.ExportResult{Type: format}, err)
			continue
		}
		n, err := exportFn(path, results)
		res := model.ExportResult{Type: format, Path: path, RecordCount: n, FileType: em.Output.GetFileType(path)}
		if err == nil {
			res.FileSize, err = em.Output.GetFileSize(path)
		}
		record(res, err)
	}

	if em.Spec.DB && em.Store != nil {
		n, err := em.Store.SaveReportRows(ctx, em.RunID, results)
		record(model.ExportResult{Type: "database", Path: "report_rows", RecordCount: n}, err)
	}

	return exports, firstErr
}

// target maps an export format to its writer and file name
func (em *ExportManager) target(format string) (func(string, []model.AggregateResult) (int, error), string) {
	switch format {
	case "csv":
		return em.exportToCSV, CSVFileName
	case "json":
		return em.exportToJSON, JSONFileName
	case "xlsx":
		return em.exportToXLSX, XLSXFileName
	default:
		return nil, ""
	}
}

// exportToCSV writes one line per report row: report, name, up to two keys,
// value ("" for NULL) and record count
func (em *ExportManager) exportToCSV(path string, results []model.AggregateResult) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{"report", "report_name", "key_1", "key_2", "value", "record_count"}
	if err := writer.Write(header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	count := 0
	for _, res := range results {
		for _, row := range res.Rows {
			line := []string{strconv.Itoa(int(res.Report)), res.Name, key(row, 0), key(row, 1), "", strconv.Itoa(row.Count)}
			if row.Value != nil {
				line[4] = strconv.FormatFloat(*row.Value, 'f', -1, 64)
			}
			if err := writer.Write(line); err != nil {
				return count, fmt.Errorf("failed to write row: %w", err)
			}
			count++
		}
	}

	writer.Flush()
	return count, writer.Error()
}

// exportToJSON writes the results with a run_info header
func (em *ExportManager) exportToJSON(path string, results []model.AggregateResult) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	rows := 0
	for _, res := range results {
		rows += len(res.Rows)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	doc := map[string]interface{}{
		"run_info": map[string]interface{}{
			"run_id":       em.RunID,
			"exported_at":  time.Now().UTC(),
			"report_count": len(results),
			"row_count":    rows,
		},
		"reports": results,
	}
	if err := encoder.Encode(doc); err != nil {
		return 0, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return rows, nil
}

// exportToXLSX writes one sheet per report: the result columns as header,
// then one row per result row with NULL left blank
func (em *ExportManager) exportToXLSX(path string, results []model.AggregateResult) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	count := 0
	for i, res := range results {
		sheet := sheetName(res)
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		for c, col := range res.Columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, 1)
			if err := f.SetCellValue(sheet, cell, col); err != nil {
				return 0, err
			}
		}

		for r, row := range res.Rows {
			rowIdx := r + 2
			for c, k := range row.Keys {
				cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
				if err := f.SetCellValue(sheet, cell, k); err != nil {
					return 0, err
				}
			}
			if row.Value != nil {
				cell, _ := excelize.CoordinatesToCellName(len(row.Keys)+1, rowIdx)
				if err := f.SetCellValue(sheet, cell, *row.Value); err != nil {
					return 0, err
				}
			}
			count++
		}
	}

	if len(results) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return 0, err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return 0, err
	}
	return count, nil
}

// sheetName builds a sheet name unique per report within the 31 character
// limit of the format
func sheetName(res model.AggregateResult) string {
	name := fmt.Sprintf("%d %s", res.Report, res.Name)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func key(row model.AggregateRow, i int) string {
	if i < len(row.Keys) {
		return row.Keys[i]
	}
	return ""
}
