package pipeline

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"go-lifeexp-report/internal/model"
	"go-lifeexp-report/pkg/utils"
)

var heading = color.New(color.FgYellow, color.Bold)

// PrintTable prints up to limit records of the dataset. limit <= 0 prints
// every record.
func PrintTable(w io.Writer, table *model.Table, limit int) {
	heading.Fprintf(w, "\nDataset %s (%d records)\n", table.Source, table.Len())

	tw := newTableWriter(w)
	header := table.Columns
	if len(header) == 0 {
		header = model.LifeSchema().Names()
	}
	tw.SetHeader(header)

	shown := table.Len()
	if limit > 0 && shown > limit {
		shown = limit
	}
	for _, rec := range table.Records[:shown] {
		tw.Append([]string{
			strconv.Itoa(rec.Year),
			rec.Race,
			rec.Sex,
			utils.FormatValue(rec.LifeExpectancy),
			utils.FormatValue(&rec.DeathRate),
		})
	}
	tw.Render()

	if shown < table.Len() {
		fmt.Fprintf(w, "only showing top %d rows\n", shown)
	}
}

// PrintResult prints one report result as a table
func PrintResult(w io.Writer, res model.AggregateResult) {
	heading.Fprintf(w, "\n%d. %s\n", res.Report, res.Name)

	tw := newTableWriter(w)
	tw.SetHeader(res.Columns)
	for _, row := range res.Rows {
		cells := append([]string{}, row.Keys...)
		tw.Append(append(cells, utils.FormatValue(row.Value)))
	}
	tw.Render()
}

// PrintSummaries prints the describe output, one row per statistic
func PrintSummaries(w io.Writer, summaries []ColumnSummary) {
	heading.Fprintln(w, "\nSummary")

	tw := newTableWriter(w)
	header := []string{"summary"}
	for _, s := range summaries {
		header = append(header, s.Column)
	}
	tw.SetHeader(header)

	stats := []struct {
		name string
		get  func(ColumnSummary) string
	}{
		{"count", func(s ColumnSummary) string { return strconv.Itoa(s.Count) }},
		{"mean", func(s ColumnSummary) string { return utils.FormatValue(s.Mean) }},
		{"stddev", func(s ColumnSummary) string { return utils.FormatValue(s.StdDev) }},
		{"min", func(s ColumnSummary) string { return utils.FormatValue(s.Min) }},
		{"median", func(s ColumnSummary) string { return utils.FormatValue(s.Median) }},
		{"max", func(s ColumnSummary) string { return utils.FormatValue(s.Max) }},
	}
	for _, st := range stats {
		row := []string{st.name}
		for _, s := range summaries {
			row = append(row, st.get(s))
		}
		tw.Append(row)
	}
	tw.Render()
}

func newTableWriter(w io.Writer) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	return tw
}
