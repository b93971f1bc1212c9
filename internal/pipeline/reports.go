package pipeline

import (
	"go-lifeexp-report/internal/model"
)

// Report is one of the fixed aggregate queries together with how its result
// is charted. Chart is nil for reports that only print.
type Report struct {
	ID    model.ReportID
	Name  string
	Run   func(*model.Table) model.AggregateResult
	Chart *ChartSpec
}

// ChartSpec describes the chart built from a report result
type ChartSpec struct {
	Title      string
	Kind       model.ChartKind
	XLabel     string
	YLabel     string
	SeriesName string // single-series charts only
}

// Reports returns the report set in the order it is run and printed.
func Reports() []Report {
	return []Report{
		{
			ID:   model.ReportLifeByYear,
			Name: "Average Life Expectancy by Year",
			Run:  AvgLifeExpectancyByYear,
			Chart: &ChartSpec{
				Title:      "Average Life Expectancy by Year",
				Kind:       model.ChartLine,
				XLabel:     "Year",
				YLabel:     "Average Life Expectancy (Years)",
				SeriesName: "Average Life Expectancy",
			},
		},
		{
			ID:   model.ReportDeathByRace,
			Name: "Average Death Rate by Race",
			Run:  AvgDeathRateByRace,
			Chart: &ChartSpec{
				Title:      "Average Death Rate by Race",
				Kind:       model.ChartBar,
				XLabel:     "Race",
				YLabel:     "Average Death Rate",
				SeriesName: "Average Death Rate",
			},
		},
		{
			ID:   model.ReportLifeBySex,
			Name: "Average Life Expectancy by Sex",
			Run:  AvgLifeExpectancyBySex,
			Chart: &ChartSpec{
				Title:      "Average Life Expectancy by Sex",
				Kind:       model.ChartBar,
				XLabel:     "Sex",
				YLabel:     "Average Life Expectancy",
				SeriesName: "Average Life Expectancy",
			},
		},
		{
			ID:   model.ReportDeathByYearRace,
			Name: "Death Rate by Year and Race",
			Run:  AvgDeathRateByYearAndRace,
			Chart: &ChartSpec{
				Title:  "Death Rate by Year and Race",
				Kind:   model.ChartLine,
				XLabel: "Year",
				YLabel: "Average Death Rate",
			},
		},
		{
			ID:   model.ReportCorrelation,
			Name: "Correlation between Life Expectancy and Death Rate",
			Run:  LifeDeathCorrelation,
		},
	}
}

// AvgLifeExpectancyByYear: mean life expectancy per year, year ascending.
func AvgLifeExpectancyByYear(table *model.Table) model.AggregateResult {
	groups, rows := AggregateAvg(table, MeasureLifeExpectancy, DimYear)
	sortRows(groups, rows, func(a, b int) bool {
		return table.Records[groups[a].First].Year < table.Records[groups[b].First].Year
	})
	return result(model.ReportLifeByYear, "Average Life Expectancy by Year",
		[]string{"Year", "AvgLifeExpectancy"}, rows)
}

// AvgDeathRateByRace: mean death rate per race, highest rate first.
func AvgDeathRateByRace(table *model.Table) model.AggregateResult {
	groups, rows := AggregateAvg(table, MeasureDeathRate, DimRace)
	sortRows(groups, rows, func(a, b int) bool {
		return nullsLastDesc(rows[a].Value, rows[b].Value)
	})
	return result(model.ReportDeathByRace, "Average Death Rate by Race",
		[]string{"Race", "AvgDeathRate"}, rows)
}

// AvgLifeExpectancyBySex: mean life expectancy per sex, sex ascending.
func AvgLifeExpectancyBySex(table *model.Table) model.AggregateResult {
	groups, rows := AggregateAvg(table, MeasureLifeExpectancy, DimSex)
	sortRows(groups, rows, func(a, b int) bool {
		return groups[a].Keys[0] < groups[b].Keys[0]
	})
	return result(model.ReportLifeBySex, "Average Life Expectancy by Sex",
		[]string{"Sex", "AvgLifeExpectancy"}, rows)
}

// AvgDeathRateByYearAndRace: mean death rate per (year, race), ordered by
// year then race.
func AvgDeathRateByYearAndRace(table *model.Table) model.AggregateResult {
	groups, rows := AggregateAvg(table, MeasureDeathRate, DimYear, DimRace)
	sortRows(groups, rows, func(a, b int) bool {
		ya, yb := table.Records[groups[a].First].Year, table.Records[groups[b].First].Year
		if ya != yb {
			return ya < yb
		}
		return groups[a].Keys[1] < groups[b].Keys[1]
	})
	return result(model.ReportDeathByYearRace, "Death Rate by Year and Race",
		[]string{"Year", "Race", "AvgDeathRate"}, rows)
}

// LifeDeathCorrelation: Pearson correlation of life expectancy and death
// rate over the whole table. A non-empty table gives a single row whose value
// is nil when undefined; an empty table gives no rows.
func LifeDeathCorrelation(table *model.Table) model.AggregateResult {
	if table.Len() == 0 {
		return result(model.ReportCorrelation, "Correlation between Life Expectancy and Death Rate",
			[]string{"Correlation"}, nil)
	}
	row := model.AggregateRow{
		Keys:  []string{},
		Value: Corr(table, AllIndices(table), MeasureLifeExpectancy, MeasureDeathRate),
		Count: table.Len(),
	}
	return result(model.ReportCorrelation, "Correlation between Life Expectancy and Death Rate",
		[]string{"Correlation"}, []model.AggregateRow{row})
}

func result(id model.ReportID, name string, columns []string, rows []model.AggregateRow) model.AggregateResult {
	if rows == nil {
		rows = []model.AggregateRow{}
	}
	return model.AggregateResult{Report: id, Name: name, Columns: columns, Rows: rows}
}

// nullsLastDesc orders values descending with NULL after every number
func nullsLastDesc(a, b *float64) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a > *b
	}
}
