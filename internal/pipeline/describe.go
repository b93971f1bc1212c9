package pipeline

import (
	"github.com/montanaflynn/stats"

	"go-lifeexp-report/internal/model"
)

// ColumnSummary holds descriptive statistics of one numeric column. Absent
// values are skipped; statistics that need more data than present are nil.
type ColumnSummary struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	StdDev *float64 `json:"stddev"` // sample standard deviation
	Min    *float64 `json:"min"`
	Median *float64 `json:"median"`
	Max    *float64 `json:"max"`
}

// Describe summarises the numeric columns of the table
func Describe(table *model.Table) []ColumnSummary {
	year := Measure{Name: model.ColYear, Value: func(r model.Record) (float64, bool) {
		return float64(r.Year), true
	}}

	measures := []Measure{year, MeasureLifeExpectancy, MeasureDeathRate}
	all := AllIndices(table)

	summaries := make([]ColumnSummary, 0, len(measures))
	for _, m := range measures {
		summaries = append(summaries, summarize(m.Name, collect(table, all, m)))
	}
	return summaries
}

func summarize(column string, data stats.Float64Data) ColumnSummary {
	s := ColumnSummary{Column: column, Count: data.Len()}
	if s.Count == 0 {
		return s
	}

	s.Mean = orNil(data.Mean())
	s.Min = orNil(data.Min())
	s.Median = orNil(data.Median())
	s.Max = orNil(data.Max())
	if s.Count > 1 {
		s.StdDev = orNil(stats.StandardDeviationSample(data))
	}
	return s
}

func orNil(v float64, err error) *float64 {
	if err != nil {
		return nil
	}
	return &v
}
