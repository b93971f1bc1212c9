package pipeline

import (
	"go-lifeexp-report/internal/model"
)

// BuildChart converts a report result into a chart. It returns false for
// reports that are not charted. Single-key results become one series named
// after the report's value label; two-key results become one series per second key
// (e.g. one line per race), with categories taken from the first key.
// Categories and series keep the order in which they first appear in the
// result rows.
func BuildChart(report Report, res model.AggregateResult) (*model.Chart, bool) {
	if report.Chart == nil {
		return nil, false
	}
	spec := report.Chart

	chart := &model.Chart{
		Title:      spec.Title,
		Kind:       spec.Kind,
		XLabel:     spec.XLabel,
		YLabel:     spec.YLabel,
		Categories: []string{},
		Series:     []model.Series{},
	}
	if len(res.Rows) == 0 {
		return chart, true
	}

	if len(res.Rows[0].Keys) < 2 {
		series := model.Series{Name: spec.SeriesName, Values: make([]*float64, 0, len(res.Rows))}
		for _, row := range res.Rows {
			chart.Categories = append(chart.Categories, row.Keys[0])
			series.Values = append(series.Values, row.Value)
		}
		chart.Series = append(chart.Series, series)
		return chart, true
	}

	categoryPos := make(map[string]int)
	seriesPos := make(map[string]int)
	for _, row := range res.Rows {
		category, name := row.Keys[0], row.Keys[1]
		if _, ok := categoryPos[category]; !ok {
			categoryPos[category] = len(chart.Categories)
			chart.Categories = append(chart.Categories, category)
		}
		if _, ok := seriesPos[name]; !ok {
			seriesPos[name] = len(chart.Series)
			chart.Series = append(chart.Series, model.Series{Name: name})
		}
	}

	for i := range chart.Series {
		chart.Series[i].Values = make([]*float64, len(chart.Categories))
	}
	for _, row := range res.Rows {
		chart.Series[seriesPos[row.Keys[1]]].Values[categoryPos[row.Keys[0]]] = row.Value
	}
	return chart, true
}
