package model

// ChartKind selects how a series is drawn
type ChartKind string

const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
)

// Series is one named line or bar group. Values align with Chart.Categories;
// a nil entry has no data point for that category.
type Series struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

// Chart is a render-ready category chart
type Chart struct {
	Title      string    `json:"title"`
	Kind       ChartKind `json:"kind"`
	XLabel     string    `json:"x_label"`
	YLabel     string    `json:"y_label"`
	Categories []string  `json:"categories"`
	Series     []Series  `json:"series"`
}

// Empty reports whether the chart has no data points at all
func (c *Chart) Empty() bool {
	for _, s := range c.Series {
		for _, v := range s.Values {
			if v != nil {
				return false
			}
		}
	}
	return true
}
