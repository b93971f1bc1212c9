package pipeline

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"go-lifeexp-report/internal/model"
)

// Dimension extracts a grouping key from a record
type Dimension struct {
	Name string
	Key  func(model.Record) string
}

// Measure extracts a nullable numeric column from a record
type Measure struct {
	Name  string
	Value func(model.Record) (float64, bool)
}

var (
	DimYear = Dimension{Name: model.ColYear, Key: func(r model.Record) string { return strconv.Itoa(r.Year) }}
	DimRace = Dimension{Name: model.ColRace, Key: func(r model.Record) string { return r.Race }}
	DimSex  = Dimension{Name: model.ColSex, Key: func(r model.Record) string { return r.Sex }}

	MeasureLifeExpectancy = Measure{Name: model.ColLifeExpectancy, Value: func(r model.Record) (float64, bool) {
		if r.LifeExpectancy == nil {
			return 0, false
		}
		return *r.LifeExpectancy, true
	}}
	MeasureDeathRate = Measure{Name: model.ColDeathRate, Value: func(r model.Record) (float64, bool) {
		return r.DeathRate, true
	}}
)

// Group is one partition of a table. Indices point into Table.Records in
// table order; First is the index of the record that opened the group.
type Group struct {
	Keys    []string
	Indices []int
	First   int
}

// GroupBy partitions the table by the given dimensions. Groups come back in
// order of first appearance. With no dimensions the whole table is a single
// group, unless it is empty.
func GroupBy(table *model.Table, dims ...Dimension) []Group {
	if table.Len() == 0 {
		return nil
	}

	grouped := make(map[string]int)
	var groups []Group

	for i, rec := range table.Records {
		keys := make([]string, len(dims))
		for d, dim := range dims {
			keys[d] = dim.Key(rec)
		}
		composite := strings.Join(keys, "\x1f")

		pos, exists := grouped[composite]
		if !exists {
			pos = len(groups)
			grouped[composite] = pos
			groups = append(groups, Group{Keys: keys, First: i})
		}
		groups[pos].Indices = append(groups[pos].Indices, i)
	}
	return groups
}

// Avg is SQL AVG over the given records: absent values are skipped, and nil
// is returned when no value is present.
func Avg(table *model.Table, indices []int, m Measure) *float64 {
	values := collect(table, indices, m)
	if len(values) == 0 {
		return nil
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return nil
	}
	return &mean
}

// Corr is the Pearson correlation of x and y over records where both are
// present. It returns nil for fewer than two pairs or a constant column.
func Corr(table *model.Table, indices []int, x, y Measure) *float64 {
	var xs, ys []float64
	for _, i := range indices {
		rec := table.Records[i]
		xv, xok := x.Value(rec)
		yv, yok := y.Value(rec)
		if xok && yok {
			xs = append(xs, xv)
			ys = append(ys, yv)
		}
	}
	if len(xs) < 2 {
		return nil
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	r = math.Max(-1, math.Min(1, r))
	return &r
}

// AggregateAvg groups the table and reduces every group with Avg.
// Rows keep the group order of GroupBy.
func AggregateAvg(table *model.Table, m Measure, dims ...Dimension) ([]Group, []model.AggregateRow) {
	groups := GroupBy(table, dims...)
	rows := make([]model.AggregateRow, len(groups))
	for i, g := range groups {
		rows[i] = model.AggregateRow{
			Keys:  g.Keys,
			Value: Avg(table, g.Indices, m),
			Count: len(g.Indices),
		}
	}
	return groups, rows
}

// AllIndices returns 0..n-1 for a table of n records
func AllIndices(table *model.Table) []int {
	idx := make([]int, table.Len())
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func collect(table *model.Table, indices []int, m Measure) []float64 {
	values := make([]float64, 0, len(indices))
	for _, i := range indices {
		if v, ok := m.Value(table.Records[i]); ok {
			values = append(values, v)
		}
	}
	return values
}

// sortRows stable-sorts groups and their rows together with less(i, j)
// comparing positions in the current order.
func sortRows(groups []Group, rows []model.AggregateRow, less func(a, b int) bool) {
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return less(order[i], order[j]) })

	sortedGroups := make([]Group, len(groups))
	sortedRows := make([]model.AggregateRow, len(rows))
	for to, from := range order {
		sortedGroups[to] = groups[from]
		sortedRows[to] = rows[from]
	}
	copy(groups, sortedGroups)
	copy(rows, sortedRows)
}
