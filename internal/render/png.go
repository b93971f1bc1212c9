package render

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"go-lifeexp-report/internal/model"
	"go-lifeexp-report/pkg/utils"
)

const (
	defaultWidth  = 1024
	defaultHeight = 640
	maxTickLabels = 20
)

// PNGRenderer writes each chart to <Dir>/<slug of title>.png
type PNGRenderer struct {
	Dir    string
	Width  int
	Height int
}

// NewPNGRenderer creates a renderer writing into dir. Zero sizes use the
// defaults.
func NewPNGRenderer(dir string, width, height int) *PNGRenderer {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return &PNGRenderer{Dir: dir, Width: width, Height: height}
}

// Path returns the file a chart is written to
func (r *PNGRenderer) Path(c *model.Chart) string {
	return filepath.Join(r.Dir, utils.Slugify(c.Title)+".png")
}

// Render draws the chart into its PNG file
func (r *PNGRenderer) Render(ctx context.Context, c *model.Chart) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(r.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	path := r.Path(c)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer file.Close()

	if err := r.Draw(c, file); err != nil {
		return err
	}
	log.Printf("🖼️ Chart written: %s", path)
	return nil
}

// Draw writes the chart as PNG to w
func (r *PNGRenderer) Draw(c *model.Chart, w io.Writer) error {
	switch {
	case c.Empty():
		return r.drawEmpty(c, w)
	case c.Kind == model.ChartBar:
		return r.drawBar(c, w)
	default:
		return r.drawLine(c, w)
	}
}

func (r *PNGRenderer) drawLine(c *model.Chart, w io.Writer) error {
	series := make([]chart.Series, 0, len(c.Series))
	for i, s := range c.Series {
		var xs, ys []float64
		for pos, v := range s.Values {
			if finite(v) {
				xs = append(xs, float64(pos))
				ys = append(ys, *v)
			}
		}
		if len(xs) == 0 {
			continue
		}
		col := chart.GetDefaultColor(i)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    3,
			},
		})
	}

	lo, hi := valueRange(c)
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  c.XLabel,
			Ticks: categoryTicks(c.Categories),
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(c.Categories)) - 0.5},
		},
		YAxis: chart.YAxis{
			Name:  c.YLabel,
			Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("line chart: %w", err)
	}
	return nil
}

func (r *PNGRenderer) drawBar(c *model.Chart, w io.Writer) error {
	values := c.Series[0].Values

	bars := make([]chart.Value, 0, len(c.Categories))
	for i, category := range c.Categories {
		if !finite(values[i]) {
			continue
		}
		col := chart.GetDefaultColor(len(bars))
		bars = append(bars, chart.Value{
			Label: category,
			Value: *values[i],
			Style: chart.Style{FillColor: col, StrokeColor: col},
		})
	}

	lo, hi := valueRange(c)
	lo = math.Min(0, lo)
	hi = math.Max(0, hi)
	if hi == lo {
		hi = lo + 1
	}

	const spacing = 16
	barWidth := (r.Width-160)/len(bars) - spacing
	if barWidth > 120 {
		barWidth = 120
	}
	if barWidth < 4 {
		barWidth = 4
	}

	bc := chart.BarChart{
		Title:      c.Title,
		Width:      r.Width,
		Height:     r.Height,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Name:  c.YLabel,
			Range: &chart.ContinuousRange{Min: lo, Max: hi * 1.05},
		},
		Bars: bars,
	}

	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	return nil
}

// drawEmpty renders a titled frame for a chart without data points
func (r *PNGRenderer) drawEmpty(c *model.Chart, w io.Writer) error {
	ch := chart.Chart{
		Title:  c.Title + " (no data)",
		Width:  r.Width,
		Height: r.Height,
		XAxis:  chart.XAxis{Name: c.XLabel, Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		YAxis:  chart.YAxis{Name: c.YLabel, Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Series: []chart.Series{chart.ContinuousSeries{
			XValues: []float64{0, 1},
			YValues: []float64{0, 0},
			Style:   chart.Style{StrokeColor: drawing.ColorWhite, StrokeWidth: 1},
		}},
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("empty chart: %w", err)
	}
	return nil
}

// categoryTicks labels category positions, thinning labels so that at most
// maxTickLabels are printed.
func categoryTicks(categories []string) []chart.Tick {
	step := 1
	if len(categories) > maxTickLabels {
		step = int(math.Ceil(float64(len(categories)) / maxTickLabels))
	}
	ticks := make([]chart.Tick, 0, len(categories)/step+1)
	for i := 0; i < len(categories); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: categories[i]})
	}
	return ticks
}

// valueRange returns the min and max finite data value of a chart, or 0, 0
// when there is none
func valueRange(c *model.Chart) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range c.Series {
		for _, v := range s.Values {
			if !finite(v) {
				continue
			}
			lo = math.Min(lo, *v)
			hi = math.Max(hi, *v)
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
