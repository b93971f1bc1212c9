package render

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"go-lifeexp-report/internal/model"
)

// Host is the presentation context charts are handed to. Show returns
// immediately; drawing happens on the host's own goroutines in no particular
// order. Wait blocks until every shown chart is drawn.
type Host struct {
	ctx      context.Context
	renderer Renderer
	group    errgroup.Group
	shown    atomic.Int64
	drawn    atomic.Int64
}

// NewHost creates a host drawing with r. One failed chart does not stop the
// others.
func NewHost(ctx context.Context, r Renderer) *Host {
	return &Host{ctx: ctx, renderer: r}
}

// Show hands a chart to the host without waiting for it to be drawn.
func (h *Host) Show(chart *model.Chart) {
	h.shown.Add(1)
	h.group.Go(func() error {
		if err := h.renderer.Render(h.ctx, chart); err != nil {
			return fmt.Errorf("render %q: %w", chart.Title, err)
		}
		h.drawn.Add(1)
		return nil
	})
}

// Wait blocks until all shown charts are done and returns the first error.
func (h *Host) Wait() error {
	return h.group.Wait()
}

// Shown returns how many charts were handed to the host
func (h *Host) Shown() int64 { return h.shown.Load() }

// Drawn returns how many charts were drawn without error so far
func (h *Host) Drawn() int64 { return h.drawn.Load() }
