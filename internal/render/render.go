// Package render turns report charts into images. The pipeline only sees the
// Presenter side (Host.Show); everything toolkit specific lives here.
package render

import (
	"context"

	"go-lifeexp-report/internal/model"
)

// Renderer draws one chart. Implementations must be safe for concurrent use.
type Renderer interface {
	Render(ctx context.Context, chart *model.Chart) error
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(ctx context.Context, chart *model.Chart) error

func (f RendererFunc) Render(ctx context.Context, chart *model.Chart) error {
	return f(ctx, chart)
}

// Nop discards every chart
type Nop struct{}

func (Nop) Render(context.Context, *model.Chart) error { return nil }
