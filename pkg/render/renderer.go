package render

import (
	"context"
)

// Document is the read side of a loaded session that output formats draw
// from. *session.Session satisfies it.
type Document interface {
	Preview() (string, error)
	PreviewPage() (string, error)
	PreviewText() (string, error)
}

// Renderer converts the current state of a document into bytes.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// Func adapts a function into a Renderer.
type Func struct {
	FormatName string
	MediaType  string
	RenderFunc func(ctx context.Context, doc Document) ([]byte, error)
}

// Name implements Renderer.
func (f Func) Name() string { return f.FormatName }

// ContentType implements Renderer.
func (f Func) ContentType() string { return f.MediaType }

// Render implements Renderer.
func (f Func) Render(ctx context.Context, doc Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.RenderFunc(ctx, doc)
}
