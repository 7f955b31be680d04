package render

import (
	"context"
	"fmt"
)

// Built-in format names.
const (
	FormatHTML     = "html"
	FormatFragment = "fragment"
	FormatText     = "text"
)

// HTML renders a standalone themed page.
func HTML() Renderer {
	return Func{
		FormatName: FormatHTML,
		MediaType:  "text/html; charset=utf-8",
		RenderFunc: func(_ context.Context, doc Document) ([]byte, error) {
			return wrap(FormatHTML, doc, Document.PreviewPage)
		},
	}
}

// Fragment renders the preview body only, for embedding.
func Fragment() Renderer {
	return Func{
		FormatName: FormatFragment,
		MediaType:  "text/html; charset=utf-8",
		RenderFunc: func(_ context.Context, doc Document) ([]byte, error) {
			return wrap(FormatFragment, doc, Document.Preview)
		},
	}
}

// Text renders a plain-text preview with pending fields in brackets.
func Text() Renderer {
	return Func{
		FormatName: FormatText,
		MediaType:  "text/plain; charset=utf-8",
		RenderFunc: func(_ context.Context, doc Document) ([]byte, error) {
			out, err := wrap(FormatText, doc, Document.PreviewText)
			if err != nil {
				return nil, err
			}
			return append(out, '\n'), nil
		},
	}
}

// NewDefaultRegistry returns a registry holding the built-in formats, with
// html as the default.
func NewDefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.MustRegister(HTML(), "page", "htm")
	reg.MustRegister(Fragment(), "partial")
	reg.MustRegister(Text(), "txt", "plain")
	return reg
}

func wrap(name string, doc Document, fn func(Document) (string, error)) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("render: %s: document is nil", name)
	}
	out, err := fn(doc)
	if err != nil {
		return nil, fmt.Errorf("render: %s: %w", name, err)
	}
	return []byte(out), nil
}
