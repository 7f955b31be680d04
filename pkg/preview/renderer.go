// Package preview substitutes field markers in a marked document template
// with either the field's canonical value or a pending placeholder.
//
// Substitution is literal and single-pass over the original template text:
// inserted values are never rescanned, so a value that happens to contain
// another field's marker is rendered verbatim. Markers whose field is not
// registered are left untouched, and registered fields without a marker never
// appear in the output.
package preview

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-docfill/pkg/field"
	rendertemplate "github.com/goliatone/go-docfill/pkg/render/template"
	"github.com/goliatone/go-docfill/pkg/render/template/gotemplate"
)

// ValueSource exposes canonical values by field id. *values.Store satisfies it.
type ValueSource interface {
	Canonical(id field.ID) string
}

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	fallback         string
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithPlaceholderFallback overrides the label shown when a pending field has
// no label guess, detected value, or generic label.
func WithPlaceholderFallback(label string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			cfg.fallback = trimmed
		}
	}
}

// Renderer produces preview HTML. It holds no per-document state, so one
// instance can serve many sessions.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	fallback  string
}

// New constructs a Renderer backed by the embedded templates by default.
func New(options ...Option) (*Renderer, error) {
	cfg := config{fallback: field.PreviewFallback}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithSetName("preview"),
		)
		if err != nil {
			return nil, fmt.Errorf("preview: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, fallback: cfg.fallback}, nil
}

// Render substitutes every registered field marker found in template.
func (r *Renderer) Render(template string, registry *field.Registry, values ValueSource) (string, error) {
	if r == nil || r.templates == nil {
		return "", fmt.Errorf("preview: template renderer is nil")
	}
	if !strings.Contains(template, markerPrefix) {
		return template, nil
	}

	fields := registry.Fields()
	fragments := make(map[field.ID]string)

	var b strings.Builder
	b.Grow(len(template))
	for pos := 0; pos < len(template); {
		next := strings.Index(template[pos:], markerPrefix)
		if next < 0 {
			b.WriteString(template[pos:])
			break
		}
		b.WriteString(template[pos : pos+next])
		pos += next

		f, ok := matchMarker(template, pos, fields)
		if !ok {
			// Unregistered marker: keep the underscore and rescan after it.
			b.WriteByte(template[pos])
			pos++
			continue
		}

		fragment, seen := fragments[f.ID]
		if !seen {
			var err error
			fragment, err = r.Fragment(f, values.Canonical(f.ID))
			if err != nil {
				return "", err
			}
			fragments[f.ID] = fragment
		}
		b.WriteString(fragment)
		pos += len(field.MarkerFor(f.ID))
	}
	return b.String(), nil
}

const markerPrefix = "__MARKER_"

// matchMarker picks the registered field whose marker starts at pos. Ids are
// opaque, so one marker can be a prefix of another (`a` and `a_`, or `a` and
// `a__b`). The longest candidate that ends on a clean boundary wins: end of
// input, a character other than '_', or the start of the next marker. When
// no candidate ends cleanly the shortest one is used.
func matchMarker(template string, pos int, fields []field.Field) (field.Field, bool) {
	var (
		best, shortest field.Field
		bestLen        = -1
		shortestLen    = -1
	)
	rest := template[pos:]
	for _, f := range fields {
		marker := field.MarkerFor(f.ID)
		if !strings.HasPrefix(rest, marker) {
			continue
		}
		n := len(marker)
		if shortestLen < 0 || n < shortestLen {
			shortest, shortestLen = f, n
		}
		if cleanBoundary(rest[n:]) && n > bestLen {
			best, bestLen = f, n
		}
	}
	switch {
	case bestLen >= 0:
		return best, true
	case shortestLen >= 0:
		return shortest, true
	default:
		return field.Field{}, false
	}
}

func cleanBoundary(after string) bool {
	return after == "" || after[0] != '_' || strings.HasPrefix(after, markerPrefix)
}

// Fragment renders the inline span for a single field.
func (r *Renderer) Fragment(f field.Field, canonical string) (string, error) {
	if canonical != "" {
		out, err := r.templates.RenderTemplate(valueTemplate, map[string]any{
			"id":   string(f.ID),
			"text": canonical,
		})
		if err != nil {
			return "", fmt.Errorf("preview: render value for %q: %w", f.ID, err)
		}
		return out, nil
	}

	out, err := r.templates.RenderTemplate(placeholderTemplate, map[string]any{
		"id":    string(f.ID),
		"label": f.DisplayLabel(r.fallback),
		"hint":  strings.TrimSpace(f.Hint),
	})
	if err != nil {
		return "", fmt.Errorf("preview: render placeholder for %q: %w", f.ID, err)
	}
	return out, nil
}
