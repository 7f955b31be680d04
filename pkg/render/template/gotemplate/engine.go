// Package gotemplate implements template.TemplateRenderer on pongo2.
package gotemplate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-docfill/pkg/render/template"
)

const defaultExtension = ".tpl"

// ErrNoTemplates is returned by New when no template source was configured.
var ErrNoTemplates = errors.New("gotemplate: no template source configured")

// Option configures an Engine.
type Option func(*Engine)

// WithFS adds a template source. Sources added later shadow earlier ones, so
// callers can layer overrides on top of a base bundle.
func WithFS(files fs.FS) Option {
	return func(e *Engine) {
		if files != nil {
			e.sources = append([]fs.FS{files}, e.sources...)
		}
	}
}

// WithExtension sets the suffix appended to names passed to RenderTemplate.
func WithExtension(ext string) Option {
	return func(e *Engine) {
		ext = strings.TrimSpace(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		e.ext = ext
	}
}

// WithGlobalData seeds values visible to every template.
func WithGlobalData(data map[string]any) Option {
	return func(e *Engine) {
		for key, value := range data {
			e.seed[key] = value
		}
	}
}

// WithSetName names the pongo2 template set, which shows up in parse errors.
func WithSetName(name string) Option {
	return func(e *Engine) {
		if name = strings.TrimSpace(name); name != "" {
			e.name = name
		}
	}
}

// Engine renders templates from one or more fs.FS sources. Parsed templates
// are cached by name. Safe for concurrent use.
type Engine struct {
	name    string
	ext     string
	sources []fs.FS
	seed    map[string]any

	set   *pongo2.TemplateSet
	cache sync.Map // string -> *pongo2.Template

	globalsMu sync.RWMutex
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine. At least one WithFS source is required.
func New(options ...Option) (*Engine, error) {
	e := &Engine{
		name: "docfill",
		ext:  defaultExtension,
		seed: map[string]any{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if len(e.sources) == 0 {
		return nil, ErrNoTemplates
	}

	loaders := make([]pongo2.TemplateLoader, 0, len(e.sources))
	for _, src := range e.sources {
		loaders = append(loaders, pongo2.NewFSLoader(src))
	}
	e.set = pongo2.NewSet(e.name, loaders...)
	e.set.Globals = pongo2.Context{}

	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", trimFilter)
	}
	if err := e.GlobalContext(e.seed); err != nil {
		return nil, err
	}
	return e, nil
}

// RenderTemplate executes the named template, adding the configured
// extension when the name has none.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	if e.ext != "" && !strings.HasSuffix(name, e.ext) {
		name += e.ext
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	return e.run(tmpl, name, data, out)
}

// RenderString parses and executes src without caching it.
func (e *Engine) RenderString(src string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	tmpl, err := e.set.FromString(src)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse inline template: %w", err)
	}
	return e.run(tmpl, "inline", data, out)
}

// RegisterFilter adds a pongo2 filter. pongo2 filters are global to the
// process, so a name can only be registered once.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter name and function are required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already registered", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		res, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(res), nil
	})
}

// GlobalContext merges data into the template globals.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errors.New("gotemplate: engine is nil")
	}
	ctx, err := toContext(data)
	if err != nil {
		return err
	}
	e.globalsMu.Lock()
	e.set.Globals.Update(ctx)
	e.globalsMu.Unlock()
	return nil
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	if cached, ok := e.cache.Load(name); ok {
		return cached.(*pongo2.Template), nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %q: %w", name, err)
	}
	actual, _ := e.cache.LoadOrStore(name, tmpl)
	return actual.(*pongo2.Template), nil
}

func (e *Engine) run(tmpl *pongo2.Template, label string, data any, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", err
	}

	e.globalsMu.RLock()
	rendered, err := tmpl.Execute(ctx)
	e.globalsMu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %q: %w", label, err)
	}

	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", fmt.Errorf("gotemplate: write %q: %w", label, err)
		}
	}
	return rendered, nil
}

// toContext accepts the map shapes the preview renderer produces.
func toContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return pongo2.Context(v), nil
	case map[string]string:
		ctx := make(pongo2.Context, len(v))
		for key, value := range v {
			ctx[key] = value
		}
		return ctx, nil
	default:
		return nil, fmt.Errorf("gotemplate: unsupported data type %T", data)
	}
}

func trimFilter(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}
