package render

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ErrUnknownFormat is returned when no renderer answers to a name.
var ErrUnknownFormat = errors.New("render: unknown format")

// Registry resolves output formats by canonical name or alias. Lookups ignore
// case and surrounding space, and a blank name resolves to the default
// format: the first one registered unless SetDefault picked another.
type Registry struct {
	mu       sync.RWMutex
	formats  map[string]Renderer
	aliases  map[string]string
	order    []string
	fallback string
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		formats: make(map[string]Renderer),
		aliases: make(map[string]string),
	}
}

// Register adds renderer under its Name() plus any aliases. A name or alias
// already claimed by another format is rejected and nothing is added.
func (r *Registry) Register(renderer Renderer, aliases ...string) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	name := normalizeFormat(renderer.Name())
	if name == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.claimedLocked(name) {
		return fmt.Errorf("render: format %q already registered", name)
	}
	extra := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		alias = normalizeFormat(alias)
		if alias == "" || alias == name || slices.Contains(extra, alias) {
			continue
		}
		if r.claimedLocked(alias) {
			return fmt.Errorf("render: alias %q for %q already in use", alias, name)
		}
		extra = append(extra, alias)
	}

	r.formats[name] = renderer
	r.order = append(r.order, name)
	for _, alias := range extra {
		r.aliases[alias] = name
	}
	if r.fallback == "" {
		r.fallback = name
	}
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(renderer Renderer, aliases ...string) {
	if err := r.Register(renderer, aliases...); err != nil {
		panic(err)
	}
}

// SetDefault picks the format served for a blank name.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	canonical, ok := r.resolveLocked(name)
	if !ok {
		return r.unknownLocked(name)
	}
	r.fallback = canonical
	return nil
}

// Default reports the format served for a blank name, or "" when empty.
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// Resolve maps a name or alias to its canonical format name.
func (r *Registry) Resolve(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveLocked(name)
}

// Get retrieves the renderer for a name or alias.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	canonical, ok := r.resolveLocked(name)
	if !ok {
		return nil, r.unknownLocked(name)
	}
	return r.formats[canonical], nil
}

// List returns the canonical format names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked()
}

// Has reports whether a name or alias resolves to a format. Blank names are
// never reported as registered.
func (r *Registry) Has(name string) bool {
	if normalizeFormat(name) == "" {
		return false
	}
	_, ok := r.Resolve(name)
	return ok
}

func (r *Registry) resolveLocked(name string) (string, bool) {
	name = normalizeFormat(name)
	if name == "" {
		return r.fallback, r.fallback != ""
	}
	if _, ok := r.formats[name]; ok {
		return name, true
	}
	canonical, ok := r.aliases[name]
	return canonical, ok
}

func (r *Registry) claimedLocked(name string) bool {
	if _, ok := r.formats[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

func (r *Registry) unknownLocked(name string) error {
	available := "none"
	if len(r.order) > 0 {
		available = strings.Join(r.sortedLocked(), ", ")
	}
	return fmt.Errorf("%w %q (available: %s)", ErrUnknownFormat, strings.TrimSpace(name), available)
}

func (r *Registry) sortedLocked() []string {
	names := slices.Clone(r.order)
	slices.Sort(names)
	return names
}

func normalizeFormat(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
