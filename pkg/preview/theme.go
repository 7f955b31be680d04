package preview

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// DefaultThemeName is the built-in manifest shipped with the preview page.
const DefaultThemeName = "docfill"

// DefaultManifest describes the built-in light and dark palettes.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"docfill-filled":       "#e7f6ec",
			"docfill-pending":      "#fff3cd",
			"docfill-pending-text": "#8a6d3b",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"docfill-filled":       "#14532d",
					"docfill-pending":      "#422006",
					"docfill-pending-text": "#fcd34d",
				},
			},
		},
	}
}

// ThemeSelector resolves theme and variant names against a fixed set of
// manifests. Empty names fall back to the configured defaults.
type ThemeSelector struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*ThemeSelector)(nil)

// NewThemeSelector registers manifests with a go-theme registry, which
// rejects invalid or duplicate entries, and indexes them by name. The first
// manifest becomes the default theme.
func NewThemeSelector(manifests ...*theme.Manifest) (*ThemeSelector, error) {
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{DefaultManifest()}
	}
	registry := theme.NewRegistry()
	sel := &ThemeSelector{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, m := range manifests {
		if m == nil {
			continue
		}
		if err := registry.Register(m); err != nil {
			return nil, fmt.Errorf("preview: register theme %q: %w", m.Name, err)
		}
		sel.manifests[m.Name] = m
		if sel.defaultTheme == "" {
			sel.defaultTheme = m.Name
		}
	}
	return sel, nil
}

// WithDefaults sets the theme and variant used for empty selections.
func (s *ThemeSelector) WithDefaults(name, variant string) *ThemeSelector {
	if strings.TrimSpace(name) != "" {
		s.defaultTheme = strings.TrimSpace(name)
	}
	s.defaultVariant = strings.TrimSpace(variant)
	return s
}

// Names lists the registered themes.
func (s *ThemeSelector) Names() []string {
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select implements theme.ThemeSelector.
func (s *ThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultTheme
	}
	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = s.defaultVariant
	}

	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("preview: unknown theme %q", name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("preview: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// ThemeConfig flattens a selection into the configuration Page consumes.
// Variant tokens, templates and assets override the manifest's.
func ThemeConfig(sel *theme.Selection) *theme.RendererConfig {
	if sel == nil || sel.Manifest == nil {
		return nil
	}
	m := sel.Manifest
	variant := m.Variants[sel.Variant]

	tokens := merge(m.Tokens, variant.Tokens)
	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	prefix := m.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}
	files := merge(m.Assets.Files, variant.Assets.Files)

	return &theme.RendererConfig{
		Theme:    sel.Theme,
		Variant:  sel.Variant,
		Partials: merge(m.Templates, variant.Templates),
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if prefix == "" || strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
				return file
			}
			return strings.TrimRight(prefix, "/") + "/" + file
		},
	}
}

func merge(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
