package preview

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-docfill/pkg/values"
)

// PageOptions describes the standalone page wrapped around a rendered body.
type PageOptions struct {
	Title string
	Stats values.Stats
	Theme *theme.RendererConfig
}

// Page wraps a rendered preview body into a complete HTML document carrying
// progress information and theme variables.
func (r *Renderer) Page(body string, opts PageOptions) (string, error) {
	if r == nil || r.templates == nil {
		return "", fmt.Errorf("preview: template renderer is nil")
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Document preview"
	}

	data := map[string]any{
		"title":      title,
		"body":       body,
		"filled":     opts.Stats.Filled,
		"total":      opts.Stats.Total,
		"percent":    opts.Stats.Percent(),
		"css_vars":   "",
		"stylesheet": "",
		"theme":      "",
		"variant":    "",
	}
	if cfg := opts.Theme; cfg != nil {
		data["theme"] = cfg.Theme
		data["variant"] = cfg.Variant
		data["css_vars"] = cssVars(cfg)
		if cfg.AssetURL != nil {
			data["stylesheet"] = cfg.AssetURL(StylesheetAsset)
		}
	}

	out, err := r.templates.RenderTemplate(pageTemplate, data)
	if err != nil {
		return "", fmt.Errorf("preview: render page: %w", err)
	}
	return out, nil
}

func cssVars(cfg *theme.RendererConfig) string {
	vars := make(map[string]string, len(cfg.CSSVars)+len(cfg.Tokens))
	for key, value := range cfg.Tokens {
		vars["--"+strings.TrimPrefix(key, "--")] = value
	}
	for key, value := range cfg.CSSVars {
		vars[key] = value
	}
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteByte(';')
	}
	return b.String()
}
