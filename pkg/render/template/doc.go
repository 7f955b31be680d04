// Package template defines the template rendering seam used by the preview
// renderer. The default implementation lives in the gotemplate subpackage and
// is backed by pongo2; callers may inject any TemplateRenderer.
package template
