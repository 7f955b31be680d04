package session

import (
	"time"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-docfill/pkg/field"
	"github.com/goliatone/go-docfill/pkg/preview"
)

// FocusSource tells a presentation layer why a field gained focus.
type FocusSource string

const (
	FocusEdit  FocusSource = "edit"
	FocusGuide FocusSource = "guide"
)

// FocusEvent describes which field should be highlighted. It carries no
// rendering concerns.
type FocusEvent struct {
	FieldID field.ID    `json:"field_id"`
	Source  FocusSource `json:"source"`
}

// Option configures a Session.
type Option func(*options)

type options struct {
	logger      *zap.Logger
	onFocus     func(FocusEvent)
	pacing      *time.Duration
	helpText    string
	genericHint string
	renderer    *preview.Renderer
	theme       *theme.RendererConfig
	idGenerator func() string
}

// WithLogger attaches a logger. Sessions log nothing by default.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithFocusListener receives a FocusEvent whenever a field is edited or the
// guide moves to a field.
func WithFocusListener(fn func(FocusEvent)) Option {
	return func(o *options) {
		o.onFocus = fn
	}
}

// WithPacing sets the delay before the guide's next prompt is delivered.
func WithPacing(d time.Duration) Option {
	return func(o *options) {
		o.pacing = &d
	}
}

// WithHelpText overrides the chat reply used outside a guided pass.
func WithHelpText(text string) Option {
	return func(o *options) {
		o.helpText = text
	}
}

// WithGenericHint overrides the guidance text for fields without a long hint.
func WithGenericHint(text string) Option {
	return func(o *options) {
		o.genericHint = text
	}
}

// WithPreviewRenderer shares a preview renderer between sessions.
func WithPreviewRenderer(renderer *preview.Renderer) Option {
	return func(o *options) {
		if renderer != nil {
			o.renderer = renderer
		}
	}
}

// WithTheme applies a resolved go-theme configuration to full preview pages.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(o *options) {
		o.theme = cfg
	}
}

// WithIDGenerator replaces uuid generation for session and message ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.idGenerator = fn
		}
	}
}
