package livepreview

import (
	"net/http"

	"github.com/goliatone/go-docfill/pkg/session"
)

// Component bundles a session manager with its handler configuration and
// routing helpers.
type Component struct {
	manager *session.Manager
	opts    Options
}

// New constructs a component with default options plus any overrides.
func New(manager *session.Manager, fns ...OptionFn) *Component {
	return &Component{manager: manager, opts: NewOptions(fns...)}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return NewOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Manager returns the session manager the component serves.
func (c *Component) Manager() *session.Manager {
	if c == nil {
		return nil
	}
	return c.manager
}

// Handler returns the relative-route handler.
func (c *Component) Handler() http.Handler {
	if c == nil {
		return Handler(nil)
	}
	return HandlerWithOptions(c.manager, c.opts)
}

// RegisterRoutes registers the component under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if c == nil {
		return RegisterRoutes(mux, nil, basePath)
	}
	return RegisterRoutesWithOptions(mux, c.manager, basePath, c.opts)
}
