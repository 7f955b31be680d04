package livepreview

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-docfill/pkg/render"
)

// GuardFunc authorizes a request before it reaches the session.
type GuardFunc func(r *http.Request) error

// Options configures the component.
type Options struct {
	RoutePath    string
	FormatParam  string
	MaxBodyBytes int64
	Guard        GuardFunc
	Formats      *render.Registry
	Logger       *zap.Logger
}

// OptionFn mutates Options.
type OptionFn func(*Options)

const (
	defaultRoutePath    = "/api/docfill"
	defaultFormatParam  = "format"
	defaultMaxBodyBytes = 32 << 20
)

// DefaultOptions returns the defaults used when no overrides are given.
func DefaultOptions() Options {
	return Options{
		RoutePath:    defaultRoutePath,
		FormatParam:  defaultFormatParam,
		MaxBodyBytes: defaultMaxBodyBytes,
	}
}

// NewOptions applies fns over the defaults and fills anything left empty.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = defaultRoutePath
	}
	if opts.FormatParam == "" {
		opts.FormatParam = defaultFormatParam
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.Formats == nil {
		opts.Formats = render.NewDefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithFormatParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.FormatParam = name
	}
}

// WithMaxBodyBytes caps request bodies, including uploads.
func WithMaxBodyBytes(n int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = n
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithFormats replaces the output format registry used by /preview.
func WithFormats(formats *render.Registry) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Formats = formats
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}
