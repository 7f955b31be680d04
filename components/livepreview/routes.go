package livepreview

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-docfill/pkg/session"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the full mount path for the component under basePath.
func MountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.RoutePath)
}

// RegisterRoutes registers the component under basePath on mux.
func RegisterRoutes(mux Mux, manager *session.Manager, basePath string, fns ...OptionFn) (string, error) {
	return RegisterRoutesWithOptions(mux, manager, basePath, NewOptions(fns...))
}

// RegisterRoutesWithOptions registers the component using a pre-built
// Options value. The returned pattern ends with a slash and matches every
// route below it.
func RegisterRoutesWithOptions(mux Mux, manager *session.Manager, basePath string, opts Options) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("livepreview: missing mux")
	}
	if manager == nil {
		return "", fmt.Errorf("livepreview: missing session manager")
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	prefix := mountPath(basePath, opts.RoutePath)
	pattern := strings.TrimRight(prefix, "/") + "/"
	mux.Handle(pattern, http.StripPrefix(strings.TrimRight(prefix, "/"), HandlerWithOptions(manager, opts)))
	return pattern, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
