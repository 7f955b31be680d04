package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-docfill/components/livepreview"
	"github.com/goliatone/go-docfill/internal/watch"
	"github.com/goliatone/go-docfill/pkg/collab"
	"github.com/goliatone/go-docfill/pkg/session"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	fixture  string
	watch    bool
	addr     string
	basePath string
}

func newServeCmd(a *app) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live preview API",
		Long: `Serve the live preview HTTP API. Documents are uploaded with
POST <base>/document; --fixture preloads a saved upload response and --watch
reloads it whenever the file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.fixture, "fixture", "", "saved upload response (JSON or YAML) to preload")
	flags.BoolVar(&opts.watch, "watch", false, "reload --fixture when it changes")
	flags.StringVar(&opts.addr, "addr", ":8080", "listen address")
	flags.StringVar(&opts.basePath, "base-path", "", "path prefix for the API routes")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, opts *serveOptions) error {
	ctx := cmd.Context()
	if opts.watch && opts.fixture == "" {
		return errors.New("--watch requires --fixture")
	}

	client, err := a.client(ctx)
	if err != nil {
		return err
	}
	manager, static, err := a.manager(client, opts.fixture)
	if err != nil {
		return err
	}
	if opts.fixture != "" {
		if _, err := a.reload(manager, static, opts.fixture); err != nil {
			return err
		}
	}

	mux := http.NewServeMux()
	component := livepreview.New(manager, livepreview.WithLogger(a.logger.Named("livepreview")))
	mounted, err := component.RegisterRoutes(mux, opts.basePath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.watch {
		watcher, err := watch.New(opts.fixture, watch.WithLogger(a.logger.Named("watch")))
		if err != nil {
			return err
		}
		defer watcher.Close()
		go func() {
			err := watcher.Run(ctx, func(path string) {
				if _, err := a.reload(manager, static, path); err != nil {
					a.logger.Warn("fixture reload failed", zap.Error(err))
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn("watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("docfill live preview"), mutedStyle.Render("on "+opts.addr+mounted))
	a.logger.Info("serving", zap.String("addr", opts.addr), zap.String("routes", mounted))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

// reload reads the fixture and swaps in a fresh session built from it.
func (a *app) reload(manager *session.Manager, static *collab.StaticUploader, path string) (*session.Session, error) {
	result, err := collab.LoadUploadFile(path)
	if err != nil {
		return nil, err
	}
	if static != nil {
		static.Set(result)
	}
	s, err := manager.Replace(result)
	if err != nil {
		return nil, err
	}
	a.logger.Info("fixture loaded", zap.String("path", path), zap.Int("fields", s.Registry().Len()))
	return s, nil
}
