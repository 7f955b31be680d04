// Package watch reloads a single file when it changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses bursts of writes from editors into one reload.
const DefaultDebounce = 200 * time.Millisecond

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounce overrides the settle window.
func WithDebounce(d time.Duration) Option {
	return func(w *FileWatcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *FileWatcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// FileWatcher reports changes to one file. It watches the parent directory so
// editors that save by rename are still seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   *zap.Logger
}

// New starts watching path.
func New(path string, opts ...Option) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch: add %s: %w", filepath.Dir(abs), err)
	}

	w := &FileWatcher{
		watcher:  fw,
		path:     abs,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(w)
	}
	return w, nil
}

// Path returns the absolute watched path.
func (w *FileWatcher) Path() string {
	return w.path
}

// Run calls onChange once per settled burst of create, write or rename events
// on the file. It blocks until ctx is done or the watcher is closed.
func (w *FileWatcher) Run(ctx context.Context, onChange func(path string)) error {
	if onChange == nil {
		return errors.New("watch: onChange is required")
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("file event", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange(w.path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// Close stops watching.
func (w *FileWatcher) Close() error {
	return w.watcher.Close()
}
