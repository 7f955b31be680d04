package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-docfill/pkg/collab"
)

var (
	// ErrNoSession is returned when an operation needs a loaded document.
	ErrNoSession = errors.New("session: no document loaded")
	// ErrNoUploader is returned by Load when no upload collaborator is set.
	ErrNoUploader = errors.New("session: upload collaborator not configured")
	// ErrNoExporter is returned by Export when no export collaborator is set.
	ErrNoExporter = errors.New("session: export collaborator not configured")
)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithSessionOptions applies opts to every session the manager builds.
func WithSessionOptions(opts ...Option) ManagerOption {
	return func(m *Manager) {
		m.sessionOpts = append(m.sessionOpts, opts...)
	}
}

// WithAlsoPDF asks the export collaborator for a PDF alongside the document.
func WithAlsoPDF(enabled bool) ManagerOption {
	return func(m *Manager) {
		m.alsoPDF = enabled
	}
}

// WithManagerLogger attaches a logger to the manager and, unless overridden,
// to the sessions it builds.
func WithManagerLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager holds the current session and mediates collaborator calls.
type Manager struct {
	mu          sync.RWMutex
	uploader    collab.Uploader
	exporter    collab.Exporter
	sessionOpts []Option
	alsoPDF     bool
	logger      *zap.Logger
	current     *Session
}

// NewManager constructs a manager. Either collaborator may be nil when the
// caller never needs it.
func NewManager(uploader collab.Uploader, exporter collab.Exporter, opts ...ManagerOption) *Manager {
	m := &Manager{
		uploader: uploader,
		exporter: exporter,
		alsoPDF:  true,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m
}

// Current returns the active session, or nil before the first load.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Load uploads a document and replaces the current session with a new one.
// On failure the previous session stays active.
func (m *Manager) Load(ctx context.Context, name string, body io.Reader) (*Session, error) {
	if m.uploader == nil {
		return nil, ErrNoUploader
	}
	result, err := m.uploader.Upload(ctx, name, body)
	if err != nil {
		m.logger.Warn("upload failed",
			zap.String("document", name),
			zap.Bool("retryable", collab.IsRetryable(err)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("session: load %s: %w", name, err)
	}
	return m.Replace(result)
}

// Replace builds a session from an upload result already in hand and makes
// it current.
func (m *Manager) Replace(result collab.UploadResult) (*Session, error) {
	opts := append([]Option{WithLogger(m.logger)}, m.sessionOpts...)
	s, err := New(DocumentFromUpload(result), opts...)
	if err != nil {
		m.logger.Warn("rejected upload result", zap.String("document", result.Filename), zap.Error(err))
		return nil, err
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	m.logger.Info("session replaced",
		zap.String("session", s.ID()),
		zap.String("document", result.Filename),
		zap.Int("fields", s.Registry().Len()),
	)
	return s, nil
}

// Export sends the current canonical values to the export collaborator. The
// result is recorded on the session only when the call succeeds.
func (m *Manager) Export(ctx context.Context) (collab.ExportResult, error) {
	s := m.Current()
	if s == nil {
		return collab.ExportResult{}, ErrNoSession
	}
	if m.exporter == nil {
		return collab.ExportResult{}, ErrNoExporter
	}

	result, err := m.exporter.Export(ctx, s.ExportRequest(m.alsoPDF))
	if err != nil {
		retryable := collab.IsRetryable(err)
		m.logger.Warn("export failed", zap.String("session", s.ID()), zap.Bool("retryable", retryable), zap.Error(err))
		notice := "Export failed."
		if retryable {
			notice = "Export failed. Please try again."
		}
		s.Notify(notice)
		return collab.ExportResult{}, fmt.Errorf("session: export: %w", err)
	}

	s.markExported(result)
	s.Notify("Export ready: " + result.FilledDocxURL)
	m.logger.Info("document exported",
		zap.String("session", s.ID()),
		zap.String("docx", result.FilledDocxURL),
		zap.String("pdf", result.FilledPDFURL),
	)
	return result, nil
}
