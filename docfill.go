// Package docfill is the top-level entry point for filling document
// placeholders. It re-exports the most common types and wires the default
// collaborators so simple callers never import the sub-packages.
package docfill

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-docfill/pkg/collab"
	"github.com/goliatone/go-docfill/pkg/field"
	"github.com/goliatone/go-docfill/pkg/preview"
	"github.com/goliatone/go-docfill/pkg/render"
	"github.com/goliatone/go-docfill/pkg/session"
)

// Field aliases field.Field.
type Field = field.Field

// Session aliases session.Session.
type Session = session.Session

// Manager aliases session.Manager.
type Manager = session.Manager

// UploadResult aliases collab.UploadResult.
type UploadResult = collab.UploadResult

// NewManager connects a session manager to the collaborator backend at
// baseURL. An empty baseURL uses the server from the contract.
func NewManager(baseURL string, clientOpts []collab.ClientOption, opts ...session.ManagerOption) (*Manager, error) {
	client, err := collab.NewHTTPClient(baseURL, clientOpts...)
	if err != nil {
		return nil, err
	}
	return session.NewManager(client, client, opts...), nil
}

// NewOfflineManager answers uploads from a saved response and preloads a
// session from it. Export is unavailable.
func NewOfflineManager(result UploadResult, opts ...session.ManagerOption) (*Manager, error) {
	m := session.NewManager(collab.NewStaticUploader(result), nil, opts...)
	if _, err := m.Replace(result); err != nil {
		return nil, err
	}
	return m, nil
}

// Open builds a standalone session from an upload response.
func Open(result UploadResult, opts ...session.Option) (*Session, error) {
	return session.New(session.DocumentFromUpload(result), opts...)
}

// Render renders a session in one of the built-in formats: html, fragment
// or text.
func Render(ctx context.Context, s *Session, format string) ([]byte, error) {
	renderer, err := render.NewDefaultRegistry().Get(format)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, s)
}

// EmbeddedTemplates exposes the built-in preview templates so callers can
// copy or override them with preview.WithTemplatesFS.
func EmbeddedTemplates() fs.FS {
	return preview.TemplatesFS()
}
