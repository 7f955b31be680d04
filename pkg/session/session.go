package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-docfill/pkg/collab"
	"github.com/goliatone/go-docfill/pkg/conversation"
	"github.com/goliatone/go-docfill/pkg/field"
	"github.com/goliatone/go-docfill/pkg/guide"
	"github.com/goliatone/go-docfill/pkg/preview"
	"github.com/goliatone/go-docfill/pkg/values"
)

// ErrUnknownField is returned by session operations given an id the loaded
// document does not define.
var ErrUnknownField = errors.New("session: unknown field")

// Document is everything the upload collaborator produced for one file.
type Document struct {
	Name           string
	Fields         []field.Field
	Template       string
	Summary        collab.Summary
	AIHintsEnabled bool
}

// DocumentFromUpload converts an upload response into a Document. The marked
// template is sanitized before it is kept.
func DocumentFromUpload(result collab.UploadResult) Document {
	return Document{
		Name:           result.Filename,
		Fields:         result.Fields(),
		Template:       collab.SanitizeMarkup(result.MarkedHTML),
		Summary:        result.Summary,
		AIHintsEnabled: result.AIHintsEnabled,
	}
}

// FieldView is a read model of one field for presentation layers.
type FieldView struct {
	Field     field.Field `json:"field"`
	Label     string      `json:"label"`
	Draft     string      `json:"draft"`
	Canonical string      `json:"canonical"`
	Filled    bool        `json:"filled"`
	Current   bool        `json:"current"`
}

// Session owns all state for one loaded document. It is not safe for
// concurrent use.
type Session struct {
	id       string
	doc      Document
	registry *field.Registry
	store    *values.Store
	engine   *guide.Engine
	log      *conversation.Log
	router   *conversation.Router
	preview  *preview.Renderer
	opts     options
	logger   *zap.Logger
	exported *collab.ExportResult
}

// New builds a session for doc.
func New(doc Document, opts ...Option) (*Session, error) {
	cfg := options{
		logger:      zap.NewNop(),
		idGenerator: uuid.NewString,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	registry, err := field.NewRegistry(doc.Fields...)
	if err != nil {
		return nil, fmt.Errorf("session: build registry: %w", err)
	}

	renderer := cfg.renderer
	if renderer == nil {
		renderer, err = preview.New()
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}

	s := &Session{
		id:       cfg.idGenerator(),
		doc:      doc,
		registry: registry,
		store:    values.NewStore(registry),
		preview:  renderer,
		opts:     cfg,
	}
	s.logger = cfg.logger.With(zap.String("session", s.id), zap.String("document", doc.Name))

	guideOpts := []guide.Option{
		guide.WithFocusListener(func(id field.ID) { s.focus(id, FocusGuide) }),
		guide.WithGenericHint(cfg.genericHint),
	}
	if cfg.pacing != nil {
		guideOpts = append(guideOpts, guide.WithPacing(*cfg.pacing))
	}
	s.engine = guide.New(registry, s.store, guideOpts...)
	s.log = conversation.NewLog(conversation.WithIDGenerator(cfg.idGenerator))
	s.router = conversation.NewRouter(s.log, s.engine, conversation.WithHelpText(cfg.helpText))

	s.log.Append(conversation.Message{
		Role: conversation.RoleSystem,
		Kind: conversation.KindNotice,
		Text: loadedNotice(doc.Name, registry.Len()),
	})
	s.logger.Info("document loaded", zap.Int("fields", registry.Len()))
	return s, nil
}

func loadedNotice(name string, count int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "document"
	}
	noun := "fields"
	if count == 1 {
		noun = "field"
	}
	return fmt.Sprintf("Loaded %s with %d %s to fill.", name, count, noun)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Document returns the document the session was built from.
func (s *Session) Document() Document { return s.doc }

// Registry exposes the ordered field registry.
func (s *Session) Registry() *field.Registry { return s.registry }

// Store exposes the value store.
func (s *Session) Store() *values.Store { return s.store }

// Lookup resolves untrusted input to a field id.
func (s *Session) Lookup(raw string) (field.ID, bool) {
	return s.registry.Lookup(raw)
}

// EditField records raw as the field's draft.
func (s *Session) EditField(id field.ID, raw string) error {
	if !s.registry.Has(id) {
		return fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	s.store.SetDraft(id, raw)
	s.logger.Debug("field edited", zap.String("field", id.String()))
	s.focus(id, FocusEdit)
	return nil
}

// BlurField resynchronizes the draft after the field loses focus.
func (s *Session) BlurField(id field.ID) error {
	if !s.registry.Has(id) {
		return fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	s.store.CommitOnBlur(id)
	return nil
}

// StartGuide begins (or restarts) a guided pass from the top.
func (s *Session) StartGuide() {
	dropped := s.log.Discard()
	s.router.Emit(s.engine.Start())
	current, _ := s.engine.Current()
	s.logger.Debug("guide started",
		zap.String("state", s.engine.State().String()),
		zap.String("field", current.String()),
		zap.Int("dropped_prompts", dropped),
	)
}

// StopGuide leaves the guided pass without touching values.
func (s *Session) StopGuide() {
	s.engine.Stop()
	dropped := s.log.Discard()
	s.logger.Debug("guide stopped", zap.Int("dropped_prompts", dropped))
}

// GuideState reports the traversal state.
func (s *Session) GuideState() guide.State { return s.engine.State() }

// CurrentField returns the field the guide is waiting on.
func (s *Session) CurrentField() (field.ID, bool) { return s.engine.Current() }

// QuickFillDemo writes every field's demo value as if typed and blurred, in
// registry order. Fields without a demo value are left alone. It returns the
// number of fields written.
func (s *Session) QuickFillDemo() int {
	written := 0
	for _, f := range s.registry.Fields() {
		if strings.TrimSpace(f.DemoValue) == "" {
			continue
		}
		s.store.SetDraft(f.ID, f.DemoValue)
		s.store.CommitOnBlur(f.ID)
		written++
	}
	s.log.Append(conversation.Message{
		Role: conversation.RoleSystem,
		Kind: conversation.KindNotice,
		Text: fmt.Sprintf("Filled %d of %d fields with example values.", written, s.registry.Len()),
	})
	s.logger.Debug("demo values applied", zap.Int("written", written))
	return written
}

// SetChatInput replaces the pending chat input.
func (s *Session) SetChatInput(text string) { s.router.SetInput(text) }

// ChatInput returns the pending chat input.
func (s *Session) ChatInput() string { return s.router.Input() }

// SubmitChat handles a chat submission. It reports false for blank text.
func (s *Session) SubmitChat(text string) bool {
	return s.router.Submit(text)
}

// SubmitChatInput submits the pending chat input.
func (s *Session) SubmitChatInput() bool {
	return s.router.SubmitInput()
}

// Preview renders the marked template with current canonical values.
func (s *Session) Preview() (string, error) {
	return s.preview.Render(s.doc.Template, s.registry, s.store)
}

// PreviewPage renders the preview wrapped in a themed standalone page.
func (s *Session) PreviewPage() (string, error) {
	body, err := s.Preview()
	if err != nil {
		return "", err
	}
	return s.preview.Page(body, preview.PageOptions{
		Title: s.doc.Name,
		Stats: s.store.CompletionStats(),
		Theme: s.opts.theme,
	})
}

// PreviewText renders the preview as plain text.
func (s *Session) PreviewText() (string, error) {
	body, err := s.Preview()
	if err != nil {
		return "", err
	}
	return preview.Text(body)
}

// Stats returns completion accounting.
func (s *Session) Stats() values.Stats { return s.store.CompletionStats() }

// Messages returns the delivered conversation.
func (s *Session) Messages() []conversation.Message { return s.log.Messages() }

// MessagesSince returns messages delivered after seq.
func (s *Session) MessagesSince(seq int) []conversation.Message { return s.log.Since(seq) }

// Advance moves the conversation clock forward and returns newly delivered
// messages.
func (s *Session) Advance(d time.Duration) []conversation.Message { return s.log.Advance(d) }

// Flush delivers every pending message.
func (s *Session) Flush() []conversation.Message { return s.log.Flush() }

// NextDue reports the wait until the next pending message.
func (s *Session) NextDue() (time.Duration, bool) { return s.log.NextDue() }

// Notify appends a system notice to the conversation.
func (s *Session) Notify(text string) {
	s.log.Append(conversation.Message{Role: conversation.RoleSystem, Kind: conversation.KindNotice, Text: text})
}

// ExportRequest builds the export payload from canonical values.
func (s *Session) ExportRequest(alsoPDF bool) collab.ExportRequest {
	return collab.NewExportRequest(s.doc.Name, s.registry.Fields(), s.store.Canonical, alsoPDF)
}

// Exported returns the last successful export.
func (s *Session) Exported() (collab.ExportResult, bool) {
	if s.exported == nil {
		return collab.ExportResult{}, false
	}
	return *s.exported, true
}

func (s *Session) markExported(result collab.ExportResult) {
	s.exported = &result
}

// FieldViews lists every field with its current values.
func (s *Session) FieldViews() []FieldView {
	current, active := s.engine.Current()
	fields := s.registry.Fields()
	out := make([]FieldView, 0, len(fields))
	for _, f := range fields {
		v := s.store.Get(f.ID)
		out = append(out, FieldView{
			Field:     f,
			Label:     f.DisplayLabel(field.PromptFallback),
			Draft:     v.Draft,
			Canonical: v.Canonical,
			Filled:    s.store.IsFilled(f.ID),
			Current:   active && current == f.ID,
		})
	}
	return out
}

func (s *Session) focus(id field.ID, source FocusSource) {
	if s.opts.onFocus != nil {
		s.opts.onFocus(FocusEvent{FieldID: id, Source: source})
	}
}
