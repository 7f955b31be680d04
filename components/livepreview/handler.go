package livepreview

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-docfill/pkg/collab"
	"github.com/goliatone/go-docfill/pkg/conversation"
	"github.com/goliatone/go-docfill/pkg/field"
	"github.com/goliatone/go-docfill/pkg/session"
	"github.com/goliatone/go-docfill/pkg/values"
)

// HTTPError lets guards and internal failures pick a status code.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError pairs an error with an HTTP status.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

type statsResponse struct {
	Filled  int `json:"filled"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

type guideResponse struct {
	State        string   `json:"state"`
	CurrentField field.ID `json:"current_field,omitempty"`
}

type stateResponse struct {
	SessionID string                 `json:"session_id"`
	Document  string                 `json:"document"`
	Stats     statsResponse          `json:"stats"`
	Guide     guideResponse          `json:"guide"`
	Fields    []session.FieldView    `json:"fields"`
	Messages  []conversation.Message `json:"messages"`
	Pending   bool                   `json:"pending"`
	Exported  *collab.ExportResult   `json:"exported,omitempty"`
}

type fieldResponse struct {
	Field session.FieldView `json:"field"`
	Stats statsResponse     `json:"stats"`
}

type messagesResponse struct {
	Accepted bool                   `json:"accepted"`
	Messages []conversation.Message `json:"messages"`
	Guide    guideResponse          `json:"guide"`
	Stats    statsResponse          `json:"stats"`
}

type demoResponse struct {
	Written int           `json:"written"`
	Stats   statsResponse `json:"stats"`
}

type valueRequest struct {
	Value string `json:"value"`
}

type chatRequest struct {
	Text string `json:"text"`
}

type handler struct {
	mu      sync.Mutex
	manager *session.Manager
	opts    Options
	logger  *zap.Logger
}

// Handler builds the component handler with default options plus overrides.
func Handler(manager *session.Manager, fns ...OptionFn) http.Handler {
	return HandlerWithOptions(manager, NewOptions(fns...))
}

// HandlerWithOptions builds the handler from a pre-constructed Options value.
// Routes are relative; mount the result under a prefix with RegisterRoutes.
func HandlerWithOptions(manager *session.Manager, opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	h := &handler{manager: manager, opts: opts, logger: opts.Logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /preview", h.preview)
	mux.HandleFunc("GET /state", h.state)
	mux.HandleFunc("POST /document", h.upload)
	mux.HandleFunc("POST /fields/{id}", h.editField)
	mux.HandleFunc("POST /fields/{id}/blur", h.blurField)
	mux.HandleFunc("POST /guide", h.startGuide)
	mux.HandleFunc("POST /chat", h.chat)
	mux.HandleFunc("POST /demo", h.demo)
	mux.HandleFunc("POST /advance", h.advance)
	mux.HandleFunc("POST /export", h.export)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes)
		}
		mux.ServeHTTP(w, r)
	})
}

func (h *handler) current(w http.ResponseWriter) *session.Session {
	if h.manager == nil {
		writeError(w, StatusError{Code: http.StatusConflict, Err: session.ErrNoSession}, false)
		return nil
	}
	s := h.manager.Current()
	if s == nil {
		writeError(w, StatusError{Code: http.StatusConflict, Err: session.ErrNoSession}, false)
		return nil
	}
	return s
}

func (h *handler) lookup(w http.ResponseWriter, r *http.Request, s *session.Session) (field.ID, bool) {
	raw := r.PathValue("id")
	id, ok := s.Lookup(raw)
	if !ok {
		writeError(w, StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("%w: %q", session.ErrUnknownField, raw)}, false)
		return "", false
	}
	return id, true
}

func (h *handler) preview(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.current(w)
	if s == nil {
		return
	}
	renderer, err := h.opts.Formats.Get(r.URL.Query().Get(h.opts.FormatParam))
	if err != nil {
		writeError(w, StatusError{Code: http.StatusBadRequest, Err: err}, false)
		return
	}
	out, err := renderer.Render(r.Context(), s)
	if err != nil {
		h.logger.Error("preview render failed", zap.String("format", renderer.Name()), zap.Error(err))
		writeError(w, StatusError{Code: http.StatusInternalServerError, Err: err}, false)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (h *handler) state(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.current(w)
	if s == nil {
		return
	}
	since := parseInt(r.URL.Query().Get("since"))
	_, pending := s.NextDue()

	resp := stateResponse{
		SessionID: s.ID(),
		Document:  s.Document().Name,
		Stats:     stats(s.Stats()),
		Guide:     guideState(s),
		Fields:    s.FieldViews(),
		Messages:  nonNil(s.MessagesSince(since)),
		Pending:   pending,
	}
	if exported, ok := s.Exported(); ok {
		resp.Exported = &exported
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) upload(w http.ResponseWriter, r *http.Request) {
	if h.manager == nil {
		writeError(w, StatusError{Code: http.StatusServiceUnavailable, Err: session.ErrNoUploader}, false)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("file is required: %w", err)}, false)
		return
	}
	defer file.Close()

	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.manager.Load(r.Context(), header.Filename, file)
	if err != nil {
		h.writeCollabError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stateResponse{
		SessionID: s.ID(),
		Document:  s.Document().Name,
		Stats:     stats(s.Stats()),
		Guide:     guideState(s),
		Fields:    s.FieldViews(),
		Messages:  nonNil(s.Messages()),
	})
}

func (h *handler) editField(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, StatusError{Code: http.StatusBadRequest, Err: err}, false)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.current(w)
	if s == nil {
		return
	}
	id, ok := h.lookup(w, r, s)
	if !ok {
		return
	}
	if err := s.EditField(id, req.Value); err != nil {
		writeError(w, StatusError{Code: http.StatusNotFound, Err: err}, false)
		return
	}
	writeJSON(w, http.StatusOK, fieldResponse{Field: fieldView(s, id), Stats: stats(s.Stats())})
}

func (h *handler) blurField(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.current(w)
	if s == nil {
		return
	}
	id, ok := h.lookup(w, r, s)
	if !ok {
		return
	}
	if err := s.BlurField(id); err != nil {
		writeError(w, StatusError{Code: http.StatusNotFound, Err: err}, false)
		return
	}
	writeJSON(w, http.StatusOK, fieldResponse{Field: fieldView(s, id), Stats: stats(s.Stats())})
}

func (h *handler) startGuide(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.current(w)
	if s == nil {
		return
	}
	seq := lastSeq(s)
	s.StartGuide()
	writeJSON(w, http.StatusOK, messagesFor(s, seq, true))
}

func (h *handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, StatusError{Code: http.StatusBadRequest, Err: err}, false)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.current(w)
	if s == nil {
		return
	}
	seq := lastSeq(s)
	accepted := s.SubmitChat(req.Text)
	writeJSON(w, http.StatusOK, messagesFor(s, seq, accepted))
}

func (h *handler) demo(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.current(w)
	if s == nil {
		return
	}
	written := s.QuickFillDemo()
	writeJSON(w, http.StatusOK, demoResponse{Written: written, Stats: stats(s.Stats())})
}

// advance moves the conversation clock by ?ms=N, or delivers everything
// pending when ms is absent.
func (h *handler) advance(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("ms"))
	ms := 0
	if raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("invalid ms %q", raw)}, false)
			return
		}
		ms = parsed
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.current(w)
	if s == nil {
		return
	}
	var delivered []conversation.Message
	if raw == "" {
		delivered = s.Flush()
	} else {
		delivered = s.Advance(time.Duration(ms) * time.Millisecond)
	}
	writeJSON(w, http.StatusOK, messagesResponse{
		Accepted: true,
		Messages: nonNil(delivered),
		Guide:    guideState(s),
		Stats:    stats(s.Stats()),
	})
}

func (h *handler) export(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s := h.current(w); s == nil {
		return
	}
	result, err := h.manager.Export(r.Context())
	if err != nil {
		h.writeCollabError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) writeCollabError(w http.ResponseWriter, err error) {
	var cerr *collab.Error
	switch {
	case errors.As(err, &cerr):
		h.logger.Warn("collaborator failure", zap.String("op", cerr.Op), zap.Error(err))
		writeError(w, StatusError{Code: http.StatusBadGateway, Err: err}, cerr.Retryable())
	case errors.Is(err, session.ErrNoSession):
		writeError(w, StatusError{Code: http.StatusConflict, Err: err}, false)
	case errors.Is(err, session.ErrNoExporter), errors.Is(err, session.ErrNoUploader):
		writeError(w, StatusError{Code: http.StatusServiceUnavailable, Err: err}, false)
	default:
		writeError(w, StatusError{Code: http.StatusUnprocessableEntity, Err: err}, false)
	}
}

func messagesFor(s *session.Session, seq int, accepted bool) messagesResponse {
	return messagesResponse{
		Accepted: accepted,
		Messages: nonNil(s.MessagesSince(seq)),
		Guide:    guideState(s),
		Stats:    stats(s.Stats()),
	}
}

func fieldView(s *session.Session, id field.ID) session.FieldView {
	for _, v := range s.FieldViews() {
		if v.Field.ID == id {
			return v
		}
	}
	return session.FieldView{}
}

func guideState(s *session.Session) guideResponse {
	current, _ := s.CurrentField()
	return guideResponse{State: s.GuideState().String(), CurrentField: current}
}

func stats(st values.Stats) statsResponse {
	return statsResponse{Filled: st.Filled, Total: st.Total, Percent: st.Percent()}
}

func lastSeq(s *session.Session) int {
	msgs := s.Messages()
	if len(msgs) == 0 {
		return 0
	}
	return msgs[len(msgs)-1].Seq
}

func nonNil(msgs []conversation.Message) []conversation.Message {
	if msgs == nil {
		return []conversation.Message{}
	}
	return msgs
}

func decodeJSON(body io.Reader, out any) error {
	if body == nil {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, err HTTPError, retryable bool) {
	writeJSON(w, err.StatusCode(), errorResponse{Error: err.Error(), Retryable: retryable})
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
