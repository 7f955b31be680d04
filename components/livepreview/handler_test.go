package livepreview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-docfill/pkg/collab"
	"github.com/goliatone/go-docfill/pkg/guide"
	"github.com/goliatone/go-docfill/pkg/session"
)

type stubExporter struct {
	result collab.ExportResult
	err    error
}

func (s *stubExporter) Export(context.Context, collab.ExportRequest) (collab.ExportResult, error) {
	return s.result, s.err
}

func fixture() collab.UploadResult {
	return collab.UploadResult{
		Success:  true,
		Filename: "nda.docx",
		Placeholders: []collab.Placeholder{
			{ID: "A", Type: "bracketed", LabelGuess: "Company", DemoValue: "Acme Corp", Line: 1},
			{ID: "B", Type: "signature_line", Label: "By", DemoValue: "Jane Doe", Line: 5},
		},
		MarkedHTML: `<p>Between __MARKER_A__.</p><p>By: __MARKER_B__</p>`,
	}
}

func newLoaded(t *testing.T, exporter collab.Exporter) (http.Handler, *session.Manager) {
	t.Helper()
	manager := session.NewManager(collab.NewStaticUploader(fixture()), exporter)
	_, err := manager.Replace(fixture())
	require.NoError(t, err)
	return Handler(manager), manager
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHandler_NoSessionConflicts(t *testing.T) {
	h := Handler(session.NewManager(nil, nil))

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/preview"},
		{http.MethodGet, "/state"},
		{http.MethodPost, "/guide"},
		{http.MethodPost, "/export"},
	} {
		rec := do(t, h, tc.method, tc.target, "")
		assert.Equal(t, http.StatusConflict, rec.Code, tc.target)
	}
}

func TestHandler_EditBlurAndPreview(t *testing.T) {
	h, _ := newLoaded(t, nil)

	rec := do(t, h, http.MethodPost, "/fields/A", `{"value":"  Acme \n Corp "}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	edited := decode[fieldResponse](t, rec)
	assert.Equal(t, "Acme Corp", edited.Field.Canonical)
	assert.Equal(t, "  Acme \n Corp ", edited.Field.Draft)
	assert.Equal(t, statsResponse{Filled: 1, Total: 2, Percent: 50}, edited.Stats)

	rec = do(t, h, http.MethodPost, "/fields/A/blur", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme Corp", decode[fieldResponse](t, rec).Field.Draft)

	rec = do(t, h, http.MethodGet, "/preview?format=fragment", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-field-id="A">Acme Corp</span>`)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))

	rec = do(t, h, http.MethodGet, "/preview?format=text", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Between Acme Corp.\nBy: [By]\n", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/preview", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 / 2 fields filled (50%)")

	rec = do(t, h, http.MethodGet, "/preview?format=TXT", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Between Acme Corp.\nBy: [By]\n", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/preview?format=docx", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_UnknownFieldIs404(t *testing.T) {
	h, _ := newLoaded(t, nil)

	rec := do(t, h, http.MethodPost, "/fields/Z", `{"value":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodPost, "/fields/Z/blur", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/fields/A", `{"val":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_GuideChatAndAdvance(t *testing.T) {
	h, _ := newLoaded(t, nil)

	rec := do(t, h, http.MethodPost, "/guide", "")
	require.Equal(t, http.StatusOK, rec.Code)
	started := decode[messagesResponse](t, rec)
	assert.Equal(t, guide.StateAwaiting.String(), started.Guide.State)
	assert.Equal(t, "A", started.Guide.CurrentField.String())
	require.Len(t, started.Messages, 1)

	rec = do(t, h, http.MethodPost, "/chat", `{"text":"   "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[messagesResponse](t, rec).Accepted)

	rec = do(t, h, http.MethodPost, "/chat", `{"text":"Acme"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	answered := decode[messagesResponse](t, rec)
	assert.True(t, answered.Accepted)
	assert.Equal(t, "B", answered.Guide.CurrentField.String())
	require.Len(t, answered.Messages, 2, "next prompt is paced")

	rec = do(t, h, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[stateResponse](t, rec).Pending)

	rec = do(t, h, http.MethodPost, "/advance?ms=100", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[messagesResponse](t, rec).Messages)

	rec = do(t, h, http.MethodPost, "/advance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	flushed := decode[messagesResponse](t, rec)
	require.Len(t, flushed.Messages, 1)
	assert.Equal(t, "B", flushed.Messages[0].FieldID.String())

	rec = do(t, h, http.MethodPost, "/advance?ms=-5", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_DemoAndState(t *testing.T) {
	h, _ := newLoaded(t, nil)

	rec := do(t, h, http.MethodPost, "/demo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	demo := decode[demoResponse](t, rec)
	assert.Equal(t, 2, demo.Written)
	assert.Equal(t, 100, demo.Stats.Percent)

	rec = do(t, h, http.MethodGet, "/state?since=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[stateResponse](t, rec)
	assert.Equal(t, "nda.docx", state.Document)
	require.Len(t, state.Fields, 2)
	assert.Equal(t, "Jane Doe", state.Fields[1].Canonical)
	require.Len(t, state.Messages, 1)
	assert.Nil(t, state.Exported)
}

func TestHandler_ExportFailureIsRetryable502(t *testing.T) {
	exporter := &stubExporter{err: &collab.Error{Op: "export", StatusCode: 503, Err: errors.New("unavailable")}}
	h, manager := newLoaded(t, exporter)

	rec := do(t, h, http.MethodPost, "/export", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode[errorResponse](t, rec)
	assert.True(t, body.Retryable)
	_, ok := manager.Current().Exported()
	assert.False(t, ok)

	exporter.err = nil
	exporter.result = collab.ExportResult{FilledDocxURL: "/api/file/nda.filled.docx"}
	rec = do(t, h, http.MethodPost, "/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/file/nda.filled.docx", decode[collab.ExportResult](t, rec).FilledDocxURL)

	rec = do(t, h, http.MethodGet, "/state", "")
	state := decode[stateResponse](t, rec)
	require.NotNil(t, state.Exported)
	assert.Equal(t, "/api/file/nda.filled.docx", state.Exported.FilledDocxURL)
}

func TestHandler_UploadReplacesSession(t *testing.T) {
	h, manager := newLoaded(t, nil)
	before := manager.Current()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "lease.docx")
	require.NoError(t, err)
	_, _ = part.Write([]byte("docx"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/document", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotSame(t, before, manager.Current())

	rec = do(t, h, http.MethodPost, "/document", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_GuardRejects(t *testing.T) {
	manager := session.NewManager(nil, nil)
	h := Handler(manager, WithGuard(func(*http.Request) error {
		return StatusError{Code: http.StatusUnauthorized}
	}))

	rec := do(t, h, http.MethodGet, "/state", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h, _ := newLoaded(t, nil)
	rec := do(t, h, http.MethodDelete, "/preview", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
