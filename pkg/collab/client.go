package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout caps a single collaborator request.
const DefaultTimeout = 60 * time.Second

// Uploader sends a source document to the backend for placeholder detection.
type Uploader interface {
	Upload(ctx context.Context, name string, body io.Reader) (UploadResult, error)
}

// Exporter asks the backend to produce a filled document.
type Exporter interface {
	Export(ctx context.Context, req ExportRequest) (ExportResult, error)
}

// Downloader fetches a file produced by the backend.
type Downloader interface {
	Download(ctx context.Context, location string, w io.Writer) (int64, error)
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient injects the transport used for every request.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout caps request durations when the injected client has none.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.timeout = timeout
	}
}

// WithContract overrides the endpoint paths.
func WithContract(contract Contract) ClientOption {
	return func(c *HTTPClient) {
		c.contract = contract
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *HTTPClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// HTTPClient implements Uploader, Exporter and Downloader against the
// backend's REST API.
type HTTPClient struct {
	base     *url.URL
	http     *http.Client
	timeout  time.Duration
	contract Contract
	logger   *zap.Logger
}

var (
	_ Uploader   = (*HTTPClient)(nil)
	_ Exporter   = (*HTTPClient)(nil)
	_ Downloader = (*HTTPClient)(nil)
)

// NewHTTPClient builds a client rooted at baseURL. When baseURL is empty the
// contract's server is used.
func NewHTTPClient(baseURL string, options ...ClientOption) (*HTTPClient, error) {
	client := &HTTPClient{
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(client)
	}

	if client.contract == (Contract{}) {
		contract, err := DefaultContract(context.Background())
		if err != nil {
			return nil, err
		}
		client.contract = contract
	}

	if strings.TrimSpace(baseURL) == "" {
		baseURL = client.contract.Server
	}
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("collab: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("collab: base url %q must be absolute", baseURL)
	}
	client.base = base

	switch {
	case client.http == nil:
		client.http = &http.Client{Timeout: client.timeout}
	case client.http.Timeout == 0 && client.timeout > 0:
		clone := *client.http
		clone.Timeout = client.timeout
		client.http = &clone
	}
	return client, nil
}

// BaseURL returns the resolved backend root.
func (c *HTTPClient) BaseURL() string {
	return c.base.String()
}

// Upload posts the document as multipart form data under the "file" field.
func (c *HTTPClient) Upload(ctx context.Context, name string, body io.Reader) (UploadResult, error) {
	const op = "upload"
	if body == nil {
		return UploadResult{}, invalidRequest(op, errors.New("document body is nil"))
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", path.Base(name))
	if err != nil {
		return UploadResult{}, invalidRequest(op, err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return UploadResult{}, invalidRequest(op, fmt.Errorf("read document: %w", err))
	}
	if err := form.Close(); err != nil {
		return UploadResult{}, invalidRequest(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(c.contract.Upload), &buf)
	if err != nil {
		return UploadResult{}, invalidRequest(op, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var result UploadResult
	if err := c.doJSON(req, op, &result); err != nil {
		return UploadResult{}, err
	}
	if !result.Success {
		return UploadResult{}, &Error{Op: op, Err: ErrUploadRejected}
	}
	c.logger.Debug("document uploaded",
		zap.String("filename", result.Filename),
		zap.Int("placeholders", len(result.Placeholders)),
	)
	return result, nil
}

// Export posts the filled values as JSON.
func (c *HTTPClient) Export(ctx context.Context, payload ExportRequest) (ExportResult, error) {
	const op = "export"
	if strings.TrimSpace(payload.Filename) == "" {
		return ExportResult{}, ErrMissingFilename
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ExportResult{}, invalidRequest(op, fmt.Errorf("encode request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(c.contract.Export), bytes.NewReader(body))
	if err != nil {
		return ExportResult{}, invalidRequest(op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var result ExportResult
	if err := c.doJSON(req, op, &result); err != nil {
		return ExportResult{}, err
	}
	c.logger.Debug("document exported",
		zap.String("filename", payload.Filename),
		zap.String("docx", result.FilledDocxURL),
		zap.String("pdf", result.FilledPDFURL),
	)
	return result, nil
}

// Download streams a backend file into w. location may be an absolute URL, a
// path returned by Export, or a bare file name.
func (c *HTTPClient) Download(ctx context.Context, location string, w io.Writer) (int64, error) {
	const op = "download"
	location = strings.TrimSpace(location)
	if location == "" {
		return 0, invalidRequest(op, errors.New("location is required"))
	}
	if !strings.Contains(location, "/") {
		location = c.contract.DownloadPath(url.PathEscape(location))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(location), nil)
	if err != nil {
		return 0, invalidRequest(op, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return 0, &Error{Op: op, StatusCode: resp.StatusCode, Err: readDetail(resp.Body)}
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &Error{Op: op, Err: err}
	}
	return n, nil
}

func (c *HTTPClient) resolve(location string) string {
	ref, err := url.Parse(location)
	if err != nil {
		return c.base.String() + location
	}
	if ref.IsAbs() {
		return ref.String()
	}
	resolved := *c.base
	resolved.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	resolved.RawQuery = ref.RawQuery
	return resolved.String()
}

func (c *HTTPClient) doJSON(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("collaborator request failed", zap.String("op", op), zap.Error(err))
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		cerr := &Error{Op: op, StatusCode: resp.StatusCode, Err: readDetail(resp.Body)}
		c.logger.Warn("collaborator returned error", zap.String("op", op), zap.Int("status", resp.StatusCode), zap.Error(cerr.Err))
		return cerr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// readDetail extracts the backend's {"detail": "..."} error message.
func readDetail(body io.Reader) error {
	raw, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil {
		return fmt.Errorf("read error body: %w", err)
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Detail != "" {
		return errors.New(payload.Detail)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		text = "empty response"
	}
	return errors.New(text)
}
