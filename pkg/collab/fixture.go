package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrEmptyFixture is returned when an upload fixture has no content.
var ErrEmptyFixture = errors.New("collab: upload fixture is empty")

// ParseUpload decodes a saved upload response. JSON is tried first, then YAML.
func ParseUpload(data []byte) (UploadResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return UploadResult{}, ErrEmptyFixture
	}

	var result UploadResult
	jsonErr := json.Unmarshal(trimmed, &result)
	if jsonErr == nil {
		return result, nil
	}

	result = UploadResult{}
	if yamlErr := yaml.Unmarshal(trimmed, &result); yamlErr != nil {
		return UploadResult{}, fmt.Errorf("collab: decode upload fixture: json: %v; yaml: %w", jsonErr, yamlErr)
	}
	return result, nil
}

// LoadUploadFile reads and decodes an upload fixture from disk.
func LoadUploadFile(path string) (UploadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("collab: read upload fixture: %w", err)
	}
	result, err := ParseUpload(data)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w (%s)", err, path)
	}
	return result, nil
}

// StaticUploader answers every upload with a fixed result. It lets the CLI
// and tests run without a backend. The document body is drained and ignored.
type StaticUploader struct {
	mu     sync.RWMutex
	result UploadResult
}

var _ Uploader = (*StaticUploader)(nil)

// NewStaticUploader wraps result.
func NewStaticUploader(result UploadResult) *StaticUploader {
	return &StaticUploader{result: result}
}

// Set swaps the result served to later uploads.
func (s *StaticUploader) Set(result UploadResult) {
	s.mu.Lock()
	s.result = result
	s.mu.Unlock()
}

// Upload implements Uploader.
func (s *StaticUploader) Upload(ctx context.Context, name string, body io.Reader) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, &Error{Op: "upload", Err: err}
	}
	if body != nil {
		if _, err := io.Copy(io.Discard, body); err != nil {
			return UploadResult{}, invalidRequest("upload", fmt.Errorf("read document: %w", err))
		}
	}

	s.mu.RLock()
	result := s.result
	s.mu.RUnlock()

	if result.Filename == "" {
		result.Filename = name
	}
	result.Placeholders = append([]Placeholder(nil), result.Placeholders...)
	return result, nil
}
