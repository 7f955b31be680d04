// Package testsupport holds shared fixtures and golden-file helpers for tests.
package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docfill/pkg/collab"
	"github.com/goliatone/go-docfill/pkg/session"
)

// SampleUpload returns a small upload response with two bracketed
// placeholders and one signature line.
func SampleUpload() collab.UploadResult {
	return collab.UploadResult{
		Success:  true,
		Filename: "safe.docx",
		Placeholders: []collab.Placeholder{
			{ID: "A", Type: "bracketed", Value: "[Company]", LabelGuess: "Company", Hint: "Legal name", DemoValue: "Acme Corp", Line: 1},
			{ID: "B", Type: "bracketed", Value: "$[_____]", LabelGuess: "Purchase Amount", Hint: "USD", DemoValue: "$100,000", Line: 2},
			{ID: "C", Type: "signature_line", Label: "By", Line: 9},
		},
		Summary:    collab.Summary{Total: 3, Bracketed: 2, SignatureLines: 1},
		MarkedHTML: `<p>Between __MARKER_A__ and you.</p><p>Amount: __MARKER_B__</p><p>By: __MARKER_C__</p>`,
	}
}

// LoadUpload reads a saved upload response (JSON or YAML).
func LoadUpload(t *testing.T, path string) collab.UploadResult {
	t.Helper()

	result, err := collab.LoadUploadFile(path)
	if err != nil {
		t.Fatalf("load upload: %v", err)
	}
	return result
}

// NewSession builds a session from an upload response.
func NewSession(t *testing.T, result collab.UploadResult, opts ...session.Option) *session.Session {
	t.Helper()

	s, err := session.New(session.DocumentFromUpload(result), opts...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
