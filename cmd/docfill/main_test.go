package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/goliatone/go-docfill/pkg/prompt"
)

type scriptedDriver struct {
	answers []string
	infos   []string
}

func (d *scriptedDriver) Input(context.Context, prompt.InputConfig) (string, error) {
	if len(d.answers) == 0 {
		return "", nil
	}
	next := d.answers[0]
	d.answers = d.answers[1:]
	return next, nil
}

func (d *scriptedDriver) Confirm(context.Context, prompt.ConfirmConfig) (bool, error) {
	return true, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func writeDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "safe.docx")
	if err := os.WriteFile(path, []byte("docx bytes"), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return path
}

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	if a == nil {
		a = &app{logger: zap.NewNop()}
	}
	cmd := newRootCommand(a)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPreviewCommand_TextWithDemo(t *testing.T) {
	doc := writeDocument(t)
	out, err := execute(t, nil, "preview", doc, "--fixture", "testdata/upload.json", "--demo", "--format", "text")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(out, "Between Acme Corp and you.") {
		t.Fatalf("expected demo value in preview, got:\n%s", out)
	}
	if !strings.Contains(out, "[Purchase Amount]") {
		t.Fatalf("expected pending placeholder in preview, got:\n%s", out)
	}
}

func TestPreviewCommand_WritesHTMLFile(t *testing.T) {
	doc := writeDocument(t)
	target := filepath.Join(t.TempDir(), "out", "preview.html")
	if _, err := execute(t, nil, "preview", doc, "--fixture", "testdata/upload.json", "-o", target); err != nil {
		t.Fatalf("preview: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `data-field-id="A"`) {
		t.Fatalf("expected rendered fields in page, got:\n%s", data)
	}
}

func TestPreviewCommand_UnknownFormat(t *testing.T) {
	doc := writeDocument(t)
	if _, err := execute(t, nil, "preview", doc, "--fixture", "testdata/upload.json", "--format", "pdf"); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestFillCommand_CollectsAnswers(t *testing.T) {
	doc := writeDocument(t)
	driver := &scriptedDriver{answers: []string{"  Acme   Inc ", "100", "Jane Doe"}}
	a := &app{logger: zap.NewNop(), driver: driver}

	previewPath := filepath.Join(t.TempDir(), "filled.html")
	out, err := execute(t, a, "fill", doc, "--fixture", "testdata/upload.json", "--format", "json", "--preview", previewPath)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !strings.Contains(out, `{"A":"Acme Inc","B":"100","C":"Jane Doe"}`) {
		t.Fatalf("expected serialized values, got:\n%s", out)
	}
	if !strings.Contains(out, "3/3 fields (100%)") {
		t.Fatalf("expected progress line, got:\n%s", out)
	}
	if len(driver.infos) == 0 || !strings.HasPrefix(driver.infos[0], "> ") {
		t.Fatalf("expected assistant prompt first, got %v", driver.infos)
	}

	page, err := os.ReadFile(previewPath)
	if err != nil {
		t.Fatalf("read preview: %v", err)
	}
	if !strings.Contains(string(page), "Acme Inc") {
		t.Fatalf("expected filled value in preview page")
	}
}

func TestFillCommand_RejectsUnknownFormat(t *testing.T) {
	doc := writeDocument(t)
	a := &app{logger: zap.NewNop(), driver: &scriptedDriver{}}
	if _, err := execute(t, a, "fill", doc, "--fixture", "testdata/upload.json", "--format", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestServeCommand_WatchNeedsFixture(t *testing.T) {
	_, err := execute(t, nil, "serve", "--watch")
	if err == nil || !strings.Contains(err.Error(), "--watch requires --fixture") {
		t.Fatalf("expected watch error, got %v", err)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "docfill.yaml")
	if err := os.WriteFile(cfgPath, []byte("collaborator:\n  base_url: http://config.example\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	a := &app{logger: zap.NewNop()}
	doc := writeDocument(t)
	if _, err := execute(t, a, "--config", cfgPath, "--base-url", "http://flag.example", "preview", doc, "--fixture", "testdata/upload.json"); err != nil {
		t.Fatalf("preview: %v", err)
	}
	if a.cfg.Collaborator.BaseURL != "http://flag.example" {
		t.Fatalf("expected flag to win, got %q", a.cfg.Collaborator.BaseURL)
	}
}

func TestDownloadName(t *testing.T) {
	cases := map[string]string{
		"/api/file/filled.docx":                  "filled.docx",
		"http://localhost:8000/api/file/out.pdf": "out.pdf",
		"filled.docx":                            "filled.docx",
		"":                                       "download",
	}
	for in, want := range cases {
		if got := downloadName(in); got != want {
			t.Fatalf("downloadName(%q) = %q, want %q", in, got, want)
		}
	}
}
