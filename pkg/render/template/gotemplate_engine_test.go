package template_test

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-docfill/pkg/render/template/gotemplate"
	"github.com/goliatone/go-docfill/pkg/testsupport"
)

//go:embed testdata/templates/*.tpl
var embeddedTemplates embed.FS

func TestEngine_RenderTemplateWritesToOutputs(t *testing.T) {
	engine := newEngine(t)

	var buf bytes.Buffer
	result, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "hello.golden"))
	if diff := testsupport.CompareGolden(want, result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	if buf.String() != result {
		t.Fatalf("writer got %q, want %q", buf.String(), result)
	}
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-global.golden"))
	if result != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}

	result, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-filter.golden"))
	if result != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestEngine_AutoescapesAndTrims(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.RenderTemplate("use-trim", map[string]any{"raw": "  <b>x</b>  "})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "[&lt;b&gt;x&lt;/b&gt;]" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestEngine_RenderString(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.RenderString("{{ a }}-{{ b }}", map[string]string{"a": "x", "b": "2"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if result != "x-2" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestEngine_LaterSourcesShadowEarlier(t *testing.T) {
	override := fstest.MapFS{
		"hello.tpl": &fstest.MapFile{Data: []byte("Hi {{ name }}")},
	}
	engine, err := gotemplate.New(
		gotemplate.WithFS(templatesFS(t)),
		gotemplate.WithFS(override),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	result, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "Hi Ada" {
		t.Fatalf("expected override template, got %q", result)
	}
	if _, err := engine.RenderTemplate("use-trim", map[string]any{"raw": "x"}); err != nil {
		t.Fatalf("base template should still resolve: %v", err)
	}
}

func TestEngine_Errors(t *testing.T) {
	if _, err := gotemplate.New(); !errors.Is(err, gotemplate.ErrNoTemplates) {
		t.Fatalf("expected ErrNoTemplates, got %v", err)
	}

	engine := newEngine(t)
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected missing template error")
	}
	if _, err := engine.RenderTemplate("hello", []string{"x"}); err == nil {
		t.Fatalf("expected unsupported data error")
	}
}

func templatesFS(t *testing.T) fs.FS {
	t.Helper()
	sub, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	return sub
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS(t)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
