package htmltemplate_test

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-viewstack/pkg/buffer"
	"github.com/goliatone/go-viewstack/pkg/render/template"
	"github.com/goliatone/go-viewstack/pkg/render/template/htmltemplate"
	"github.com/goliatone/go-viewstack/pkg/testsupport"
)

func newEngine(t *testing.T) *htmltemplate.Engine {
	t.Helper()

	files := fstest.MapFS{
		"card.html":  {Data: []byte(`<div class="card">{{ .title }}{{ render "badge" .title }}</div>`)},
		"plain.html": {Data: []byte(`<p>{{ .body }}</p>`)},
	}
	engine, err := htmltemplate.New(
		htmltemplate.WithFS(files),
		htmltemplate.WithFuncs(map[string]any{"upper": strings.ToUpper}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestHTMLEngine_EvaluateWithHelper(t *testing.T) {
	engine := newEngine(t)
	helpers := template.Helpers{
		"render": func(args ...any) (string, error) {
			return fmt.Sprintf("<span>%v:%v</span>", args[0], args[1]), nil
		},
	}

	written := testsupport.CaptureOutput(t, func(w io.Writer) error {
		return engine.Evaluate(w, "card", map[string]any{"title": "Q&A"}, helpers)
	})
	want := `<div class="card">Q&amp;A<span>badge:Q&A</span></div>`
	if written != want {
		t.Fatalf("evaluate mismatch\nwant: %q\n got: %q", want, written)
	}
}

func TestHTMLEngine_UnboundHelperFails(t *testing.T) {
	engine := newEngine(t)
	err := engine.Evaluate(io.Discard, "card.html", map[string]any{"title": "x"}, nil)
	if err == nil || !strings.Contains(err.Error(), `helper "render" is not bound`) {
		t.Fatalf("expected unbound helper error, got %v", err)
	}
}

func TestHTMLEngine_HelperErrorReturnedUnchanged(t *testing.T) {
	engine := newEngine(t)
	boom := errors.New("child failed")
	helpers := template.Helpers{
		"render": func(...any) (string, error) { return "", boom },
	}

	if err := engine.Evaluate(io.Discard, "card", map[string]any{"title": "x"}, helpers); err != boom {
		t.Fatalf("expected helper error unchanged, got %v", err)
	}
}

func TestHTMLEngine_EvaluateStringAndParse(t *testing.T) {
	engine := newEngine(t)
	if err := engine.Parse("greeting", `Hi {{ upper .name }}`); err != nil {
		t.Fatalf("parse: %v", err)
	}

	written := testsupport.CaptureOutput(t, func(w io.Writer) error {
		return engine.EvaluateString(w, `[{{ template "greeting" . }}]`, map[string]any{"name": "ada"}, nil)
	})
	if written != "[Hi ADA]" {
		t.Fatalf("inline mismatch: %q", written)
	}

	// inline evaluations run on clones and leave the base set untouched
	written = testsupport.CaptureOutput(t, func(w io.Writer) error {
		return engine.Evaluate(w, "greeting", map[string]any{"name": "bo"}, nil)
	})
	if written != "Hi BO" {
		t.Fatalf("named mismatch: %q", written)
	}
}

func TestHTMLEngine_WritesIntoCurrentStackTop(t *testing.T) {
	engine := newEngine(t)
	stack := buffer.NewStack(buffer.NewBufferString("parent|"))
	stack.Push(nil)

	if err := engine.Evaluate(stack, "plain", map[string]any{"body": "<b>"}, nil); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got := stack.MustPop().String(); got != "<p>&lt;b&gt;</p>" {
		t.Fatalf("pushed level mismatch: %q", got)
	}
	if stack.String() != "parent|" {
		t.Fatalf("output leaked into parent: %q", stack.String())
	}
}

func TestHTMLEngine_MissingTemplate(t *testing.T) {
	engine := newEngine(t)
	if err := engine.Evaluate(io.Discard, "nope", nil, nil); err == nil {
		t.Fatalf("expected missing template error")
	}
}
