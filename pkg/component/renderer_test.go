package component_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewstack/pkg/buffer"
	"github.com/goliatone/go-viewstack/pkg/component"
	"github.com/goliatone/go-viewstack/pkg/render/template"
	"github.com/goliatone/go-viewstack/pkg/render/template/htmltemplate"
	"github.com/goliatone/go-viewstack/pkg/render/template/pongo"
	"github.com/goliatone/go-viewstack/pkg/testsupport"
	"github.com/goliatone/go-viewstack/pkg/view"
)

var errBoom = errors.New("broken component")

type observation struct {
	Component string
	Depth     int
	Failed    bool
}

type recorder struct {
	mu   sync.Mutex
	seen []observation
}

func (r *recorder) ObserveRender(name string, depth int, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observation{Component: name, Depth: depth, Failed: err != nil})
}

func newEngines(t *testing.T) *template.Registry {
	t.Helper()

	pongoEngine, err := pongo.New(pongo.WithFS(fstest.MapFS{
		"page.tpl": {Data: []byte(`<main>{{ render("card", card) }}</main>`)},
		"card.tpl": {Data: []byte(`<div>{{ title }}{{ render("badge", badge) }}</div>`)},
	}))
	if err != nil {
		t.Fatalf("pongo engine: %v", err)
	}
	htmlEngine, err := htmltemplate.New(htmltemplate.WithFS(fstest.MapFS{
		"badge.html": {Data: []byte(`<span>{{ .label }}</span>`)},
	}))
	if err != nil {
		t.Fatalf("html engine: %v", err)
	}

	engines := template.NewRegistry()
	engines.MustRegister(pongo.Name, pongoEngine)
	engines.MustRegister(htmltemplate.Name, htmlEngine)
	return engines
}

func newComponents() *component.Registry {
	reg := component.New()
	reg.MustRegister("page", component.Descriptor{Engine: pongo.Name, Template: "page"})
	reg.MustRegister("card", component.Descriptor{Engine: pongo.Name, Template: "card"})
	reg.MustRegister("badge", component.Descriptor{Engine: htmltemplate.Name, Template: "badge", Postamble: "!"})
	reg.MustRegister("item", component.Descriptor{Engine: htmltemplate.Name, Inline: `<li>{{ .label }}</li>`})
	reg.MustRegister("list", component.Descriptor{Func: func(s *component.Scope, data any) error {
		items, _ := data.(map[string]any)["items"].([]string)
		s.WriteString("<ul>")
		for _, label := range items {
			text, err := s.Render("item", map[string]any{"label": label})
			if err != nil {
				return err
			}
			s.WriteString(text)
		}
		s.WriteString("</ul>")
		return nil
	}})
	reg.MustRegister("broken", component.Descriptor{Func: func(*component.Scope, any) error {
		return errBoom
	}})
	reg.MustRegister("wraps-broken", component.Descriptor{Engine: pongo.Name, Inline: `<p>{{ render("broken") }}</p>`})
	reg.MustRegister("captures", component.Descriptor{Engine: pongo.Name, Inline: `[{{ capture("badge", b) }}]`})
	return reg
}

func pageData() map[string]any {
	return map[string]any{
		"card": map[string]any{
			"title": "Hi",
			"badge": map[string]any{"label": "new"},
		},
	}
}

func TestRenderer_MixedEngineNesting(t *testing.T) {
	observer := &recorder{}
	renderer := component.NewRenderer(newComponents(), newEngines(t), component.WithObserver(observer))

	var out bytes.Buffer
	if err := renderer.Render(testsupport.Context(), &out, "page", pageData()); err != nil {
		t.Fatalf("render: %v", err)
	}

	want := "<main><div>Hi<span>new</span>!</div></main>"
	if out.String() != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, out.String())
	}

	wantSeen := []observation{
		{Component: "badge", Depth: 3},
		{Component: "card", Depth: 2},
		{Component: "page", Depth: 1},
	}
	if diff := cmp.Diff(wantSeen, observer.seen); diff != "" {
		t.Fatalf("observations mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_FuncComponentWritesIntoHostBuffer(t *testing.T) {
	renderer := component.NewRenderer(newComponents(), newEngines(t))

	got, err := renderer.RenderString(testsupport.Context(), "list", map[string]any{
		"items": []string{"a", "<b>"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "<ul><li>a</li><li>&lt;b&gt;</li></ul>"; got != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestRenderer_NestedErrorReturnedUnchanged(t *testing.T) {
	observer := &recorder{}
	renderer := component.NewRenderer(newComponents(), newEngines(t), component.WithObserver(observer))

	v := view.New(testsupport.Context(), buffer.NewBufferString("host:"))
	_, err := renderer.RenderIn(v, "wraps-broken", nil)
	if err != errBoom {
		t.Fatalf("expected the component error unchanged, got %v", err)
	}

	stack, ok := v.OutputBuffer().(buffer.StackedBuffer)
	if !ok {
		t.Fatalf("expected an installed stack, got %T", v.OutputBuffer())
	}
	if stack.Depth() != 1 || stack.String() != "host:" {
		t.Fatalf("failed render left the stack dirty: depth %d text %q", stack.Depth(), stack.String())
	}

	for _, seen := range observer.seen {
		if !seen.Failed {
			t.Fatalf("expected every observation to fail, got %+v", observer.seen)
		}
	}
}

func TestRenderer_CaptureHelperUsesHostSwap(t *testing.T) {
	renderer := component.NewRenderer(newComponents(), newEngines(t))

	got, err := renderer.RenderString(testsupport.Context(), "captures", map[string]any{
		"b": map[string]any{"label": "x"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "[<span>x</span>!]" {
		t.Fatalf("capture mismatch: %q", got)
	}
}

func TestRenderer_CaptureDoesNotInflateDepth(t *testing.T) {
	observer := &recorder{}
	renderer := component.NewRenderer(newComponents(), newEngines(t), component.WithObserver(observer))

	if _, err := renderer.RenderString(testsupport.Context(), "captures", map[string]any{
		"b": map[string]any{"label": "x"},
	}); err != nil {
		t.Fatalf("render: %v", err)
	}

	want := []observation{
		{Component: "badge", Depth: 2},
		{Component: "captures", Depth: 1},
	}
	if diff := cmp.Diff(want, observer.seen); diff != "" {
		t.Fatalf("observations mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_SanitizeAndDefaults(t *testing.T) {
	reg := newComponents()
	reg.MustRegister("strict", component.Descriptor{
		Engine:   htmltemplate.Name,
		Inline:   `<b onclick="x()">{{ .text }}</b>`,
		Sanitize: "strict",
	})
	reg.MustRegister("greeting", component.Descriptor{
		Engine:   pongo.Name,
		Inline:   `{{ site }}-{{ tone }}-{{ name }}`,
		Defaults: map[string]any{"tone": "info", "name": "default"},
	})

	renderer := component.NewRenderer(reg, newEngines(t),
		component.WithViewOptions(view.WithLocals(map[string]any{"site": "Acme"})),
	)

	got, err := renderer.RenderString(testsupport.Context(), "strict", map[string]any{"text": "plain"})
	if err != nil {
		t.Fatalf("render strict: %v", err)
	}
	if got != "plain" {
		t.Fatalf("strict policy mismatch: %q", got)
	}

	var out bytes.Buffer
	if err := renderer.Render(testsupport.Context(), &out, "greeting", map[string]any{"name": "Ada"}); err != nil {
		t.Fatalf("render greeting: %v", err)
	}
	if out.String() != "Acme-info-Ada" {
		t.Fatalf("defaults mismatch: %q", out.String())
	}
}

func TestRenderer_TranscodesToEncoding(t *testing.T) {
	reg := component.New()
	reg.MustRegister("text", component.Descriptor{Func: func(s *component.Scope, _ any) error {
		_, err := s.WriteString("café ✓")
		return err
	}})
	renderer := component.NewRenderer(reg, nil, component.WithEncoding("latin1"))
	if renderer.Encoding() != "windows-1252" {
		t.Fatalf("encoding not normalised: %q", renderer.Encoding())
	}

	var out bytes.Buffer
	if err := renderer.Render(testsupport.Context(), &out, "text", nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := []byte("caf\xe9 &#10003;"); !bytes.Equal(out.Bytes(), want) {
		t.Fatalf("encoded output mismatch: %q", out.Bytes())
	}
}

func TestRenderer_ScopeBufferHelpers(t *testing.T) {
	reg := component.New()
	reg.MustRegister("scoped", component.Descriptor{Func: func(s *component.Scope, _ any) error {
		captured, err := s.Capture(func() error {
			_, err := s.WriteString("hidden")
			return err
		})
		if err != nil {
			return err
		}
		swapped, err := s.WithHostBuffer(func() error {
			_, err := s.WriteString("swapped")
			return err
		})
		if err != nil {
			return err
		}
		s.SetBuffer(buffer.NewBufferString("replaced"))
		if _, ok := s.Buffer().(buffer.StackedBuffer); !ok {
			return fmt.Errorf("host buffer lost its stack: %T", s.Buffer())
		}
		_, err = s.WriteString(strings.Join([]string{"", captured, swapped}, "|"))
		return err
	}})
	renderer := component.NewRenderer(reg, nil)

	got, err := renderer.RenderString(testsupport.Context(), "scoped", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "replaced|hidden|swapped" {
		t.Fatalf("scope output mismatch: %q", got)
	}
}

func TestRenderer_Errors(t *testing.T) {
	renderer := component.NewRenderer(newComponents(), newEngines(t))

	_, err := renderer.RenderString(testsupport.Context(), "missing", nil)
	if !errors.Is(err, component.ErrUnknownComponent) {
		t.Fatalf("expected ErrUnknownComponent, got %v", err)
	}

	ctx, cancel := context.WithCancel(testsupport.Context())
	cancel()
	var out bytes.Buffer
	if err := renderer.Render(ctx, &out, "page", pageData()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("cancelled render wrote output: %q", out.String())
	}

	reg := component.New()
	reg.MustRegister("orphan", component.Descriptor{Engine: "mustache", Inline: "{{x}}"})
	_, err = component.NewRenderer(reg, newEngines(t)).RenderString(testsupport.Context(), "orphan", nil)
	if err == nil || !strings.Contains(err.Error(), `engine "mustache" not found`) {
		t.Fatalf("expected missing engine error, got %v", err)
	}
}
