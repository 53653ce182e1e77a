package component

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-viewstack/pkg/buffer"
	"github.com/goliatone/go-viewstack/pkg/lifecycle"
	"github.com/goliatone/go-viewstack/pkg/render/template"
	"github.com/goliatone/go-viewstack/pkg/sanitize"
	"github.com/goliatone/go-viewstack/pkg/view"
)

const (
	tracerName = "viewstack"
	spanName   = "viewstack.render"
)

// ErrUnknownComponent is returned when a render names a component that is not
// registered.
var ErrUnknownComponent = errors.New("component: unknown component")

// Option configures a Renderer.
type Option func(*Renderer)

// WithLifecycle shares an existing lifecycle between renderers.
func WithLifecycle(l *lifecycle.Lifecycle) Option {
	return func(r *Renderer) {
		if l != nil {
			r.lifecycle = l
		}
	}
}

// WithLogger sets the logger for the renderer. The default lifecycle logs
// through the same logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracer overrides the tracer resolved from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Renderer) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithObserver registers an observer for every render, for example a
// metrics recorder.
func WithObserver(observer Observer) Option {
	return func(r *Renderer) {
		if observer != nil {
			r.observer = observer
		}
	}
}

// WithEncoding sets the charset of the bottom buffer for top-level renders.
// Render output is transcoded into it before it reaches the writer.
func WithEncoding(name string) Option {
	return func(r *Renderer) {
		r.encoding = buffer.NormalizeEncoding(name)
	}
}

// WithViewOptions adds options applied to every view context Render creates.
func WithViewOptions(options ...view.Option) Option {
	return func(r *Renderer) {
		r.viewOptions = append(r.viewOptions, options...)
	}
}

// Renderer renders registered components. It holds no per-render state; a
// single Renderer can serve concurrent top-level renders, each with its own
// view context.
type Renderer struct {
	components  *Registry
	engines     *template.Registry
	lifecycle   *lifecycle.Lifecycle
	logger      *slog.Logger
	tracer      trace.Tracer
	observer    Observer
	encoding    string
	viewOptions []view.Option

	themes       theme.ThemeSelector
	themeName    string
	themeVariant string
}

// NewRenderer wires a component registry to a set of template engines.
func NewRenderer(components *Registry, engines *template.Registry, options ...Option) *Renderer {
	if components == nil {
		components = New()
	}
	if engines == nil {
		engines = template.NewRegistry()
	}
	r := &Renderer{
		components: components,
		engines:    engines,
		logger:     slog.Default(),
		observer:   noopObserver{},
		encoding:   buffer.DefaultEncoding,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}
	if r.lifecycle == nil {
		r.lifecycle = lifecycle.New(lifecycle.WithLogger(r.logger))
	}
	return r
}

// Components returns the registry the renderer resolves names against.
func (r *Renderer) Components() *Registry {
	return r.components
}

// Encoding returns the normalised encoding Render transcodes to.
func (r *Renderer) Encoding() string {
	return r.encoding
}

// Render renders the named component as the top of a new render tree and
// writes the result, transcoded to the renderer encoding, to w.
func (r *Renderer) Render(ctx context.Context, w io.Writer, name string, data any) error {
	if w == nil {
		return errors.New("component: writer is required")
	}

	bottom := buffer.NewBuffer(buffer.WithEncoding(r.encoding))
	options := append([]view.Option{view.WithEncoding(r.encoding)}, r.viewOptions...)
	v := view.New(ctx, bottom, options...)

	installation := r.lifecycle.Install(v)
	text, err := r.RenderIn(v, name, data)
	if err != nil {
		return err
	}
	if _, err := installation.Stack.WriteString(text); err != nil {
		return fmt.Errorf("component: merge %q output: %w", name, err)
	}

	out, err := installation.Drain()
	if err != nil {
		return fmt.Errorf("component: drain stack: %w", err)
	}
	v.SetOutputBuffer(out)

	payload, err := buffer.Encode(out)
	if err != nil {
		return fmt.Errorf("component: encode output: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("component: write output: %w", err)
	}
	return nil
}

// RenderString renders the named component and returns its text without
// transcoding.
func (r *Renderer) RenderString(ctx context.Context, name string, data any) (string, error) {
	v := view.New(ctx, nil, append([]view.Option{view.WithEncoding(r.encoding)}, r.viewOptions...)...)
	return r.RenderIn(v, name, data)
}

// RenderIn renders the named component inside an existing view context and
// returns the finished text: everything the evaluation wrote, followed by
// the postamble, sanitised when the descriptor names a policy. Nothing is
// left in the host buffer; callers decide where the text goes.
//
// Errors from the template evaluation are returned unchanged.
func (r *Renderer) RenderIn(v *view.Context, name string, data any) (string, error) {
	if v == nil {
		return "", errors.New("component: view context is required")
	}
	descriptor, ok := r.components.Descriptor(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}
	if err := v.StdContext().Err(); err != nil {
		return "", err
	}

	eval, err := r.evaluation(v, descriptor, data)
	if err != nil {
		return "", err
	}

	r.lifecycle.Install(v)
	depth, leave := v.EnterRender()
	defer leave()

	spanCtx, span := r.tracer.Start(
		v.StdContext(),
		spanName,
		trace.WithAttributes(
			attribute.String("viewstack.component", descriptor.Name),
			attribute.Int("viewstack.depth", depth),
		),
	)
	defer span.End()
	restore := v.WithStdContext(spanCtx)
	defer restore()

	start := time.Now()
	text, err := r.lifecycle.Perform(v, eval, postamble(descriptor.Postamble))
	if err == nil && descriptor.Sanitize != sanitize.None {
		text, err = sanitize.Apply(descriptor.Sanitize, text)
	}
	elapsed := time.Since(start)

	r.observer.ObserveRender(descriptor.Name, depth, elapsed, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Debug("component: render failed", "component", descriptor.Name, "depth", depth, "error", err)
		return "", err
	}
	span.SetStatus(codes.Ok, "")
	return text, nil
}

func (r *Renderer) evaluation(v *view.Context, descriptor Descriptor, data any) (lifecycle.EvaluateFunc, error) {
	data = mergeData(v.Locals(), descriptor.Defaults, data)

	if descriptor.Func != nil {
		scope := &Scope{renderer: r, view: v, component: descriptor.Name}
		return func(buffer.FlatBuffer) error {
			return descriptor.Func(scope, data)
		}, nil
	}

	engine, err := r.engines.Get(descriptor.Engine)
	if err != nil {
		return nil, fmt.Errorf("component: %q: %w", descriptor.Name, err)
	}
	helpers := r.helpers(v)

	if strings.TrimSpace(descriptor.Inline) != "" {
		inline, ok := engine.(template.StringEvaluator)
		if !ok {
			return nil, fmt.Errorf("component: %q: engine %q cannot evaluate inline source", descriptor.Name, descriptor.Engine)
		}
		return func(w buffer.FlatBuffer) error {
			return inline.EvaluateString(w, descriptor.Inline, data, helpers)
		}, nil
	}

	name, err := r.templateFor(v, descriptor)
	if err != nil {
		return nil, err
	}
	return func(w buffer.FlatBuffer) error {
		return engine.Evaluate(w, name, data, helpers)
	}, nil
}

// helpers binds render and capture to v for one evaluation.
func (r *Renderer) helpers(v *view.Context) template.Helpers {
	return template.Helpers{
		"render": func(args ...any) (string, error) {
			name, data, err := helperArgs("render", args)
			if err != nil {
				return "", err
			}
			return r.RenderIn(v, name, data)
		},
		"capture": func(args ...any) (string, error) {
			name, data, err := helperArgs("capture", args)
			if err != nil {
				return "", err
			}
			return r.lifecycle.WithHostBuffer(v, func() error {
				text, err := r.RenderIn(v, name, data)
				if err != nil {
					return err
				}
				_, err = v.OutputBuffer().WriteString(text)
				return err
			})
		},
	}
}

func helperArgs(helper string, args []any) (string, any, error) {
	if len(args) == 0 || len(args) > 2 {
		return "", nil, fmt.Errorf("component: %s expects a component name and optional data, got %d arguments", helper, len(args))
	}
	name, ok := args[0].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return "", nil, fmt.Errorf("component: %s expects a component name, got %T", helper, args[0])
	}
	if len(args) == 1 {
		return name, nil, nil
	}
	return name, args[1], nil
}

func postamble(text string) func() string {
	if text == "" {
		return nil
	}
	return func() string { return text }
}

// mergeData layers locals, then defaults, under map data. Non-map data is
// passed through as is.
func mergeData(locals, defaults map[string]any, data any) any {
	if len(locals) == 0 && len(defaults) == 0 {
		return data
	}

	var values map[string]any
	switch typed := data.(type) {
	case nil:
	case map[string]any:
		values = typed
	default:
		return data
	}

	merged := make(map[string]any, len(locals)+len(defaults)+len(values))
	maps.Copy(merged, locals)
	maps.Copy(merged, defaults)
	maps.Copy(merged, values)
	return merged
}
