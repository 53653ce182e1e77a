package viewstack

import (
	"bytes"
	"context"

	"github.com/goliatone/go-viewstack/pkg/buffer"
	"github.com/goliatone/go-viewstack/pkg/component"
	"github.com/goliatone/go-viewstack/pkg/lifecycle"
	"github.com/goliatone/go-viewstack/pkg/manifest"
)

// FlatBuffer aliases buffer.FlatBuffer, the text-accumulating capability.
type FlatBuffer = buffer.FlatBuffer

// StackedBuffer aliases buffer.StackedBuffer, a FlatBuffer with push/pop.
type StackedBuffer = buffer.StackedBuffer

// Descriptor aliases component.Descriptor for callers registering components
// from the top-level module.
type Descriptor = component.Descriptor

// Scope aliases component.Scope, the view compiled RenderFuncs receive.
type Scope = component.Scope

// ErrStackUnderflow is returned when a render pops past the bottom buffer.
var ErrStackUnderflow = buffer.ErrStackUnderflow

// NewStack wraps bottom in a buffer stack.
func NewStack(bottom FlatBuffer) *buffer.Stack {
	return buffer.NewStack(bottom)
}

// NewLifecycle exposes the lifecycle constructor from the top-level module.
func NewLifecycle(options ...lifecycle.Option) *lifecycle.Lifecycle {
	return lifecycle.New(options...)
}

// NewRenderer exposes the renderer constructor from the top-level module.
func NewRenderer(components *component.Registry, engines *TemplateRegistry, options ...component.Option) *component.Renderer {
	return component.NewRenderer(components, engines, options...)
}

// LoadRenderer reads a manifest and builds a renderer over its components and
// templates.
func LoadRenderer(manifestPath string, options ...component.Option) (*component.Renderer, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	return m.Renderer(options...)
}

// RenderManifest loads the manifest and renders one component. It is the
// simplest entry point for callers that just want bytes.
func RenderManifest(ctx context.Context, manifestPath, name string, data any, options ...component.Option) ([]byte, error) {
	renderer, err := LoadRenderer(manifestPath, options...)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := renderer.Render(ctx, &out, name, data); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
