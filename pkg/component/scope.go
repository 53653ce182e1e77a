package component

import (
	"context"

	"github.com/goliatone/go-viewstack/pkg/buffer"
	"github.com/goliatone/go-viewstack/pkg/view"
)

// Scope is what a RenderFunc sees while it runs. Buffer always returns the
// host's current output buffer, which during a render is the installed stack.
type Scope struct {
	renderer  *Renderer
	view      *view.Context
	component string
}

// Component returns the name of the component being rendered.
func (s *Scope) Component() string {
	return s.component
}

// Buffer returns the host output buffer.
func (s *Scope) Buffer() buffer.FlatBuffer {
	return s.view.OutputBuffer()
}

// WriteString appends text to the host output buffer.
func (s *Scope) WriteString(text string) (int, error) {
	return s.view.OutputBuffer().WriteString(text)
}

// SetBuffer assigns b through the stack-aware setter: an installed stack
// absorbs b instead of being replaced by it.
func (s *Scope) SetBuffer(b buffer.FlatBuffer) {
	s.renderer.lifecycle.Assign(s.view, b)
}

// Render renders another component and returns its finished text.
func (s *Scope) Render(name string, data any) (string, error) {
	return s.renderer.RenderIn(s.view, name, data)
}

// Capture returns what fn writes to the host buffer instead of keeping it.
func (s *Scope) Capture(fn func() error) (string, error) {
	return s.renderer.lifecycle.Capture(s.view, fn)
}

// WithHostBuffer runs fn inside the host context's own buffer swap.
func (s *Scope) WithHostBuffer(fn func() error) (string, error) {
	return s.renderer.lifecycle.WithHostBuffer(s.view, fn)
}

// View exposes the raw host context.
func (s *Scope) View() *view.Context {
	return s.view
}

func (s *Scope) Context() context.Context {
	return s.view.StdContext()
}

func (s *Scope) Locals() map[string]any {
	return s.view.Locals()
}
