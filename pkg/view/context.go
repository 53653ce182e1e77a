package view

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-viewstack/pkg/buffer"
	"github.com/goliatone/go-viewstack/pkg/lifecycle"
)

// Option configures a Context.
type Option func(*Context)

// WithEncoding sets the charset used for scratch buffers the context creates.
func WithEncoding(name string) Option {
	return func(c *Context) {
		c.encoding = buffer.NormalizeEncoding(name)
	}
}

// WithLocals seeds values shared by every template rendered in the context.
func WithLocals(locals map[string]any) Option {
	return func(c *Context) {
		if len(locals) == 0 {
			return
		}
		if c.locals == nil {
			c.locals = make(map[string]any, len(locals))
		}
		maps.Copy(c.locals, locals)
	}
}

// WithVariant selects the template variant components render, for example
// "mobile" or "dark". Themed renderers resolve template overrides with it.
func WithVariant(name string) Option {
	return func(c *Context) {
		c.variant = strings.TrimSpace(name)
	}
}

// Context is the host rendering context for one top-level render. It owns the
// output buffer slot and knows nothing about stacks: SetOutputBuffer and
// SwapOutputBuffer reassign the slot directly.
type Context struct {
	std      context.Context
	out      buffer.FlatBuffer
	encoding string
	locals   map[string]any
	variant  string
	nesting  int
}

var _ lifecycle.Swapper = (*Context)(nil)

// New returns a context writing into out. A nil out is replaced with an empty
// buffer in the configured encoding.
func New(ctx context.Context, out buffer.FlatBuffer, options ...Option) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	c := &Context{
		std:      ctx,
		encoding: buffer.DefaultEncoding,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if out == nil {
		out = buffer.NewBuffer(buffer.WithEncoding(c.encoding))
	}
	c.out = out
	return c
}

func (c *Context) OutputBuffer() buffer.FlatBuffer {
	return c.out
}

func (c *Context) SetOutputBuffer(buf buffer.FlatBuffer) {
	c.out = buf
}

// SwapOutputBuffer installs buf, or a fresh buffer in the context encoding,
// runs fn, and restores the previous buffer. It returns the buffer installed
// when fn finished.
func (c *Context) SwapOutputBuffer(buf buffer.FlatBuffer, fn func() error) (result buffer.FlatBuffer, err error) {
	if buf == nil {
		buf = buffer.NewBuffer(buffer.WithEncoding(c.encoding))
	}

	prev := c.out
	c.out = buf
	defer func() {
		result = c.out
		c.out = prev
	}()

	return nil, fn()
}

// Encoding returns the charset for buffers created by the context.
func (c *Context) Encoding() string {
	return c.encoding
}

// StdContext returns the context.Context carried through nested renders.
func (c *Context) StdContext() context.Context {
	return c.std
}

// WithStdContext replaces the carried context.Context and returns a func that
// restores the previous one.
func (c *Context) WithStdContext(ctx context.Context) (restore func()) {
	prev := c.std
	if ctx != nil {
		c.std = ctx
	}
	return func() {
		c.std = prev
	}
}

// Locals returns a copy of the shared template values.
func (c *Context) Locals() map[string]any {
	if len(c.locals) == 0 {
		return nil
	}
	return maps.Clone(c.locals)
}

// Variant returns the template variant selected for the context.
func (c *Context) Variant() string {
	return c.variant
}

// EnterRender marks the start of a component render and returns its nesting
// level, 1 for the outermost component. leave must be called when the render
// finishes. Buffer levels pushed for captures and host swaps do not count.
func (c *Context) EnterRender() (level int, leave func()) {
	c.nesting++
	level = c.nesting
	return level, func() {
		c.nesting--
	}
}
