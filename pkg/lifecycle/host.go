package lifecycle

import "github.com/goliatone/go-viewstack/pkg/buffer"

// Host is the rendering context that owns the current output buffer. The
// lifecycle reads and writes the slot only through these two methods.
type Host interface {
	OutputBuffer() buffer.FlatBuffer
	SetOutputBuffer(buf buffer.FlatBuffer)
}

// Swapper is a Host with its own scoped buffer swap. SwapOutputBuffer installs
// buf (a fresh buffer when nil) by plain reassignment, runs fn, restores the
// previous buffer, and returns whichever buffer was installed when fn
// returned. Implementations know nothing about stacks.
type Swapper interface {
	Host
	SwapOutputBuffer(buf buffer.FlatBuffer, fn func() error) (buffer.FlatBuffer, error)
}
