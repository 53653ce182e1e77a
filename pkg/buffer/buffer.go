package buffer

import (
	"bytes"
	"io"
)

// FlatBuffer is the append-only text accumulator every render writes into.
// *bytes.Buffer satisfies it, so do Buffer and Stack.
type FlatBuffer interface {
	io.Writer
	io.StringWriter
	Len() int
	String() string
	Reset()
}

// StackedBuffer is a FlatBuffer that also supports stack operations. Callers
// that only need to write keep using the FlatBuffer methods.
type StackedBuffer interface {
	FlatBuffer
	Push(next FlatBuffer)
	Pop() (FlatBuffer, error)
	Replace(other FlatBuffer)
	Drain() (FlatBuffer, error)
	Depth() int
	Top() FlatBuffer
}

// Encoded is implemented by buffers that know which charset their text is
// destined for.
type Encoded interface {
	Encoding() string
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithEncoding sets the charset the buffer text is destined for. Names are
// normalised through the WHATWG encoding index; unknown names fall back to
// DefaultEncoding.
func WithEncoding(name string) Option {
	return func(b *Buffer) {
		b.encoding = NormalizeEncoding(name)
	}
}

// Buffer is the package's FlatBuffer implementation: a bytes.Buffer that also
// carries its output encoding.
type Buffer struct {
	buf      bytes.Buffer
	encoding string
}

var (
	_ FlatBuffer = (*Buffer)(nil)
	_ Encoded    = (*Buffer)(nil)
)

// NewBuffer returns an empty buffer.
func NewBuffer(options ...Option) *Buffer {
	b := &Buffer{encoding: DefaultEncoding}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// NewBufferString returns a buffer seeded with text.
func NewBufferString(text string, options ...Option) *Buffer {
	b := NewBuffer(options...)
	b.buf.WriteString(text)
	return b
}

func (b *Buffer) Write(p []byte) (int, error) {
	return b.buf.Write(p)
}

func (b *Buffer) WriteString(s string) (int, error) {
	return b.buf.WriteString(s)
}

func (b *Buffer) WriteByte(c byte) error {
	return b.buf.WriteByte(c)
}

func (b *Buffer) WriteRune(r rune) (int, error) {
	return b.buf.WriteRune(r)
}

func (b *Buffer) Len() int {
	return b.buf.Len()
}

func (b *Buffer) String() string {
	return b.buf.String()
}

// Bytes returns the unread portion of the buffer. The slice aliases the
// buffer content until the next write.
func (b *Buffer) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *Buffer) Reset() {
	b.buf.Reset()
}

// Encoding returns the canonical charset name of the buffer.
func (b *Buffer) Encoding() string {
	if b.encoding == "" {
		return DefaultEncoding
	}
	return b.encoding
}
