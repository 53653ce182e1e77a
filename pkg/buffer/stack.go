package buffer

import (
	"slices"
	"unicode/utf8"
)

// Stack is a stack of FlatBuffers that presents itself as a single FlatBuffer.
// Writes, length queries, and text conversion act on the current top. The
// buffer passed to NewStack stays at the bottom for the life of the stack.
//
// Stack is not safe for concurrent use; nested renders share it through
// ordinary call and return.
type Stack struct {
	levels []FlatBuffer
}

var _ StackedBuffer = (*Stack)(nil)

// NewStack wraps initial as the sole level of a new stack. A nil initial
// buffer is replaced with an empty Buffer.
func NewStack(initial FlatBuffer) *Stack {
	if initial == nil {
		initial = NewBuffer()
	}
	return &Stack{levels: []FlatBuffer{initial}}
}

// Push makes next the new top. When next is nil a fresh Buffer is created
// with the encoding of the current top.
func (s *Stack) Push(next FlatBuffer) {
	if next == nil {
		next = NewBuffer(WithEncoding(EncodingOf(s.Top())))
	}
	s.levels = append(s.levels, next)
}

// Pop removes and returns the top. It returns ErrStackUnderflow, without
// touching the stack, when only the bottom buffer remains.
func (s *Stack) Pop() (FlatBuffer, error) {
	if len(s.levels) <= 1 {
		return nil, ErrStackUnderflow
	}
	last := len(s.levels) - 1
	top := s.levels[last]
	s.levels[last] = nil
	s.levels = s.levels[:last]
	return top, nil
}

// MustPop is Pop for call sites where an underflow is a programming error.
func (s *Stack) MustPop() FlatBuffer {
	top, err := s.Pop()
	if err != nil {
		panic(err)
	}
	return top
}

// Drain returns the bottom buffer once every pushed level has been popped.
// The stack keeps the bottom buffer; only the owner of a top-level render
// should call Drain.
func (s *Stack) Drain() (FlatBuffer, error) {
	if len(s.levels) > 1 {
		return nil, ErrUnbalanced
	}
	return s.levels[0], nil
}

// Replace absorbs other into the receiver. A stack hands over its whole
// sequence of levels, so holders of the receiver see the new state; any level
// that is the receiver itself is expanded in place. A plain buffer replaces
// the contents of the current top.
func (s *Stack) Replace(other FlatBuffer) {
	if other == nil {
		s.Top().Reset()
		return
	}
	if other == FlatBuffer(s) {
		return
	}

	if src, ok := other.(interface{ Levels() []FlatBuffer }); ok {
		incoming := src.Levels()
		if len(incoming) == 0 {
			return
		}
		levels := make([]FlatBuffer, 0, len(incoming)+len(s.levels))
		for _, level := range incoming {
			if level == FlatBuffer(s) {
				levels = append(levels, s.levels...)
				continue
			}
			levels = append(levels, level)
		}
		s.levels = levels
		return
	}

	top := s.Top()
	if top == other {
		return
	}
	text := other.String()
	top.Reset()
	_, _ = top.WriteString(text)
}

// Depth returns the number of levels, always at least one.
func (s *Stack) Depth() int {
	return len(s.levels)
}

// Top returns the buffer that currently receives writes.
func (s *Stack) Top() FlatBuffer {
	return s.levels[len(s.levels)-1]
}

// Levels returns a copy of the levels, bottom first.
func (s *Stack) Levels() []FlatBuffer {
	return slices.Clone(s.levels)
}

func (s *Stack) Write(p []byte) (int, error) {
	return s.Top().Write(p)
}

func (s *Stack) WriteString(str string) (int, error) {
	return s.Top().WriteString(str)
}

func (s *Stack) WriteByte(c byte) error {
	top := s.Top()
	if bw, ok := top.(interface{ WriteByte(byte) error }); ok {
		return bw.WriteByte(c)
	}
	_, err := top.Write([]byte{c})
	return err
}

func (s *Stack) WriteRune(r rune) (int, error) {
	top := s.Top()
	if rw, ok := top.(interface{ WriteRune(rune) (int, error) }); ok {
		return rw.WriteRune(r)
	}
	return top.Write(utf8.AppendRune(nil, r))
}

func (s *Stack) Len() int {
	return s.Top().Len()
}

func (s *Stack) String() string {
	return s.Top().String()
}

// Bytes returns the content of the current top.
func (s *Stack) Bytes() []byte {
	top := s.Top()
	if b, ok := top.(interface{ Bytes() []byte }); ok {
		return b.Bytes()
	}
	return []byte(top.String())
}

// Reset clears the current top only.
func (s *Stack) Reset() {
	s.Top().Reset()
}

// Encoding reports the charset of the current top.
func (s *Stack) Encoding() string {
	return EncodingOf(s.Top())
}
