package lifecycle

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-viewstack/pkg/buffer"
)

var (
	// ErrStackUnderflow is returned when a level is popped past the bottom
	// buffer.
	ErrStackUnderflow = buffer.ErrStackUnderflow

	// ErrUnbalanced is returned when an evaluation leaves levels it pushed
	// on the stack.
	ErrUnbalanced = buffer.ErrUnbalanced

	// ErrNotInstalled is returned by Perform when the host buffer is not a
	// stack.
	ErrNotInstalled = errors.New("lifecycle: host buffer is not a stack, call Install first")

	// ErrNotOwner is returned when a render that reused an existing stack
	// tries to drain it.
	ErrNotOwner = errors.New("lifecycle: only the installing render may drain the stack")
)

// Option configures a Lifecycle.
type Option func(*Lifecycle)

// WithLogger sets the logger used for push/pop tracing and cleanup warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lifecycle) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// EvaluateFunc writes a template's output into w.
type EvaluateFunc func(w buffer.FlatBuffer) error

// Lifecycle holds no per-render state and can be shared by any number of
// renders.
type Lifecycle struct {
	logger *slog.Logger
}

// New constructs a Lifecycle.
func New(options ...Option) *Lifecycle {
	l := &Lifecycle{logger: slog.Default()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// Installation is the result of Install. Owner is true only for the call
// that created the stack.
type Installation struct {
	Stack buffer.StackedBuffer
	Owner bool
}

// Drain hands the bottom buffer to the owning render once all levels have
// been popped.
func (i Installation) Drain() (buffer.FlatBuffer, error) {
	if i.Stack == nil {
		return nil, ErrNotInstalled
	}
	if !i.Owner {
		return nil, ErrNotOwner
	}
	return i.Stack.Drain()
}

// Install wraps the host buffer in a buffer.Stack unless it already is a
// stack, in which case the existing stack is reused.
func (l *Lifecycle) Install(host Host) Installation {
	current := host.OutputBuffer()
	if stack, ok := current.(buffer.StackedBuffer); ok {
		return Installation{Stack: stack}
	}

	stack := buffer.NewStack(current)
	host.SetOutputBuffer(stack)
	l.logger.Debug("lifecycle: installed buffer stack", "encoding", stack.Encoding())
	return Installation{Stack: stack, Owner: true}
}

// Perform pushes a level, runs eval against the stack, and pops the level.
// The returned text is everything written to the level followed by the
// result of postamble, which is called once after a successful evaluation.
//
// The host buffer reference is restored to the stack and the level popped
// even when eval fails or reassigns the host buffer. Errors from eval are
// returned unchanged.
func (l *Lifecycle) Perform(host Host, eval EvaluateFunc, postamble func() string) (string, error) {
	orig, ok := host.OutputBuffer().(buffer.StackedBuffer)
	if !ok {
		return "", ErrNotInstalled
	}

	orig.Push(nil)
	l.logger.Debug("lifecycle: pushed level", "depth", orig.Depth())

	popped, err := l.within(host, orig, func() error {
		return eval(orig)
	})
	if err != nil {
		return "", err
	}

	text := popped.String()
	if postamble != nil {
		text += postamble()
	}
	return text, nil
}

// Capture runs fn against a fresh level and returns what fn wrote. Without an
// installed stack the host buffer is swapped for a scratch buffer instead.
func (l *Lifecycle) Capture(host Host, fn func() error) (string, error) {
	stack, ok := host.OutputBuffer().(buffer.StackedBuffer)
	if !ok {
		return l.captureFlat(host, fn)
	}

	stack.Push(nil)
	popped, err := l.within(host, stack, fn)
	if err != nil {
		return "", err
	}
	return popped.String(), nil
}

func (l *Lifecycle) captureFlat(host Host, fn func() error) (string, error) {
	prev := host.OutputBuffer()
	scratch := buffer.NewBuffer(buffer.WithEncoding(buffer.EncodingOf(prev)))
	host.SetOutputBuffer(scratch)
	defer host.SetOutputBuffer(prev)

	if err := fn(); err != nil {
		return "", err
	}
	return scratch.String(), nil
}

// WithHostBuffer runs fn inside the host's own buffer swap while keeping the
// stack in charge. The temporary buffer the host installs becomes a new level
// on the saved stack, the host reference is pointed back at the stack, and
// the level is popped when fn returns. When the host buffer is not a stack
// the host swap runs unmodified.
func (l *Lifecycle) WithHostBuffer(host Swapper, fn func() error) (string, error) {
	saved, ok := host.OutputBuffer().(buffer.StackedBuffer)
	if !ok {
		out, err := host.SwapOutputBuffer(nil, fn)
		if err != nil {
			return "", err
		}
		if out == nil {
			return "", nil
		}
		return out.String(), nil
	}

	var captured buffer.FlatBuffer
	_, err := host.SwapOutputBuffer(nil, func() error {
		temp := host.OutputBuffer()
		if temp == buffer.FlatBuffer(saved) {
			temp = nil
		}
		saved.Push(temp)
		host.SetOutputBuffer(saved)
		l.logger.Debug("lifecycle: adopted host buffer", "depth", saved.Depth())

		popped, err := l.within(host, saved, fn)
		captured = popped
		return err
	})
	if err != nil {
		return "", err
	}
	if captured == nil {
		return "", nil
	}
	return captured.String(), nil
}

// Assign is the stack-aware setter for the host buffer: an installed stack
// absorbs other through Replace, keeping its identity; otherwise the host
// slot is reassigned.
func (l *Lifecycle) Assign(host Host, other buffer.FlatBuffer) {
	if stack, ok := host.OutputBuffer().(buffer.StackedBuffer); ok {
		stack.Replace(other)
		return
	}
	host.SetOutputBuffer(other)
}

// within runs fn with the level already pushed on stack. The deferred cleanup
// restores the host reference and pops, so it also runs when fn panics.
// Levels fn leaves open are discarded and reported as ErrUnbalanced; a level
// fn popped on its own is reported as ErrStackUnderflow and nothing else is
// popped.
func (l *Lifecycle) within(host Host, stack buffer.StackedBuffer, fn func() error) (popped buffer.FlatBuffer, err error) {
	expected := stack.Depth()
	defer func() {
		host.SetOutputBuffer(stack)

		var imbalance error
		switch depth := stack.Depth(); {
		case depth < expected:
			imbalance = fmt.Errorf("%w: evaluation popped %d level(s) it did not push", ErrStackUnderflow, expected-depth)
		case depth > expected:
			for extra := depth - expected; extra > 0; extra-- {
				if _, popErr := stack.Pop(); popErr != nil {
					break
				}
			}
			imbalance = fmt.Errorf("%w: evaluation left %d level(s) open", ErrUnbalanced, depth-expected)
		}

		var top buffer.FlatBuffer
		if imbalance == nil {
			top, imbalance = stack.Pop()
		}
		if imbalance != nil {
			if err == nil {
				err = imbalance
				return
			}
			l.logger.Warn("lifecycle: unbalanced stack during error cleanup", "error", imbalance, "cause", err)
			return
		}
		l.logger.Debug("lifecycle: popped level", "depth", stack.Depth())
		popped = top
	}()

	return nil, fn()
}
