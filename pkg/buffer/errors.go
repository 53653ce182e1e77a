package buffer

import "errors"

var (
	// ErrStackUnderflow reports a Pop that would remove the bottom buffer.
	// It always indicates mismatched Push/Pop calls.
	ErrStackUnderflow = errors.New("buffer: stack underflow, bottom buffer cannot be popped")

	// ErrUnbalanced reports a Drain while pushed levels are still open.
	ErrUnbalanced = errors.New("buffer: stack has unpopped levels")
)
