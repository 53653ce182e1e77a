package template

import (
	"io"
)

// Helper is a function a template can call, typically a nested render. It
// returns finished markup that engines insert without escaping.
type Helper func(args ...any) (string, error)

// Helpers are the functions bound for a single evaluation.
type Helpers map[string]Helper

// Evaluator is the "render a template to text" primitive. Implementations
// write all output into w and return template errors as-is; they never
// interpret the buffer beyond io.Writer.
type Evaluator interface {
	Evaluate(w io.Writer, name string, data any, helpers Helpers) error
}

// StringEvaluator is implemented by engines that can evaluate inline template
// source in addition to named templates.
type StringEvaluator interface {
	Evaluator
	EvaluateString(w io.Writer, source string, data any, helpers Helpers) error
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(w io.Writer, name string, data any, helpers Helpers) error

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(w io.Writer, name string, data any, helpers Helpers) error {
	return f(w, name, data, helpers)
}

// Trap wraps helpers so the first error any of them returns is remembered.
// Engines wrap their own execution errors; a helper error (for example a
// failed nested render) is reported through the returned func so it can be
// handed back unchanged.
func Trap(helpers Helpers) (Helpers, func() error) {
	var first error
	wrapped := make(Helpers, len(helpers))
	for name, fn := range helpers {
		if fn == nil {
			continue
		}
		fn := fn
		wrapped[name] = func(args ...any) (string, error) {
			out, err := fn(args...)
			if err != nil && first == nil {
				first = err
			}
			return out, err
		}
	}
	return wrapped, func() error { return first }
}
