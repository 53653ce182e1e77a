// Package lifecycle implements the hooks a render call site runs around every
// template evaluation so nested renders share one buffer.Stack.
//
// A call site runs, in order:
//
//	inst := lc.Install(host)                 // wrap the host buffer once
//	text, err := lc.Perform(host, eval, post) // push, evaluate, restore, pop
//	parent.WriteString(text)                  // merge, done by the caller
//
// Install is idempotent, so every nesting level calls it. Perform always
// restores the host buffer reference and pops its level, including when the
// evaluation fails; evaluation errors are returned unchanged.
//
// Some hosts swap the buffer themselves for an isolated block (Swapper).
// WithHostBuffer wraps such a swap: the buffer the host installs is pushed
// onto the saved stack and the host reference is forced back to the stack
// for the duration of the block.
package lifecycle
