// Package buffer provides the flat output buffer used during a render pass and
// Stack, a stack of buffers that impersonates a single flat buffer.
//
// Template engines usually hold one reference to "the buffer" and append to
// it from generated code. Stack keeps that reference valid while nested
// renders push and pop their own levels: every write, length query, or text
// conversion issued against the stack is delegated to its current top.
//
//	stack := buffer.NewStack(buffer.NewBuffer())
//	stack.WriteString("A")
//	stack.Push(nil)
//	stack.WriteString("B")
//	child, _ := stack.Pop() // child.String() == "B"
//	stack.WriteString(child.String())
//	stack.WriteString("C") // stack.String() == "ABC"
//
// The bottom buffer supplied to NewStack is never popped. Pop on a stack of
// depth one returns ErrStackUnderflow and leaves the stack unchanged; the
// owner of a top-level render collects the bottom buffer with Drain.
package buffer
