package buffer_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewstack/pkg/buffer"
	"github.com/goliatone/go-viewstack/pkg/testsupport"
)

func TestStack_NestedRenderScenario(t *testing.T) {
	stack := buffer.NewStack(buffer.NewBuffer())

	stack.WriteString("A")
	stack.Push(nil)
	stack.WriteString("B")
	child, err := stack.Pop()
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if got := child.String(); got != "B" {
		t.Fatalf("popped text mismatch: want %q got %q", "B", got)
	}
	stack.WriteString(child.String())
	stack.WriteString("C")

	if got := stack.String(); got != "ABC" {
		t.Fatalf("outer text mismatch: want %q got %q", "ABC", got)
	}
	if stack.Depth() != 1 {
		t.Fatalf("expected depth 1, got %d", stack.Depth())
	}
}

func TestStack_TextIsolation(t *testing.T) {
	stack := buffer.NewStack(buffer.NewBufferString("root:"))

	stack.Push(nil)
	stack.WriteString("one")
	stack.Push(nil)
	stack.WriteString("two")
	stack.Push(nil)
	stack.WriteString("three")

	want := []string{"root:", "one", "two", "three"}
	if diff := cmp.Diff(want, testsupport.LevelTexts(stack)); diff != "" {
		t.Fatalf("levels mismatch (-want +got):\n%s", diff)
	}

	for _, expected := range []string{"three", "two", "one"} {
		popped, err := stack.Pop()
		if err != nil {
			t.Fatalf("pop: %v", err)
		}
		if popped.String() != expected {
			t.Fatalf("popped %q, want %q", popped.String(), expected)
		}
	}
	if stack.String() != "root:" {
		t.Fatalf("bottom buffer leaked child text: %q", stack.String())
	}
}

func TestStack_FlatBufferTransparency(t *testing.T) {
	for depth := 1; depth <= 4; depth++ {
		stack := buffer.NewStack(buffer.NewBuffer())
		for i := 1; i < depth; i++ {
			stack.Push(nil)
		}
		top := stack.Top()
		direct := &bytes.Buffer{}

		stack.WriteString("héllo")
		direct.WriteString("héllo")
		stack.Write([]byte(" world"))
		direct.Write([]byte(" world"))
		if err := stack.WriteByte('!'); err != nil {
			t.Fatalf("write byte: %v", err)
		}
		direct.WriteByte('!')
		stack.WriteRune('✓')
		direct.WriteRune('✓')

		if stack.String() != direct.String() {
			t.Fatalf("depth %d: string mismatch: %q vs %q", depth, stack.String(), direct.String())
		}
		if stack.Len() != direct.Len() {
			t.Fatalf("depth %d: len mismatch: %d vs %d", depth, stack.Len(), direct.Len())
		}
		if !bytes.Equal(stack.Bytes(), direct.Bytes()) {
			t.Fatalf("depth %d: bytes mismatch", depth)
		}
		if top.String() != direct.String() {
			t.Fatalf("depth %d: writes did not land on the top buffer", depth)
		}
		if stack.Depth() != depth {
			t.Fatalf("depth changed by writes: want %d got %d", depth, stack.Depth())
		}
	}
}

func TestStack_PopUnderflow(t *testing.T) {
	bottom := buffer.NewBufferString("keep")
	stack := buffer.NewStack(bottom)

	popped, err := stack.Pop()
	if !errors.Is(err, buffer.ErrStackUnderflow) {
		t.Fatalf("expected ErrStackUnderflow, got %v", err)
	}
	if popped != nil {
		t.Fatalf("expected nil buffer on underflow, got %v", popped)
	}
	if stack.Depth() != 1 || stack.Top() != buffer.FlatBuffer(bottom) {
		t.Fatalf("underflow mutated the stack")
	}
	if stack.String() != "keep" {
		t.Fatalf("underflow mutated the bottom text: %q", stack.String())
	}
}

func TestStack_MustPopPanicsOnUnderflow(t *testing.T) {
	stack := buffer.NewStack(nil)
	defer func() {
		recovered := recover()
		err, ok := recovered.(error)
		if !ok || !errors.Is(err, buffer.ErrStackUnderflow) {
			t.Fatalf("expected ErrStackUnderflow panic, got %v", recovered)
		}
	}()
	stack.MustPop()
}

func TestStack_Drain(t *testing.T) {
	bottom := buffer.NewBuffer()
	stack := buffer.NewStack(bottom)
	stack.Push(nil)

	if _, err := stack.Drain(); !errors.Is(err, buffer.ErrUnbalanced) {
		t.Fatalf("expected ErrUnbalanced with a pushed level, got %v", err)
	}

	stack.MustPop()
	stack.WriteString("done")
	drained, err := stack.Drain()
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if drained != buffer.FlatBuffer(bottom) || drained.String() != "done" {
		t.Fatalf("drain returned %v, want bottom buffer with text", drained)
	}
	if stack.Depth() != 1 {
		t.Fatalf("drain must keep the bottom level, depth %d", stack.Depth())
	}
}

func TestStack_PushInheritsEncoding(t *testing.T) {
	stack := buffer.NewStack(buffer.NewBuffer(buffer.WithEncoding("latin1")))
	stack.Push(nil)

	if got := stack.Encoding(); got != "windows-1252" {
		t.Fatalf("pushed level encoding: want windows-1252 got %q", got)
	}
	stack.Push(&strings.Builder{})
	if got := stack.Encoding(); got != buffer.DefaultEncoding {
		t.Fatalf("plain level encoding: want %q got %q", buffer.DefaultEncoding, got)
	}
}

func TestStack_ReplaceWithStackAbsorbsLevels(t *testing.T) {
	stack := buffer.NewStack(buffer.NewBufferString("a"))
	holder := stack

	other := buffer.NewStack(buffer.NewBufferString("x"))
	other.Push(buffer.NewBufferString("y"))

	stack.Replace(other)

	if holder.Depth() != 2 {
		t.Fatalf("expected absorbed depth 2, got %d", holder.Depth())
	}
	if diff := cmp.Diff([]string{"x", "y"}, testsupport.LevelTexts(holder)); diff != "" {
		t.Fatalf("absorbed levels mismatch (-want +got):\n%s", diff)
	}

	other.MustPop()
	if holder.Depth() != 2 {
		t.Fatalf("absorbed stack must not share storage with the source")
	}
}

func TestStack_ReplaceExpandsSelfReference(t *testing.T) {
	stack := buffer.NewStack(buffer.NewBufferString("bottom"))
	wrapper := buffer.NewStack(stack)
	wrapper.Push(buffer.NewBufferString("temp"))

	stack.Replace(wrapper)

	if diff := cmp.Diff([]string{"bottom", "temp"}, testsupport.LevelTexts(stack)); diff != "" {
		t.Fatalf("levels mismatch (-want +got):\n%s", diff)
	}
}

func TestStack_ReplaceWithPlainBufferSwapsTopContents(t *testing.T) {
	stack := buffer.NewStack(buffer.NewBufferString("bottom"))
	stack.Push(nil)
	top := stack.Top()
	stack.WriteString("old")

	stack.Replace(buffer.NewBufferString("new"))

	if stack.Top() != top {
		t.Fatalf("plain replace must keep the top buffer identity")
	}
	if diff := cmp.Diff([]string{"bottom", "new"}, testsupport.LevelTexts(stack)); diff != "" {
		t.Fatalf("levels mismatch (-want +got):\n%s", diff)
	}

	stack.Replace(stack)
	stack.Replace(nil)
	if stack.String() != "" || stack.Depth() != 2 {
		t.Fatalf("replace with nil should clear the top only")
	}
}
