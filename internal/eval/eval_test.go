package eval

import (
	"testing"

	"github.com/cwbudde/go-lsp/internal/heap"
	"github.com/cwbudde/go-lsp/internal/printer"
	"github.com/cwbudde/go-lsp/internal/reader"
)

// interpret runs one full read/eval/print/release cycle, mirroring what a
// REPL driver (spec.md §6) does per line: read, eval, print, then release
// both the parsed form and the result since neither survives past this
// call.
func interpret(t *testing.T, ctx *Context, source string) string {
	t.Helper()
	root := reader.New(ctx.Heap()).Read(source, "<test>")
	result := ctx.Eval(root)
	out := printer.New(ctx.Heap()).Print(result)
	ctx.Release(root)
	ctx.Release(result)
	return out
}

func newTestContext(t *testing.T) *Context {
	t.Helper()
	return NewContext(heap.New(10000))
}

func TestArithmeticSum(t *testing.T) {
	ctx := newTestContext(t)
	if got := interpret(t, ctx, "(+ 1 2 2)"); got != "5" {
		t.Errorf("(+ 1 2 2) = %q, want 5", got)
	}
}

func TestIfBranches(t *testing.T) {
	ctx := newTestContext(t)
	cases := map[string]string{
		"(if () 5 6)": "6",
		"(if 1 5 6)":  "5",
		"(if () 4)":   "nil",
	}
	for src, want := range cases {
		if got := interpret(t, ctx, src); got != want {
			t.Errorf("%s = %q, want %q", src, got, want)
		}
	}
}

func TestLetSequentialBindingAndShadowing(t *testing.T) {
	ctx := newTestContext(t)
	src := "(let ((a 1) (b (let ((a 2)) a))) (- b a))"
	if got := interpret(t, ctx, src); got != "1" {
		t.Errorf("%s = %q, want 1", src, got)
	}
}

func TestListEvaluatesEachElement(t *testing.T) {
	ctx := newTestContext(t)
	src := "(list 1 (+ 1 1) (if 1 3))"
	if got := interpret(t, ctx, src); got != "(1 2 3)" {
		t.Errorf("%s = %q, want (1 2 3)", src, got)
	}
}

func TestConsBuildsDottedPair(t *testing.T) {
	ctx := newTestContext(t)
	src := "(cons 1 (cons 2 3))"
	if got := interpret(t, ctx, src); got != "(1 2 . 3)" {
		t.Errorf("%s = %q, want (1 2 . 3)", src, got)
	}
}

func TestCarAndCdr(t *testing.T) {
	ctx := newTestContext(t)
	cases := map[string]string{
		"(car '(1 2 3))": "1",
		"(cdr '(1 2 3))": "(2 3)",
		"(car '())":      "nil",
	}
	for src, want := range cases {
		if got := interpret(t, ctx, src); got != want {
			t.Errorf("%s = %q, want %q", src, got, want)
		}
	}
}

func TestEqual(t *testing.T) {
	ctx := newTestContext(t)
	cases := map[string]string{
		`(equal "a" "a")`: "t",
		"(equal 1 2)":     "nil",
	}
	for src, want := range cases {
		if got := interpret(t, ctx, src); got != want {
			t.Errorf("%s = %q, want %q", src, got, want)
		}
	}
}

func TestDefunAndLambdaApplication(t *testing.T) {
	ctx := newTestContext(t)
	interpret(t, ctx, "(defun square (x) (* x x))")
	if got := interpret(t, ctx, "(square 4)"); got != "16" {
		t.Errorf("(square 4) = %q, want 16", got)
	}
}

func TestPrognReturnsLast(t *testing.T) {
	ctx := newTestContext(t)
	if got := interpret(t, ctx, "(progn 1 2 3)"); got != "3" {
		t.Errorf("(progn 1 2 3) = %q, want 3", got)
	}
}

func TestSetDefinesInInnermostFrame(t *testing.T) {
	ctx := newTestContext(t)
	interpret(t, ctx, "(set x 10)")
	if got := interpret(t, ctx, "x"); got != "10" {
		t.Errorf("x = %q, want 10", got)
	}
}

// P3: every ENV value's names/values lists stay the same length, and
// every names element is a SYMBOL. A let's own frame is popped before
// interpret returns (by design — the bindings don't outlive the form), so
// this inspects the persistent top-level frame instead, after adding a
// `set` binding to it: the one frame still reachable once a top-level
// form has finished evaluating.
func TestEnvNamesValuesInvariant(t *testing.T) {
	ctx := newTestContext(t)
	interpret(t, ctx, "(set z 99)")

	frame := ctx.innermostFrame()
	env := ctx.Heap().Get(frame)

	namesLen, valsLen := 0, 0
	for cur := env.Names; !cur.IsNil(); cur = ctx.Heap().Get(cur).Cdr {
		sym := ctx.Heap().Get(ctx.Heap().Get(cur).Car)
		if sym.Tag != heap.TagSymbol {
			t.Fatalf("names element has tag %v, want SYMBOL", sym.Tag)
		}
		namesLen++
	}
	for cur := env.Vals; !cur.IsNil(); cur = ctx.Heap().Get(cur).Cdr {
		valsLen++
	}
	if namesLen != valsLen {
		t.Fatalf("len(names) = %d, len(values) = %d, want equal", namesLen, valsLen)
	}
}

// P5: eval(read("'e")) is structurally equal to read("e") for quoted e
// containing no further quote.
func TestQuoteStructurallyEqualsRead(t *testing.T) {
	ctx := newTestContext(t)
	quoted := reader.New(ctx.Heap()).Read("'(1 2 3)", "<test>")
	plain := reader.New(ctx.Heap()).Read("(1 2 3)", "<test>")

	result := ctx.Eval(quoted)
	if !structurallyDeepEqual(ctx.Heap(), result, plain) {
		t.Fatalf("eval(read(%q)) is not structurally equal to read(%q)", "'(1 2 3)", "(1 2 3)")
	}
}

func structurallyDeepEqual(h *heap.Heap, a, b heap.Ref) bool {
	if a.IsNil() || b.IsNil() {
		return a.IsNil() && b.IsNil()
	}
	av, bv := h.Get(a), h.Get(b)
	if av.Tag != bv.Tag {
		return false
	}
	switch av.Tag {
	case heap.TagNum:
		return av.Num == bv.Num
	case heap.TagSymbol, heap.TagString:
		return av.Text == bv.Text
	case heap.TagCons:
		return structurallyDeepEqual(h, av.Car, bv.Car) && structurallyDeepEqual(h, av.Cdr, bv.Cdr)
	default:
		return false
	}
}

// TestGCStressBoundedLiveCount exercises P6 (live-slot count stays bounded,
// not growing with iteration count) by running far more iterations than a
// heap this small could survive if each one leaked slots: 10000 iterations
// of a form
// that allocates several dozen slots apiece, against a 500-slot heap. A
// context that failed to release its garbage would hit KindOutOfMemory
// within the first few dozen iterations; surviving all 10000 with every
// iteration returning the same answer is the evidence that live-slot
// count stays bounded rather than growing with the iteration count.
func TestGCStressBoundedLiveCount(t *testing.T) {
	ctx := NewContext(heap.New(500))
	const src = "(let ((a 1) (b 0)) (if a (+ a b) 0))"

	for i := 0; i < 10000; i++ {
		got := interpret(t, ctx, src)
		if got != "1" {
			t.Fatalf("iteration %d: got %q, want 1", i, got)
		}
	}

	// Live counts every slot not on the free-list, including garbage not
	// yet swept, so collect once before measuring what is still reachable.
	ctx.Heap().Collect()
	if live := ctx.Heap().Live(); live > 64 {
		t.Fatalf("live slots after loop = %d, want close to the persistent top-level frame's size", live)
	}
}
