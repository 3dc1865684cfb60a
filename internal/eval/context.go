// Package eval implements the LSP evaluator (spec.md §4.5): tag dispatch,
// the special-form table, the primitive table, and the heap-native
// environment chain the reader/printer packages also operate over.
package eval

import "github.com/cwbudde/go-lsp/internal/heap"

// MaxFileSize bounds how much of a `load`-targeted file is read into the
// reader's input buffer (spec.md §6, "Load buffer").
const MaxFileSize = 10000

// Context is one interpreter instance: a heap plus the live environment
// chain rooted in it. A Context is not safe for concurrent use (spec.md §5).
type Context struct {
	h           *heap.Heap
	envTop      heap.Ref
	workDir     string
	maxFileSize int
}

// NewContext creates a Context over h with a single top-level frame
// binding the symbols + - * t nil to stable values, per spec.md §4.5: "the
// initial environment binds + - * t nil to values + - * t ()". Primitive
// dispatch never actually reads these bindings' values (it recognizes the
// operator by name), but the bindings must exist so the symbols resolve
// instead of falling through the silent unbound-lookup tolerance.
func NewContext(h *heap.Heap) *Context {
	ctx := &Context{h: h, envTop: heap.RefNil, maxFileSize: MaxFileSize}
	ctx.pushFrame()

	bind := func(name string, val heap.Ref) {
		sym := ctx.h.Alloc(heap.Value{Tag: heap.TagSymbol, Text: name})
		ctx.bindHead(ctx.innermostFrame(), sym, val)
	}
	selfSym := func(name string) heap.Ref {
		return ctx.h.Alloc(heap.Value{Tag: heap.TagSymbol, Text: name})
	}

	bind("+", selfSym("+"))
	bind("-", selfSym("-"))
	bind("*", selfSym("*"))
	bind("t", selfSym("t"))
	bind("nil", heap.RefNil)

	return ctx
}

// SetWorkDir sets the base directory `load` resolves relative paths
// against. The zero value is the process's current directory.
func (ctx *Context) SetWorkDir(dir string) { ctx.workDir = dir }

// SetMaxFileSize overrides how many bytes of a `load`-targeted file are
// read into the reader's input buffer (default MaxFileSize). Both the
// `load` special form and a façade-level Load must honor the same bound,
// so it lives on Context rather than as a package constant read directly.
func (ctx *Context) SetMaxFileSize(n int) { ctx.maxFileSize = n }

// MaxFileSize reports the bound SetMaxFileSize last set (or the
// MaxFileSize default).
func (ctx *Context) MaxFileSize() int { return ctx.maxFileSize }

// Heap exposes the underlying heap, e.g. so a caller can print a result.
func (ctx *Context) Heap() *heap.Heap { return ctx.h }

// Release marks the whole value graph rooted at ref UNUSED. A REPL-style
// driver calls this once per top-level form, after printing the result,
// to release both the just-parsed form and the value Eval returned —
// neither is reachable from the environment chain, so without an explicit
// release they sit at their default INTERNAL mark forever (see markUnused).
func (ctx *Context) Release(ref heap.Ref) { ctx.markUnused(ref) }
