package eval

import (
	"github.com/cwbudde/go-lsp/internal/heap"
)

// pushFrame allocates a fresh empty ENV value and conses it onto the
// front of ctx's environment chain, making it the innermost frame.
func (ctx *Context) pushFrame() heap.Ref {
	frame := ctx.h.Alloc(heap.Value{Tag: heap.TagEnv, Names: heap.RefNil, Vals: heap.RefNil})
	top := ctx.h.Alloc(heap.Value{Tag: heap.TagCons, Car: frame, Cdr: ctx.envTop})
	ctx.envTop = top
	ctx.h.SetRoot(ctx.envTop)
	return frame
}

// pushFrameWith installs a frame whose names/values lists are already
// built (the lambda-application path: parameters paired with arguments
// in one shot rather than incremental bindHead calls).
func (ctx *Context) pushFrameWith(names, vals heap.Ref) {
	frame := ctx.h.Alloc(heap.Value{Tag: heap.TagEnv, Names: names, Vals: vals})
	top := ctx.h.Alloc(heap.Value{Tag: heap.TagCons, Car: frame, Cdr: ctx.envTop})
	ctx.envTop = top
	ctx.h.SetRoot(ctx.envTop)
}

// popFrame discards the innermost frame, restoring the enclosing chain.
// Once a frame leaves the chain, nothing can reach its bindings again —
// every lookup hands out a deep copy (spec.md §3), never the frame's own
// storage — so popFrame releases the whole discarded frame: its names and
// values lists (recursively, since they may hold composite values: a
// let-bound lambda, a quoted list) and the frame's own ENV slot and
// chain-link CONS cell.
func (ctx *Context) popFrame() {
	top := ctx.envTop
	frame := ctx.h.Get(top).Car
	env := ctx.h.Get(frame)

	ctx.markUnused(env.Names)
	ctx.markUnused(env.Vals)
	ctx.h.Mark(frame, heap.Unused)
	ctx.h.Mark(top, heap.Unused)

	ctx.envTop = ctx.h.Get(top).Cdr
	ctx.h.SetRoot(ctx.envTop)
}

// innermostFrame returns the ref of the current innermost ENV value.
func (ctx *Context) innermostFrame() heap.Ref {
	return ctx.h.Get(ctx.envTop).Car
}

// bindHead prepends (name, value) to frame's parallel names/values lists,
// implementing shadow-by-construction: the most recently bound entry for
// a given symbol is found first by lookup (spec.md §5 Ordering).
func (ctx *Context) bindHead(frame heap.Ref, name, value heap.Ref) {
	f := ctx.h.Get(frame)
	newNames := ctx.h.Alloc(heap.Value{Tag: heap.TagCons, Car: name, Cdr: f.Names})
	newVals := ctx.h.Alloc(heap.Value{Tag: heap.TagCons, Car: value, Cdr: f.Vals})
	f.Names = newNames
	f.Vals = newVals
	ctx.h.Set(frame, f)
}

// lookup walks the environment chain innermost-first, then each frame's
// names list left-to-right, returning the bound value at the first match
// (spec.md §3 Environment chain). ok is false if the chain was exhausted
// without a match — the caller (evalSymbol) turns that into the silent
// NIL tolerance spec.md §7.2 describes.
func (ctx *Context) lookup(name string) (heap.Ref, bool) {
	frameList := ctx.envTop
	for !frameList.IsNil() {
		frame := ctx.h.Get(frameList).Car
		env := ctx.h.Get(frame)

		names, vals := env.Names, env.Vals
		for !names.IsNil() {
			sym := ctx.h.Get(names).Car
			if ctx.h.Get(sym).Text == name {
				return ctx.h.Get(vals).Car, true
			}
			names = ctx.h.Get(names).Cdr
			vals = ctx.h.Get(vals).Cdr
		}
		frameList = ctx.h.Get(frameList).Cdr
	}
	return heap.RefNil, false
}
