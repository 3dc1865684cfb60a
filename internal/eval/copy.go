package eval

import (
	"github.com/cwbudde/go-lsp/internal/errors"
	"github.com/cwbudde/go-lsp/internal/heap"
)

// deepCopy duplicates the value graph rooted at ref into fresh slots,
// leaving ref's own subtree untouched. spec.md §3 requires every symbol
// lookup and every QUOTE evaluation to hand the caller an independent
// copy, so later mutation (car/cdr's destructive splice, a nested let
// shadowing a name) can never reach back into a binding's stored value or
// into another read of the same quoted literal.
func (ctx *Context) deepCopy(ref heap.Ref) heap.Ref {
	if ref.IsNil() {
		return heap.RefNil
	}
	v := ctx.h.Get(ref)
	switch v.Tag {
	case heap.TagNum:
		return ctx.h.Alloc(heap.Value{Tag: heap.TagNum, Num: v.Num})
	case heap.TagSymbol:
		return ctx.h.Alloc(heap.Value{Tag: heap.TagSymbol, Text: v.Text})
	case heap.TagString:
		return ctx.h.Alloc(heap.Value{Tag: heap.TagString, Text: v.Text})
	case heap.TagCons:
		car := ctx.deepCopy(v.Car)
		cdr := ctx.deepCopy(v.Cdr)
		return ctx.h.Alloc(heap.Value{Tag: heap.TagCons, Car: car, Cdr: cdr})
	case heap.TagQuote:
		return ctx.h.Alloc(heap.Value{Tag: heap.TagQuote, Expr: ctx.deepCopy(v.Expr)})
	case heap.TagLambda:
		args := ctx.deepCopy(v.Args)
		body := ctx.deepCopy(v.Body)
		return ctx.h.Alloc(heap.Value{Tag: heap.TagLambda, Args: args, Body: body})
	default:
		errors.Check(false, "eval: deepCopy called on a non-value tag %v", v.Tag)
		return heap.RefNil
	}
}

// markUnused is deepCopy's mirror image: instead of duplicating the value
// graph rooted at ref, it walks it and marks every slot UNUSED in place.
// Heap.Mark only paints one slot (spec.md §4.2 leaves tracing to the
// collector's own mark phase), so any code that determines a whole
// subtree is now garbage — a spent argument list, a call frame's names
// and values, a lambda's body after the call returns — must walk it
// itself to release every slot, or the slot's default INTERNAL mark
// leaves it stuck unreclaimed forever (never traced from the root, never
// demoted by an unmark pass, which preserves INTERNAL slots on purpose
// for values still under construction).
func (ctx *Context) markUnused(ref heap.Ref) {
	if ref.IsNil() {
		return
	}
	v := ctx.h.Get(ref)
	switch v.Tag {
	case heap.TagCons:
		ctx.markUnused(v.Car)
		ctx.markUnused(v.Cdr)
	case heap.TagQuote:
		ctx.markUnused(v.Expr)
	case heap.TagLambda:
		ctx.markUnused(v.Args)
		ctx.markUnused(v.Body)
	case heap.TagEnv:
		ctx.markUnused(v.Names)
		ctx.markUnused(v.Vals)
	}
	ctx.h.Mark(ref, heap.Unused)
}
