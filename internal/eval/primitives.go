package eval

import (
	"github.com/cwbudde/go-lsp/internal/errors"
	"github.com/cwbudde/go-lsp/internal/heap"
)

// applyPrimitive dispatches one of the three arithmetic primitives named
// in spec.md §4.5 by the operator symbol's text, over an already-evaluated
// argument list.
func (ctx *Context) applyPrimitive(name string, argVals heap.Ref) heap.Ref {
	switch name {
	case "+":
		return ctx.h.Alloc(heap.Value{Tag: heap.TagNum, Num: ctx.sumNums(argVals)})
	case "-":
		return ctx.h.Alloc(heap.Value{Tag: heap.TagNum, Num: ctx.subNums(argVals)})
	case "*":
		return ctx.h.Alloc(heap.Value{Tag: heap.TagNum, Num: ctx.productNums(argVals)})
	default:
		errors.Check(false, "eval: %q is not a primitive", name)
		return heap.RefNil
	}
}

func (ctx *Context) sumNums(list heap.Ref) int64 {
	var sum int64
	cur := list
	for !cur.IsNil() {
		c := ctx.h.Get(cur)
		sum += ctx.numArg(c.Car)
		cur = c.Cdr
	}
	return sum
}

// subNums returns 0 for no arguments, the argument unchanged for one
// (spec.md §4.5: "with one argument, returns that argument unchanged"),
// and the first argument minus every remaining one otherwise.
func (ctx *Context) subNums(list heap.Ref) int64 {
	if list.IsNil() {
		return 0
	}
	first := ctx.h.Get(list)
	acc := ctx.numArg(first.Car)
	cur := first.Cdr
	for !cur.IsNil() {
		c := ctx.h.Get(cur)
		acc -= ctx.numArg(c.Car)
		cur = c.Cdr
	}
	return acc
}

func (ctx *Context) productNums(list heap.Ref) int64 {
	acc := int64(1)
	cur := list
	for !cur.IsNil() {
		c := ctx.h.Get(cur)
		acc *= ctx.numArg(c.Car)
		cur = c.Cdr
	}
	return acc
}

func (ctx *Context) numArg(ref heap.Ref) int64 {
	v := ctx.h.Get(ref)
	errors.Check(v.Tag == heap.TagNum, "eval: arithmetic primitive expected NUM, got %v", v.Tag)
	return v.Num
}
