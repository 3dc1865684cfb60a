package eval

import (
	"github.com/cwbudde/go-lsp/internal/errors"
	"github.com/cwbudde/go-lsp/internal/heap"
)

// specialForms names every operator symbol that is dispatched by its own
// evaluation rule instead of ordinary procedure application (spec.md §4.5,
// Glossary "Special form").
var specialForms = map[string]bool{
	"if": true, "list": true, "let": true, "set": true, "lambda": true,
	"defun": true, "progn": true, "cons": true, "car": true, "cdr": true,
	"equal": true, "load": true,
}

// Eval evaluates one expression against ctx's current environment chain
// and returns the resulting heap value, per the tag-dispatch table in
// spec.md §4.5.
func (ctx *Context) Eval(expr heap.Ref) heap.Ref {
	if expr.IsNil() {
		return heap.RefNil
	}

	v := ctx.h.Get(expr)
	switch v.Tag {
	case heap.TagNum, heap.TagString:
		return expr
	case heap.TagSymbol:
		return ctx.evalSymbol(v.Text)
	case heap.TagQuote:
		return ctx.deepCopy(v.Expr)
	case heap.TagCons:
		return ctx.evalCons(expr, v)
	default:
		errors.Check(false, "eval: cannot evaluate a value of tag %v", v.Tag)
		return heap.RefNil
	}
}

func (ctx *Context) evalSymbol(name string) heap.Ref {
	val, ok := ctx.lookup(name)
	if !ok {
		errors.TraceUnboundLookup(name)
		return heap.RefNil
	}
	return ctx.deepCopy(val)
}

// evalCons dispatches a CONS-headed form: a special form when the head is
// a symbol naming one, otherwise a procedure application.
func (ctx *Context) evalCons(expr heap.Ref, v heap.Value) heap.Ref {
	head := ctx.h.Get(v.Car)
	if head.Tag == heap.TagSymbol && specialForms[head.Text] {
		return ctx.evalSpecialForm(head.Text, v.Cdr)
	}
	return ctx.apply(v.Car, v.Cdr)
}

// apply implements procedure application (spec.md §4.5, "Procedure
// application"): evaluate the operator, evaluate every argument left to
// right, dispatch on the operator's resulting tag, then release the
// operator value (and, for a primitive call, the argument list — a
// lambda call's argument list instead becomes its call frame's values
// list, released when popFrame discards that frame).
func (ctx *Context) apply(operatorExpr, argExprs heap.Ref) heap.Ref {
	opVal := ctx.Eval(operatorExpr)
	argVals := ctx.evalList(argExprs)

	var result heap.Ref
	switch {
	case opVal.IsNil():
		errors.Check(false, "eval: cannot apply nil")
	case ctx.h.Get(opVal).Tag == heap.TagLambda:
		result = ctx.applyLambda(opVal, argVals)
	case ctx.h.Get(opVal).Tag == heap.TagSymbol:
		result = ctx.applyPrimitive(ctx.h.Get(opVal).Text, argVals)
		ctx.markUnused(argVals)
	default:
		errors.Check(false, "eval: operator is neither a LAMBDA nor a primitive symbol")
	}

	ctx.h.Mark(opVal, heap.Unused)
	return result
}

func (ctx *Context) applyLambda(lambda, argVals heap.Ref) heap.Ref {
	lv := ctx.h.Get(lambda)
	ctx.pushFrameWith(lv.Args, argVals)
	result := ctx.evalBody(lv.Body)
	ctx.popFrame()
	ctx.markUnused(lv.Body)
	return result
}

// evalBody evaluates each expression in a body list in order, returning
// the last one's value (or NIL for an empty body).
func (ctx *Context) evalBody(body heap.Ref) heap.Ref {
	result := heap.RefNil
	cur := body
	for !cur.IsNil() {
		c := ctx.h.Get(cur)
		result = ctx.Eval(c.Car)
		cur = c.Cdr
	}
	return result
}

// evalList evaluates each expression in a list left to right, returning a
// freshly consed list of the results in the same order.
func (ctx *Context) evalList(exprs heap.Ref) heap.Ref {
	if exprs.IsNil() {
		return heap.RefNil
	}
	c := ctx.h.Get(exprs)
	head := ctx.Eval(c.Car)
	tail := ctx.evalList(c.Cdr)
	return ctx.h.Alloc(heap.Value{Tag: heap.TagCons, Car: head, Cdr: tail})
}
