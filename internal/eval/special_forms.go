package eval

import (
	"os"
	"path/filepath"

	"github.com/cwbudde/go-lsp/internal/errors"
	"github.com/cwbudde/go-lsp/internal/heap"
	"github.com/cwbudde/go-lsp/internal/reader"
)

// evalSpecialForm dispatches one of the twelve special forms in spec.md
// §4.5 by name, against its (unevaluated) argument list.
func (ctx *Context) evalSpecialForm(name string, args heap.Ref) heap.Ref {
	switch name {
	case "if":
		return ctx.evalIf(args)
	case "list":
		return ctx.evalList(args)
	case "let":
		return ctx.evalLet(args)
	case "set":
		return ctx.evalSet(args)
	case "lambda":
		return ctx.evalLambda(args)
	case "defun":
		return ctx.evalDefun(args)
	case "progn":
		return ctx.evalBody(args)
	case "cons":
		return ctx.evalConsForm(args)
	case "car":
		return ctx.evalCar(args)
	case "cdr":
		return ctx.evalCdr(args)
	case "equal":
		return ctx.evalEqual(args)
	case "load":
		return ctx.evalLoad(args)
	default:
		errors.Check(false, "eval: unknown special form %q", name)
		return heap.RefNil
	}
}

func nth(h *heap.Heap, list heap.Ref, n int) heap.Ref {
	cur := list
	for i := 0; i < n; i++ {
		cur = h.Get(cur).Cdr
	}
	return h.Get(cur).Car
}

func rest(h *heap.Heap, list heap.Ref, n int) heap.Ref {
	cur := list
	for i := 0; i < n; i++ {
		cur = h.Get(cur).Cdr
	}
	return cur
}

// evalIf implements `if pred then [else]` (spec.md §4.5): the predicate's
// evaluated value is marked UNUSED before returning the chosen branch's
// result, since only that value (and not the branch not taken) was ever
// evaluated.
func (ctx *Context) evalIf(args heap.Ref) heap.Ref {
	pred := nth(ctx.h, args, 0)
	thenExpr := nth(ctx.h, args, 1)
	elseList := rest(ctx.h, args, 2)

	predVal := ctx.Eval(pred)
	truthy := !predVal.IsNil()
	ctx.markUnused(predVal)

	if truthy {
		return ctx.Eval(thenExpr)
	}
	if elseList.IsNil() {
		return heap.RefNil
	}
	return ctx.Eval(ctx.h.Get(elseList).Car)
}

// evalLet implements `let ((name value)...) body...` (spec.md §4.5): a
// fresh frame is pushed, then each binding's value expression is evaluated
// and added to that same frame in order, so later initializers see earlier
// bindings (and any nested let's own frame shadows and then un-shadows
// them once it pops) before the body runs.
func (ctx *Context) evalLet(args heap.Ref) heap.Ref {
	bindings := ctx.h.Get(args).Car
	body := ctx.h.Get(args).Cdr

	frame := ctx.pushFrame()
	cur := bindings
	for !cur.IsNil() {
		pair := ctx.h.Get(cur).Car
		sym := ctx.h.Get(pair).Car
		valExpr := ctx.h.Get(ctx.h.Get(pair).Cdr).Car
		val := ctx.Eval(valExpr)
		ctx.bindHead(frame, sym, val)
		cur = ctx.h.Get(cur).Cdr
	}

	result := ctx.evalBody(body)
	ctx.popFrame()
	return result
}

// evalSet implements `set name value` (spec.md §4.5): name is taken
// literally, matching every other binding form (let, lambda, defun) —
// evaluating it as a lookup would make defining a fresh name impossible,
// since an unbound name evaluates to NIL. Only the value is evaluated.
func (ctx *Context) evalSet(args heap.Ref) heap.Ref {
	name := nth(ctx.h, args, 0)
	valueExpr := nth(ctx.h, args, 1)
	val := ctx.Eval(valueExpr)
	ctx.bindHead(ctx.innermostFrame(), name, val)
	return val
}

// evalLambda implements `lambda (params...) body...` (spec.md §4.5):
// params and body are deep-copied so later mutation of the defining
// context's AST (e.g. its enclosing form being GC'd) can never reach the
// closure's own copy.
func (ctx *Context) evalLambda(args heap.Ref) heap.Ref {
	params := ctx.h.Get(args).Car
	body := ctx.h.Get(args).Cdr
	return ctx.h.Alloc(heap.Value{
		Tag:  heap.TagLambda,
		Args: ctx.deepCopy(params),
		Body: ctx.deepCopy(body),
	})
}

// evalDefun implements `defun name (params...) body...`, defined in
// spec.md §4.5 as equivalent to `set name (lambda (params...) body...)`.
func (ctx *Context) evalDefun(args heap.Ref) heap.Ref {
	name := nth(ctx.h, args, 0)
	lambdaArgs := ctx.h.Get(args).Cdr // (params . body...)
	lambdaVal := ctx.evalLambda(lambdaArgs)
	ctx.bindHead(ctx.innermostFrame(), name, lambdaVal)
	return lambdaVal
}

// evalConsForm implements `cons a d`: evaluate both operands and build a
// new CONS cell holding the results.
func (ctx *Context) evalConsForm(args heap.Ref) heap.Ref {
	aVal := ctx.Eval(nth(ctx.h, args, 0))
	dVal := ctx.Eval(nth(ctx.h, args, 1))
	return ctx.h.Alloc(heap.Value{Tag: heap.TagCons, Car: aVal, Cdr: dVal})
}

// evalCar implements `car e` (spec.md §4.5): evaluate e, require it be a
// CONS (or NIL, which returns NIL — `(car '())` is scenario 6 in spec.md
// §8), then splice NIL into e's car slot and mark e UNUSED before
// returning the extracted value, so the now-single-field spine cell is
// reclaimed on the next sweep without disturbing the returned head.
func (ctx *Context) evalCar(args heap.Ref) heap.Ref {
	e := ctx.Eval(nth(ctx.h, args, 0))
	if e.IsNil() {
		return heap.RefNil
	}
	v := ctx.h.Get(e)
	errors.Check(v.Tag == heap.TagCons, "car: expected CONS, got %v", v.Tag)
	result := v.Car
	v.Car = heap.RefNil
	ctx.h.Set(e, v)
	ctx.h.Mark(e, heap.Unused)
	return result
}

// evalCdr is evalCar's mirror image, over the cdr slot.
func (ctx *Context) evalCdr(args heap.Ref) heap.Ref {
	e := ctx.Eval(nth(ctx.h, args, 0))
	if e.IsNil() {
		return heap.RefNil
	}
	v := ctx.h.Get(e)
	errors.Check(v.Tag == heap.TagCons, "cdr: expected CONS, got %v", v.Tag)
	result := v.Cdr
	v.Cdr = heap.RefNil
	ctx.h.Set(e, v)
	ctx.h.Mark(e, heap.Unused)
	return result
}

// evalEqual implements `equal a b` (spec.md §4.5): structural equality by
// tag then payload (NUM by value, SYMBOL/STRING by text, NIL by identity),
// never by CONS/LAMBDA structural recursion: two composite operands, even
// identical quoted lists, compare unequal. Both operands are marked UNUSED
// once compared.
func (ctx *Context) evalEqual(args heap.Ref) heap.Ref {
	aVal := ctx.Eval(nth(ctx.h, args, 0))
	bVal := ctx.Eval(nth(ctx.h, args, 1))

	eq := ctx.structurallyEqual(aVal, bVal)

	ctx.markUnused(aVal)
	ctx.markUnused(bVal)

	if eq {
		return ctx.h.Alloc(heap.Value{Tag: heap.TagSymbol, Text: "t"})
	}
	return heap.RefNil
}

func (ctx *Context) structurallyEqual(a, b heap.Ref) bool {
	if a.IsNil() || b.IsNil() {
		return a.IsNil() && b.IsNil()
	}
	av, bv := ctx.h.Get(a), ctx.h.Get(b)
	if av.Tag != bv.Tag {
		return false
	}
	switch av.Tag {
	case heap.TagNum:
		return av.Num == bv.Num
	case heap.TagSymbol, heap.TagString:
		return av.Text == bv.Text
	default:
		return false
	}
}

// evalLoad implements `load path` (spec.md §4.5): evaluate path, read the
// named file (bounded by ctx.maxFileSize), strip its newlines/tabs per
// spec.md §6's load-buffer convention (reader.StripLoadBuffer), reader-parse
// the resulting buffer's one top-level expression, evaluate it, mark the
// parsed form UNUSED, and return the evaluated result.
func (ctx *Context) evalLoad(args heap.Ref) heap.Ref {
	pathVal := ctx.Eval(nth(ctx.h, args, 0))
	pv := ctx.h.Get(pathVal)
	errors.Check(pv.Tag == heap.TagString, "load: expected a STRING path, got %v", pv.Tag)

	path := pv.Text
	ctx.h.Mark(pathVal, heap.Unused)
	if ctx.workDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(ctx.workDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		errors.Fatalf(errors.KindMissingFile, "load: cannot read %q: %v", path, err)
	}
	if len(data) > ctx.maxFileSize {
		data = data[:ctx.maxFileSize]
	}

	buf := reader.StripLoadBuffer(string(data))
	form := reader.New(ctx.h).Read(buf, path)
	result := ctx.Eval(form)
	ctx.markUnused(form)
	return result
}
