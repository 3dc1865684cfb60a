package heap

import "github.com/cwbudde/go-lsp/internal/errors"

// Collect runs one full mark/sweep cycle (spec.md §4.2):
//
//  1. Unmark phase: every slot not already INTERNAL is painted UNUSED.
//     INTERNAL-marked slots — freshly allocated but not yet attached to
//     any root — are preserved through this cycle.
//  2. Mark phase: trace from the root (the environment chain) and paint
//     every reachable slot EXTERNAL.
//  3. Sweep phase: reclaim everything still UNUSED.
//
// Collection that frees zero slots while the free-list is already empty
// is a fatal out-of-memory condition (spec.md §4.1); the caller (Alloc)
// checks for that after Collect returns.
func (h *Heap) Collect() int {
	h.unmark()
	h.mark(h.envTop)
	return h.Sweep()
}

// unmark demotes every non-INTERNAL slot to UNUSED.
func (h *Heap) unmark() {
	for i := 1; i < len(h.slots); i++ {
		if h.slots[i].Tag == TagFree {
			continue
		}
		if h.slots[i].mark != Internal {
			h.slots[i].mark = Unused
		}
	}
}

// mark performs the tag-directed depth-first trace described in
// spec.md §4.2: CONS recurses into car/cdr, ENV into names/values, QUOTE
// into its expr, LAMBDA into args/body. Scalars are leaves. NIL stops the
// walk. Marking is idempotent, so a cyclic graph introduced by a bug in
// this package (rather than by a well-typed user program, which spec.md
// §9 notes never produces one) still terminates.
func (h *Heap) mark(ref Ref) {
	if ref.IsNil() {
		return
	}
	if h.markOf(ref) == External {
		return // already visited this cycle
	}
	v := h.slots[ref]
	v.mark = External
	h.slots[ref] = v

	switch v.Tag {
	case TagCons:
		h.mark(v.Car)
		h.mark(v.Cdr)
	case TagEnv:
		h.mark(v.Names)
		h.mark(v.Vals)
	case TagQuote:
		h.mark(v.Expr)
	case TagLambda:
		h.mark(v.Args)
		h.mark(v.Body)
	case TagNum, TagSymbol, TagString, TagNil:
		// leaves
	default:
		errors.Check(false, "heap: mark encountered a FREE slot reachable from a root")
	}
}
