package heap

import "github.com/cwbudde/go-lsp/internal/errors"

// DefaultCapacity is the recommended slot count for a Heap (spec.md §3).
const DefaultCapacity = 100000

// Heap is a contiguous, fixed-capacity slab of value slots plus a
// singly-linked free-list threaded through the unused ones. It is the sole
// owner of every live (non-sentinel) value in one interpreter Context.
//
// A Heap is not safe for concurrent use; each interpreter context owns
// exactly one and never shares it with another context (spec.md §5).
type Heap struct {
	slots    []Value
	freeHead Ref // RefNil terminates the list, same as an empty-list cdr
	freeLen  int
	envTop   Ref // the one GC root: the environment chain head
}

// New creates a Heap with capacity slots, all linked into the free-list.
func New(capacity int) *Heap {
	h := &Heap{
		slots: make([]Value, capacity+1), // slot 0 is reserved (RefNil)
	}
	h.slots[0] = Value{Tag: TagNil, mark: External}
	h.initFreeList()
	return h
}

// initFreeList links every non-reserved slot into the free-list and marks
// every slot UNUSED. Implements heap_init (spec.md §4.1).
func (h *Heap) initFreeList() {
	h.freeHead = RefNil
	h.freeLen = 0
	for i := len(h.slots) - 1; i >= 1; i-- {
		h.slots[i] = Value{Tag: TagFree, mark: Unused, next: h.freeHead}
		h.freeHead = Ref(i)
		h.freeLen++
	}
}

// Capacity returns the total number of allocatable slots.
func (h *Heap) Capacity() int { return len(h.slots) - 1 }

// Live returns the number of slots not currently on the free-list,
// excluding the NIL sentinel. Used by property P1 and GC-stress tests.
func (h *Heap) Live() int { return h.Capacity() - h.freeLen }

// Free returns the number of slots currently on the free-list.
func (h *Heap) Free() int { return h.freeLen }

// SetRoot installs the environment chain head as the GC root.
func (h *Heap) SetRoot(envTop Ref) { h.envTop = envTop }

// Root returns the current GC root.
func (h *Heap) Root() Ref { return h.envTop }

// Get returns the Value stored at ref. Accessing a FREE slot or an
// out-of-range ref is a contract violation (spec.md §7.1): it aborts.
func (h *Heap) Get(ref Ref) Value {
	if ref.IsNil() {
		return h.slots[0]
	}
	errors.Check(int(ref) > 0 && int(ref) < len(h.slots), "heap: ref out of range")
	v := h.slots[ref]
	errors.Check(v.Tag != TagFree, "heap: dereferenced a freed slot")
	return v
}

// Set overwrites the Value at ref in place. Used by the binding mutators
// (bind/let/defun/set) and by the destructuring car/cdr primitives — the
// only places spec.md §3 Lifecycle allows mutation.
func (h *Heap) Set(ref Ref, v Value) {
	errors.Check(int(ref) > 0 && int(ref) < len(h.slots), "heap: ref out of range")
	v.mark = h.slots[ref].mark
	v.next = RefNil
	h.slots[ref] = v
}

// Mark sets the mark color of ref directly, without tracing. Evaluator
// code uses this to demote a result it no longer needs (e.g. a lookup
// copy after it has been attached to a frame) from INTERNAL to UNUSED, as
// described for the mark phase in spec.md §4.2.
func (h *Heap) Mark(ref Ref, m Mark) {
	if ref.IsNil() {
		return
	}
	errors.Check(int(ref) > 0 && int(ref) < len(h.slots), "heap: ref out of range")
	h.slots[ref].mark = m
}

// markOf returns the current mark color of ref without validating it
// against FREE; used internally by the collector's own passes.
func (h *Heap) markOf(ref Ref) Mark { return h.slots[ref].mark }

// allocSlot pops the free-list head, zeroes its payload, paints it INTERNAL
// (I7) and returns its ref. Callers must not assume any field value other
// than the zero value until they set it.
func (h *Heap) allocSlot() Ref {
	ref := h.freeHead
	slot := h.slots[ref]
	h.freeHead = slot.next
	h.freeLen--
	h.slots[ref] = Value{mark: Internal}
	return ref
}

// Alloc returns a free slot initialised to v, running a collection cycle
// first if the free-list is empty. alloc is the only entry point used by
// the reader and evaluator during normal execution — collection is never
// externally forced (spec.md §4.1).
func (h *Heap) Alloc(v Value) Ref {
	if h.freeHead.IsNil() && h.freeLen == 0 {
		h.Collect()
	}
	if h.freeHead.IsNil() && h.freeLen == 0 {
		errors.Fatalf(errors.KindOutOfMemory, "heap: out of memory after collection (capacity=%d)", h.Capacity())
	}
	ref := h.allocSlot()
	v.mark = Internal
	v.next = RefNil
	h.slots[ref] = v
	return ref
}

// free zeroes slot and pushes it back onto the free-list (spec.md §4.1).
func (h *Heap) free(ref Ref) {
	h.slots[ref] = Value{Tag: TagFree, mark: Unused, next: h.freeHead}
	h.freeHead = ref
	h.freeLen++
}

// Sweep reclaims every slot whose mark is UNUSED. Exposed for tests that
// want to drive mark/sweep phases independently of Collect.
func (h *Heap) Sweep() int {
	reclaimed := 0
	for i := 1; i < len(h.slots); i++ {
		if h.slots[i].Tag != TagFree && h.slots[i].mark == Unused {
			h.free(Ref(i))
			reclaimed++
		}
	}
	return reclaimed
}
