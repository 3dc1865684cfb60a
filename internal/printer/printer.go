// Package printer implements the LSP canonical S-expression printer
// (spec.md §4.4): it serializes a heap value back to the textual form
// the reader would parse back into an equal structure (P4).
package printer

import (
	"strconv"
	"strings"

	"github.com/cwbudde/go-lsp/internal/errors"
	"github.com/cwbudde/go-lsp/internal/heap"
)

// MaxOutputLen is the teacher-style fixed output cap: a single printer
// call writes into a bounded buffer and longer output overflows, a known
// limitation retained from spec.md §6 ("Print buffer").
const MaxOutputLen = 256

// Printer renders heap values to their canonical text form.
type Printer struct {
	h *heap.Heap
}

// New creates a Printer reading values from h.
func New(h *heap.Heap) *Printer {
	return &Printer{h: h}
}

// Print renders ref into its canonical text form, truncated to
// MaxOutputLen bytes if the full rendering would overflow the printer's
// fixed buffer (spec.md §6 documents this as a known limitation, not a
// bounds-checked error).
func (p *Printer) Print(ref heap.Ref) string {
	var sb strings.Builder
	p.print(&sb, ref)
	s := sb.String()
	if len(s) > MaxOutputLen {
		return s[:MaxOutputLen]
	}
	return s
}

func (p *Printer) print(sb *strings.Builder, ref heap.Ref) {
	if ref.IsNil() {
		sb.WriteString("nil")
		return
	}

	v := p.h.Get(ref)
	switch v.Tag {
	case heap.TagNum:
		sb.WriteString(strconv.FormatInt(v.Num, 10))
	case heap.TagSymbol:
		sb.WriteString(v.Text)
	case heap.TagString:
		sb.WriteByte('"')
		sb.WriteString(v.Text)
		sb.WriteByte('"')
	case heap.TagCons:
		p.printList(sb, ref)
	case heap.TagQuote:
		sb.WriteByte('\'')
		p.print(sb, v.Expr)
	case heap.TagLambda:
		sb.WriteString("lambda")
	default:
		errors.Check(false, "printer: unexpected tag %v", v.Tag)
	}
}

// printList walks the spine: emit '(', print each car, a separating
// space between elements, and either ')' (proper list) or ' . ' followed
// by the final non-CONS non-NIL cdr's printed form, then ')'.
func (p *Printer) printList(sb *strings.Builder, ref heap.Ref) {
	sb.WriteByte('(')
	cursor := ref
	first := true
	for {
		v := p.h.Get(cursor)
		errors.Check(v.Tag == heap.TagCons, "printer: printList called on a non-CONS")

		if !first {
			sb.WriteByte(' ')
		}
		first = false
		p.print(sb, v.Car)

		switch {
		case v.Cdr.IsNil():
			sb.WriteByte(')')
			return
		case p.h.Get(v.Cdr).Tag == heap.TagCons:
			cursor = v.Cdr
		default:
			sb.WriteString(" . ")
			p.print(sb, v.Cdr)
			sb.WriteByte(')')
			return
		}
	}
}
