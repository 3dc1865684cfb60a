// Package reader implements the LSP S-expression reader: a recursive
// descent parser over the grammar in spec.md §4.3, allocating directly
// onto an interpreter's heap as it goes.
package reader

import (
	"strconv"
	"strings"

	"github.com/cwbudde/go-lsp/internal/errors"
	"github.com/cwbudde/go-lsp/internal/heap"
)

// StripLoadBuffer strips newlines and tabs from text, per spec.md §6's
// `load` buffer preprocessing ("reads up to MAX_FILE_SIZE bytes into a
// buffer, stripping newlines and tabs"). This is scoped to `load`'s
// file-reading path only — general Read callers (the REPL, pkg/lsp.Eval)
// get ordinary whitespace handling instead (cursor.go's skipSpaces treats
// space, tab, and newline alike), so multi-line input that isn't read
// from a `load`ed file parses the way its line breaks suggest rather than
// having them silently deleted.
func StripLoadBuffer(text string) string {
	return strings.NewReplacer("\n", "", "\t", "").Replace(text)
}

// Reader parses one top-level expression per Read call, allocating every
// constructed value on h. It holds no state across calls.
type Reader struct {
	h *heap.Heap
}

// New creates a Reader that allocates onto h.
func New(h *heap.Heap) *Reader {
	return &Reader{h: h}
}

// Read parses exactly one top-level expression from text and returns its
// heap reference. file names the source for error messages (e.g. a path
// passed to the `load` special form, or "<repl>"); it may be empty.
//
// text is read as-is: space, tab, and newline are all ordinary whitespace
// between tokens (cursor.go's skipSpaces), so multi-line source reads the
// way its line breaks suggest. A caller preprocessing a `load`ed file's
// raw bytes per spec.md §6 uses StripLoadBuffer before calling Read, not
// Read itself — that stripping is a `load`-specific buffer convention,
// not a property of the reader's grammar.
//
// Read fails fatally (panics with an *errors.Fatal, per spec.md §7) on
// unterminated strings or lists; no partial recovery is attempted.
func (rd *Reader) Read(text, file string) heap.Ref {
	c := newCursor(text)
	c.skipSpaces()
	if c.atEnd() {
		rd.fail(c, file, text, "unexpected end of input: nothing to read")
	}
	return rd.readObj(c, file, text)
}

func (rd *Reader) fail(c *cursor, file, source, msg string) {
	ce := errors.NewCompilerError(c.position(), msg, source, file)
	errors.Fatalf(errors.KindUnterminatedInput, "%s", ce.Format())
}

// readObj dispatches on the next byte, per spec.md §4.3's read_obj:
// '(' → list, '"' → string, digit → number, '\'' → quote, else → symbol.
func (rd *Reader) readObj(c *cursor, file, source string) heap.Ref {
	c.skipSpaces()
	if c.atEnd() {
		rd.fail(c, file, source, "unexpected end of input")
	}

	switch b := c.peek(); {
	case b == '(':
		return rd.readList(c, file, source)
	case b == '"':
		return rd.readString(c, file, source)
	case isDigit(b):
		return rd.readNumber(c)
	case b == '\'':
		c.advance()
		expr := rd.readObj(c, file, source)
		return rd.h.Alloc(heap.Value{Tag: heap.TagQuote, Expr: expr})
	default:
		return rd.readSymbol(c)
	}
}

// readList skips the opening '(', handles the empty-list case, and
// otherwise hands off to readListInner (spec.md §4.3).
func (rd *Reader) readList(c *cursor, file, source string) heap.Ref {
	c.advance() // '('
	c.skipSpaces()
	if c.atEnd() {
		rd.fail(c, file, source, "unterminated list")
	}
	if c.peek() == ')' {
		c.advance()
		return heap.RefNil
	}
	return rd.readListInner(c, file, source)
}

// readListInner reads one element, then either emits (elem . NIL) if the
// following byte is ')', or (elem . <inner>) recursively. Every list's
// terminal cdr is NIL.
func (rd *Reader) readListInner(c *cursor, file, source string) heap.Ref {
	elem := rd.readObj(c, file, source)
	c.skipSpaces()
	if c.atEnd() {
		rd.fail(c, file, source, "unterminated list")
	}
	if c.peek() == ')' {
		c.advance()
		return rd.h.Alloc(heap.Value{Tag: heap.TagCons, Car: elem, Cdr: heap.RefNil})
	}
	inner := rd.readListInner(c, file, source)
	return rd.h.Alloc(heap.Value{Tag: heap.TagCons, Car: elem, Cdr: inner})
}

// readString reads between matching quotes; the closing quote is
// consumed. Unterminated strings fail fatally.
func (rd *Reader) readString(c *cursor, file, source string) heap.Ref {
	start := c.offset
	c.advance() // opening quote
	for {
		if c.atEnd() {
			rd.fail(c, file, source, "unterminated string literal")
		}
		if c.peek() == '"' {
			break
		}
		c.advance()
	}
	text := c.text[start+1 : c.offset]
	c.advance() // closing quote
	return rd.h.Alloc(heap.Value{Tag: heap.TagString, Text: truncate(text)})
}

// readNumber reads a run of digits and delegates to a standard base-10
// signed integer parse (sign is not part of the grammar — spec.md §4.3
// numbers are unsigned digit runs; "(- 5)" reads as an application of
// the `-` primitive, not a negative literal).
func (rd *Reader) readNumber(c *cursor) heap.Ref {
	start := c.offset
	for !c.atEnd() && isDigit(c.peek()) {
		c.advance()
	}
	text := c.text[start:c.offset]
	n, err := strconv.ParseInt(text, 10, 64)
	errors.Check(err == nil, "reader: malformed number literal %q", text)
	return rd.h.Alloc(heap.Value{Tag: heap.TagNum, Num: n})
}

// readSymbol reads up to the next whitespace or ')'; the closing paren is
// not consumed.
func (rd *Reader) readSymbol(c *cursor) heap.Ref {
	start := c.offset
	for !c.atEnd() && !isSpace(c.peek()) && c.peek() != ')' {
		c.advance()
	}
	text := c.text[start:c.offset]
	return rd.h.Alloc(heap.Value{Tag: heap.TagSymbol, Text: truncate(text)})
}

// truncate silently bounds inline text to MaxInlineLen-1 bytes, leaving
// room for the implicit terminator (spec.md §6, §9 open question:
// truncation is silent, not diagnosed).
func truncate(s string) string {
	if len(s) > heap.MaxInlineLen-1 {
		return s[:heap.MaxInlineLen-1]
	}
	return s
}
