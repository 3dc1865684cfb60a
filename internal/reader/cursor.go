package reader

import "github.com/cwbudde/go-lsp/internal/errors"

// cursor tracks a byte position in the text being read, in the style of
// the teacher's Lexer: a running line/column alongside the raw offset, so
// a fatal reader error can be reported with a Position. Unlike the
// teacher's lexer, cursor operates on bytes, not runes — spec.md §1
// excludes unicode-aware lexing, and spec.md §6 fixes the source format
// as ASCII.
type cursor struct {
	text   string
	offset int
	line   int
	column int
}

func newCursor(text string) *cursor {
	return &cursor{text: text, line: 1, column: 1}
}

// atEnd reports whether every byte of text has been consumed.
func (c *cursor) atEnd() bool {
	return c.offset >= len(c.text)
}

// peek returns the next unconsumed byte without advancing, or 0 at end.
func (c *cursor) peek() byte {
	if c.atEnd() {
		return 0
	}
	return c.text[c.offset]
}

// advance consumes and returns the current byte, updating line/column.
// A caller must not call advance at end of input.
func (c *cursor) advance() byte {
	errors.Check(!c.atEnd(), "reader: advance past end of input")
	b := c.text[c.offset]
	c.offset++
	if b == '\n' {
		c.line++
		c.column = 1
	} else {
		c.column++
	}
	return b
}

// skipSpaces eats a run of whitespace. spec.md §4.3's grammar defines
// ws := ' '+, but a general Read caller (the REPL, pkg/lsp.Eval) may hand
// the reader genuinely multi-line text with no `load`-style
// preprocessing, so tab and newline are treated the same as space here
// rather than becoming part of the next token (see isSpace).
func (c *cursor) skipSpaces() {
	for isSpace(c.peek()) {
		c.advance()
	}
}

// isSpace reports whether b separates tokens (see skipSpaces).
func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n'
}

// position returns the cursor's current location for error reporting.
func (c *cursor) position() errors.Position {
	return errors.Position{Line: c.line, Column: c.column, Offset: c.offset}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
