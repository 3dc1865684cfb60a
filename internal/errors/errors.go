// Package errors provides the interpreter's fatal-error and trace
// reporting. Reader errors are reported with source position and a caret,
// in the style of the teacher's CompilerError; runtime contract
// violations (spec.md §7.1) are reported as a *Fatal carrying the
// violated invariant, and silent tolerances (spec.md §7.2) are reported
// through a structured trace line rather than surfaced to the caller.
package errors

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// Position locates a point in source text for reader diagnostics.
// Check/Fatalf record the interpreter's own file/line on Fatal instead.
type Position struct {
	Line   int
	Column int
	Offset int
}

// CompilerError is a single reader diagnostic with position and source
// context, formatted with a caret the way the teacher's CompilerError is.
type CompilerError struct {
	Message string
	Source  string
	File    string
	Pos     Position
}

// NewCompilerError creates a reader diagnostic.
func NewCompilerError(pos Position, message, source, file string) *CompilerError {
	return &CompilerError{Pos: pos, Message: message, Source: source, File: file}
}

func (e *CompilerError) Error() string { return e.Format() }

// Format renders the error with a source-line + caret, matching the
// teacher's errors.CompilerError.Format(false) (color is not offered: the
// REPL and `run` both print to a plain terminal).
func (e *CompilerError) Format() string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "Error at line %d:%d\n", e.Pos.Line, e.Pos.Column)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+e.Pos.Column-1))
		sb.WriteString("^\n")
	}

	sb.WriteString(e.Message)
	return sb.String()
}

func (e *CompilerError) sourceLine(n int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// Kind classifies a Fatal: which kind of contract violation aborted the
// interpreter. Silent tolerances never produce a Fatal.
type Kind int

const (
	// KindInvariantViolation covers wrong-tag access, unbound-symbol misuse,
	// improper AST shape, and every other internal CHECK failure.
	KindInvariantViolation Kind = iota
	KindOutOfMemory
	KindUnterminatedInput
	KindMissingFile
)

func (k Kind) String() string {
	switch k {
	case KindInvariantViolation:
		return "invariant violation"
	case KindOutOfMemory:
		return "out of memory"
	case KindUnterminatedInput:
		return "unterminated input"
	case KindMissingFile:
		return "missing file"
	default:
		return "unknown"
	}
}

// Fatal is a contract violation: spec.md §7.1 requires these to abort the
// process with a trace line naming the interpreter source file and line
// (never a user-source location — there is no such tracking). Fatal
// itself only carries the information; Check/Fatalf panic with it, and
// the pkg/lsp façade (Context.Eval/Load) is the place that recovers it
// and returns it as an ordinary error, so library code has no os.Exit
// buried in internal/heap or internal/eval. cmd/lsp's `run` turns that
// error into a non-zero process exit.
type Fatal struct {
	Kind    Kind
	Message string
	File    string
	Line    int
}

func (f *Fatal) Error() string {
	return fmt.Sprintf("%s: %s (%s:%d)", f.Kind, f.Message, f.File, f.Line)
}

// Fatalf logs a trace line for kind/message at the caller's location (the
// interpreter's own file:line, per spec.md §7) and panics with a *Fatal.
// Grounded on the original C source's ERROR(...) macro in
// original_source/include/trace.h, which prints file/function/line before
// aborting.
func Fatalf(kind Kind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "unknown", 0
	}
	slog.Error("lsp: fatal", "kind", kind.String(), "msg", msg, "file", file, "line", line)
	panic(&Fatal{Kind: kind, Message: msg, File: file, Line: line})
}

// Check aborts with KindInvariantViolation unless cond holds. This is the
// Go analogue of the original source's check.h CHECK(cond) macro.
func Check(cond bool, format string, args ...any) {
	if cond {
		return
	}
	msg := fmt.Sprintf(format, args...)
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "unknown", 0
	}
	slog.Error("lsp: fatal", "kind", KindInvariantViolation.String(), "msg", msg, "file", file, "line", line)
	panic(&Fatal{Kind: KindInvariantViolation, Message: msg, File: file, Line: line})
}

// TraceUnboundLookup reports a silent-tolerance lookup miss (spec.md §7.2):
// the chain was walked to its end and NIL is being returned in its place.
// This is the only place in the interpreter that logs without aborting.
func TraceUnboundLookup(name string) {
	slog.Debug("lsp: unbound symbol, returning nil", "symbol", name)
}

// Recover turns a panic raised by Fatalf/Check back into a *Fatal, or
// re-panics if the recovered value is something else entirely (a real Go
// bug, which must not be swallowed). Called, with the result of
// recover(), at the boundary (pkg/lsp's Eval/Load, and test helpers)
// that turns an abort into a returned error instead of crashing the
// process outright.
func Recover(r any) *Fatal {
	if r == nil {
		return nil
	}
	if f, ok := r.(*Fatal); ok {
		return f
	}
	panic(r)
}
