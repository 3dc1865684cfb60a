// Package lsp is the public façade over the interpreter: it wires
// internal/heap, internal/reader, internal/eval, and internal/printer
// together behind a small Context type, the way the teacher's
// pkg/dwscript wires lexer/parser/semantic/interp behind its own Engine.
package lsp

import (
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/go-lsp/internal/errors"
	"github.com/cwbudde/go-lsp/internal/eval"
	"github.com/cwbudde/go-lsp/internal/heap"
	"github.com/cwbudde/go-lsp/internal/printer"
	"github.com/cwbudde/go-lsp/internal/reader"
)

// Context is one interpreter instance: a heap, its environment chain, and
// the configuration applied by New's options. Not safe for concurrent use
// (spec.md §5), same as the eval.Context it wraps.
type Context struct {
	h      *heap.Heap
	ec     *eval.Context
	stdout io.Writer
}

// config collects the option-settable knobs before the heap is built.
type config struct {
	heapCapacity int
	maxFileSize  int
	workDir      string
	stdout       io.Writer
}

// Option configures a Context at construction time, mirroring the
// teacher's dwscript.WithTypeCheck(...)-style Engine options.
type Option func(*config)

// WithHeapCapacity overrides the heap's slot count (default
// heap.DefaultCapacity).
func WithHeapCapacity(n int) Option {
	return func(c *config) { c.heapCapacity = n }
}

// WithMaxFileSize overrides how many bytes of a `load`-targeted file are
// read, both for the `load` special form and for Load (default
// eval.MaxFileSize).
func WithMaxFileSize(n int) Option {
	return func(c *config) { c.maxFileSize = n }
}

// WithWorkDir sets the base directory `load` resolves relative paths
// against (default: the process's current directory).
func WithWorkDir(dir string) Option {
	return func(c *config) { c.workDir = dir }
}

// WithStdout is accepted for parity with the teacher's Engine options. The
// writer is stored on the Context, but nothing writes to it: Eval/Load
// return their result as a string rather than writing it, so callers
// remain free to print it wherever they like.
func WithStdout(w io.Writer) Option {
	return func(c *config) { c.stdout = w }
}

// New creates a Context ready to Eval or Load against. cfg.maxFileSize
// (default eval.MaxFileSize, overridable via WithMaxFileSize) is threaded
// through to the wrapped eval.Context, so the bound applies identically
// whether a file reaches the interpreter via the `load` special form or via
// Load below.
func New(opts ...Option) *Context {
	cfg := config{
		heapCapacity: heap.DefaultCapacity,
		maxFileSize:  eval.MaxFileSize,
		stdout:       os.Stdout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := heap.New(cfg.heapCapacity)
	ec := eval.NewContext(h)
	ec.SetWorkDir(cfg.workDir)
	ec.SetMaxFileSize(cfg.maxFileSize)

	return &Context{h: h, ec: ec, stdout: cfg.stdout}
}

// Eval reads exactly one top-level expression from source, evaluates it,
// and returns its canonical printed form. Both the parsed form and the
// evaluated result are released (eval.Context.Release) before returning,
// since neither survives past one top-level form (spec.md §6's REPL
// cycle, mirrored here at the façade boundary so every caller — the CLI's
// `run`/`repl` commands, tests, any future embedder — gets the same
// release discipline for free instead of reimplementing it).
//
// A contract violation or reader failure inside the interpreter panics
// with an *errors.Fatal; Eval recovers it and returns it as an error
// instead, so library code never crashes a caller's process.
func (ctx *Context) Eval(source string) (result string, err error) {
	defer func() {
		if f := errors.Recover(recover()); f != nil {
			err = f
		}
	}()

	root := reader.New(ctx.h).Read(source, "<eval>")
	value := ctx.ec.Eval(root)
	result = printer.New(ctx.h).Print(value)

	ctx.ec.Release(root)
	ctx.ec.Release(value)
	return result, nil
}

// Load reads the single top-level form in the file at path, evaluates
// it, and returns its printed result — the same single-form behavior the
// `load` special form gives (spec.md §4.5), exposed here so cmd/lsp's
// `run` command can use it directly on a script file without going
// through the special form. The file is bounded to ctx.ec.MaxFileSize()
// bytes and its newlines/tabs stripped per spec.md §6's load-buffer
// convention, exactly as the `load` special form's own file-reading path
// does, so a script run via the CLI and one loaded via `(load "path")`
// honor the same bound.
func (ctx *Context) Load(path string) (result string, err error) {
	defer func() {
		if f := errors.Recover(recover()); f != nil {
			err = f
		}
	}()

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return "", fmt.Errorf("lsp: cannot read %q: %w", path, readErr)
	}
	if max := ctx.ec.MaxFileSize(); len(data) > max {
		data = data[:max]
	}

	buf := reader.StripLoadBuffer(string(data))
	form := reader.New(ctx.h).Read(buf, path)
	value := ctx.ec.Eval(form)
	result = printer.New(ctx.h).Print(value)

	ctx.ec.Release(form)
	ctx.ec.Release(value)
	return result, nil
}

// Heap exposes the underlying heap for callers that want GC statistics
// (e.g. a `--verbose` CLI flag reporting live/free slot counts).
func (ctx *Context) Heap() *heap.Heap { return ctx.h }
