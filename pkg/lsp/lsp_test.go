package lsp

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEvalArithmetic(t *testing.T) {
	ctx := New()
	got, err := ctx.Eval("(+ 1 2 3)")
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if got != "6" {
		t.Errorf("Eval((+ 1 2 3)) = %q, want 6", got)
	}
}

func TestEvalAcrossMultipleCalls(t *testing.T) {
	ctx := New()
	if _, err := ctx.Eval("(defun double (x) (* x 2))"); err != nil {
		t.Fatalf("defun failed: %v", err)
	}
	got, err := ctx.Eval("(double 21)")
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if got != "42" {
		t.Errorf("Eval((double 21)) = %q, want 42", got)
	}
}

func TestEvalUnboundSymbolToleratedAsNil(t *testing.T) {
	ctx := New()
	got, err := ctx.Eval("undefined-name")
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if got != "nil" {
		t.Errorf("Eval(undefined-name) = %q, want nil", got)
	}
}

func TestLoadEvaluatesFileContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.lsp")
	if err := os.WriteFile(path, []byte("(+ 10 32)"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ctx := New()
	got, err := ctx.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != "42" {
		t.Errorf("Load(%q) = %q, want 42", path, got)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	ctx := New()
	if _, err := ctx.Load(filepath.Join(t.TempDir(), "missing.lsp")); err == nil {
		t.Fatal("Load(missing file) returned nil error, want non-nil")
	}
}

func TestWithHeapCapacityAppliesToUnderlyingHeap(t *testing.T) {
	ctx := New(WithHeapCapacity(64))
	if got := ctx.Heap().Capacity(); got != 64 {
		t.Errorf("Heap().Capacity() = %d, want 64", got)
	}
}
