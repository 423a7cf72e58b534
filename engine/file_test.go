package engine_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/caffeineduck/jsru/engine"
)

func writeScript(t *testing.T, name, code string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestNewFromFile(t *testing.T) {
	path := writeScript(t, "init.js", `function mul(a, b) { return a * b; }`)

	c, err := engine.NewFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	v, err := c.Call(context.Background(), "mul", []any{6, 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42.0 {
		t.Errorf("got %#v, want 42", v)
	}
}

func TestNewFromFileMissing(t *testing.T) {
	_, err := engine.NewFromFile(filepath.Join(t.TempDir(), "nope.js"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestEvalFile(t *testing.T) {
	path := writeScript(t, "script.js", "Promise.resolve(6 * 7)")

	v, err := engine.EvalFile(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42.0 {
		t.Errorf("got %#v, want 42", v)
	}
}

func TestEvalFileMissing(t *testing.T) {
	_, err := engine.EvalFile(context.Background(), filepath.Join(t.TempDir(), "nope.js"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}
