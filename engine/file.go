package engine

import (
	"context"
	"fmt"
	"os"
)

// NewFromFile reads init code from path and creates a Context with it.
// A read failure wraps the underlying fs error and is distinguishable
// from compile and execution errors.
func NewFromFile(path string, opts ...Option) (*Context, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return New(string(code), opts...)
}

// EvalFile reads code from path and evaluates it on the pooled fast path.
func EvalFile(ctx context.Context, path string, opts ...EvalOption) (any, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Eval(ctx, string(code), opts...)
}
