package engine

import (
	"context"
	"sync"
)

// contextPool backs the package-level Eval fast path with empty-init
// contexts. sync.Pool keeps entries local to the scheduler's workers, so
// repeated Eval calls on one worker reuse one isolate without a shared
// lock; a pooled context is never used by two callers at once.
var contextPool = sync.Pool{
	New: func() any {
		c, err := New("")
		if err != nil {
			return nil
		}
		return c
	},
}

// Eval runs code on a pooled context and returns the result as a host
// value. It exists to amortize isolate creation for call sites that need
// neither init code nor an independent context of their own.
//
// Guest globals may or may not survive between Eval calls, depending on
// which pooled isolate serves the call; code that relies on prior state
// should hold its own Context.
//
// A context whose evaluation was interrupted keeps whatever jobs its
// drain never reached, so it is closed and dropped rather than returned
// to the pool.
func Eval(ctx context.Context, code string, opts ...EvalOption) (any, error) {
	c, _ := contextPool.Get().(*Context)
	if c == nil {
		var err error
		c, err = New("")
		if err != nil {
			return nil, err
		}
	}

	v, err := c.Eval(ctx, code, opts...)
	if IsInterrupt(err) {
		c.Close()
		return v, err
	}
	contextPool.Put(c)
	return v, err
}
