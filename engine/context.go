package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"

	"github.com/caffeineduck/jsru/interchange"
)

// Context owns one isolate: a goja runtime plus its event loop, the
// one-time-compiled init code, a result slot, and an execution counter.
//
// A Context is pinned to a single logical owner. Evaluations are strictly
// sequential; calling into one Context from two goroutines at once is a
// programming error, not a supported race. Independent Contexts are fully
// isolated from each other and may run on separate goroutines freely.
type Context struct {
	loop    *eventloop.EventLoop
	vm      *goja.Runtime
	results *resultSlot
	cfg     config

	initCode  string
	compiled  bool
	execCount int
	closed    bool
}

// New creates a Context holding initCode. The code is not run yet;
// compilation is deferred to the first evaluation so a context whose init
// code is never needed pays no cost. Empty initCode is valid.
func New(initCode string, opts ...Option) (*Context, error) {
	ensureInitialized()

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	loop := eventloop.NewEventLoop(
		eventloop.WithRegistry(sharedRegistry()),
		eventloop.EnableConsole(cfg.console),
	)

	c := &Context{
		loop:     loop,
		results:  newResultSlot(),
		cfg:      cfg,
		initCode: initCode,
	}

	var setErr error
	loop.Run(func(vm *goja.Runtime) {
		c.vm = vm
		setErr = vm.Set(storeResultFunc, c.results.Store)
	})
	if setErr != nil {
		return nil, fmt.Errorf("register result callback: %w", setErr)
	}

	return c, nil
}

// ensureCompiled runs the init code on the isolate if it has not run yet.
// A failure leaves compiled false so a later evaluation retries.
func (c *Context) ensureCompiled() error {
	if c.compiled || c.initCode == "" {
		return nil
	}
	if _, err := c.vm.RunString(c.initCode); err != nil {
		return fmt.Errorf("%w: %v", ErrCompile, err)
	}
	c.compiled = true
	return nil
}

// Eval runs code on the isolate and returns the result as a host value.
// By default the evaluation awaits promises and drains the event loop
// until all scheduled work settles; pass WithAwait(false) for the
// synchronous mode. The call blocks until the evaluation completes or ctx
// is done.
func (c *Context) Eval(ctx context.Context, code string, opts ...EvalOption) (any, error) {
	if c.closed {
		return nil, ErrClosed
	}

	ecfg := defaultEvalConfig()
	for _, opt := range opts {
		opt(&ecfg)
	}

	if err := c.ensureCompiled(); err != nil {
		return nil, err
	}

	gen := c.results.Begin()

	harness, err := buildHarness(code, ecfg.await, gen)
	if err != nil {
		return nil, err
	}

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	if ecfg.await {
		err = c.runAwait(ctx, harness)
	} else {
		err = c.runDirect(ctx, harness)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if c.cfg.timeout > 0 && errors.Is(ctxErr, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w after %v", ErrTimeout, c.cfg.timeout)
			}
			return nil, fmt.Errorf("evaluation canceled: %w", ctxErr)
		}
		return nil, err
	}

	text, ok := c.results.Take()
	if !ok {
		return nil, fmt.Errorf("%w: harness reported nothing", ErrResultMissing)
	}

	c.execCount++
	if c.execCount%100 == 0 {
		c.RequestGC()
	}

	v, err := interchange.FromGuestText(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return interchange.ToHost(v), nil
}

// runDirect evaluates the harness without touching the event loop. The
// loop is idle between evaluations, so the isolate can be used directly.
func (c *Context) runDirect(ctx context.Context, harness string) error {
	release := c.watch(ctx, false)
	_, err := c.vm.RunString(harness)
	release()
	if err != nil {
		return execError(err)
	}
	return nil
}

// runAwait evaluates the harness on the event loop and drains it to
// quiescence. Run returns once no scheduled jobs remain; afterwards the
// harness promise tells throw-vs-stall apart: a rejection means the
// submitted code threw, a still-pending promise means the drain finished
// with the evaluation unsettled.
func (c *Context) runAwait(ctx context.Context, harness string) error {
	var val goja.Value
	var err error

	release := c.watch(ctx, true)
	c.loop.Run(func(vm *goja.Runtime) {
		val, err = vm.RunString(harness)
	})
	release()

	if err != nil {
		return execError(err)
	}

	if p, ok := val.Export().(*goja.Promise); ok {
		switch p.State() {
		case goja.PromiseStateRejected:
			return fmt.Errorf("%w: %v", ErrExecution, p.Result())
		case goja.PromiseStatePending:
			return fmt.Errorf("%w: evaluation did not settle", ErrEventLoop)
		}
	}
	return nil
}

// watch interrupts the isolate when ctx is done. The returned release
// must be called after the run; it stops the watcher and clears any
// pending interrupt.
func (c *Context) watch(ctx context.Context, draining bool) func() {
	if ctx == nil || ctx.Done() == nil {
		return func() {}
	}

	quit := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			c.vm.Interrupt(ctx.Err())
			if draining {
				c.loop.StopNoWait()
			}
		case <-quit:
		}
	}()

	return func() {
		close(quit)
		wg.Wait()
		c.vm.ClearInterrupt()
	}
}

func execError(err error) error {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return fmt.Errorf("%w: %v", ErrExecution, ex.Value())
	}
	return fmt.Errorf("%w: %v", ErrExecution, err)
}

// Call invokes a function defined on the isolate, typically by the init
// code. Each argument is converted to interchange form and rendered as a
// guest literal; the call expression then goes through the normal Eval
// pipeline.
//
// name is spliced in unescaped and unvalidated. Callers must pass a valid
// identifier or property-access expression; the embedding program, not
// untrusted input, decides which functions exist.
func (c *Context) Call(ctx context.Context, name string, args []any, opts ...EvalOption) (any, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		iv, err := interchange.FromHost(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		text, err := interchange.ToGuestText(iv)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		parts[i] = text
	}

	expr := name + "(" + strings.Join(parts, ", ") + ")"
	return c.Eval(ctx, expr, opts...)
}

// RequestGC asks the engine to collect garbage if it can. Advisory only:
// it never fails the caller, and engines without an exposed collector
// ignore it.
func (c *Context) RequestGC() {
	if c.closed {
		return
	}
	_, _ = c.vm.RunString("if (typeof gc === 'function') { gc(); } null;")
}

// Stats reports execution statistics for the context.
type Stats struct {
	ExecCount int
}

// Stats returns the number of completed evaluations. Observational only.
func (c *Context) Stats() Stats {
	return Stats{ExecCount: c.execCount}
}

// ResetStats zeroes the execution counter. Isolate state is untouched.
func (c *Context) ResetStats() {
	c.execCount = 0
}

// Close releases the context. The result slot is cleared and the compiled
// flag forced back to false; the isolate itself is reclaimed with the
// context. Close is idempotent, and any later Eval or Call returns
// ErrClosed.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.results.Begin()
	c.compiled = false
	return nil
}
