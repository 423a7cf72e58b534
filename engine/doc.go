// Package engine embeds a JavaScript isolate per execution context and
// translates results into host values.
//
// # Overview
//
// A [Context] owns one goja runtime plus its event loop. Init code given
// at creation compiles lazily on first use; after that, Eval and Call run
// arbitrary expressions or named functions and return their results as
// Go values (nil, bool, float64, string, []any, map[string]any).
//
// # Basic Usage
//
//	ctx, err := engine.New(`function add(a, b) { return a + b; }`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	sum, _ := ctx.Call(context.Background(), "add", []any{2, 3})  // 5
//	val, _ := ctx.Eval(context.Background(), "1 + 2 + 3")         // 6
//
// # Promises
//
// By default an evaluation awaits its result and drains the event loop
// until every timer and continuation it scheduled has settled:
//
//	v, _ := ctx.Eval(context.Background(), "Promise.resolve(42)")  // 42
//
// Pass WithAwait(false) to evaluate synchronously instead; a pending
// promise is then serialized as-is rather than unwrapped.
//
// # Fast path
//
// The package-level [Eval] runs code on a pooled empty-init context,
// skipping isolate creation for one-shot call sites:
//
//	v, _ := engine.Eval(context.Background(), "1 + 2 + 3")
//
// # Ownership
//
// A Context belongs to a single logical owner; it is not safe for
// concurrent use. Run one context per goroutine instead - independent
// contexts share nothing.
package engine
