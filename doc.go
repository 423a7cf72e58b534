// Package jsru embeds a JavaScript engine in Go programs: compile
// initialization code once, then call functions or evaluate expressions
// repeatedly and get results back as native Go values.
//
// # Overview
//
// Each execution context owns an isolated goja runtime with its own
// globals and event loop. Evaluations await promises by default, draining
// the isolate's scheduled work before reporting, so async guest code
// behaves like a synchronous call from the host's point of view.
//
// # Basic Usage
//
//	ctx, _ := engine.New(`function add(a, b) { return a + b; }`)
//	defer ctx.Close()
//
//	sum, _ := ctx.Call(context.Background(), "add", []any{2, 3})   // 5
//	v, _ := ctx.Eval(context.Background(), "Promise.resolve(42)")  // 42
//
//	// One-shot evaluation on a pooled context:
//	six, _ := engine.Eval(context.Background(), "1 + 2 + 3")
//
// See the [github.com/caffeineduck/jsru/engine] and
// [github.com/caffeineduck/jsru/interchange] packages for detailed API
// documentation, and cmd/jsru for the CLI, REPL, and HTTP server built on
// top of them.
package jsru
