package engine

import "time"

// Option configures a Context at creation time.
type Option func(*config)

type config struct {
	timeout time.Duration
	console bool
}

func defaultConfig() config {
	return config{
		console: true,
	}
}

// WithTimeout sets a default deadline applied to every evaluation on the
// context. Zero (the default) means evaluations run until the caller's
// context is done, if ever.
//
// An exceeded deadline interrupts the guest and makes the evaluation
// fail with an error wrapping ErrTimeout. In await mode it also stops
// the event-loop drain, which can leave scheduled work behind; result
// reports from the interrupted run are discarded, but the leftover jobs
// themselves still fire during the next drain. Close a context after an
// interrupt if running that work is unacceptable.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithConsole controls whether the guest gets a console object. Enabled
// by default; disable it for contexts whose output should not reach the
// process stdout.
func WithConsole(enabled bool) Option {
	return func(c *config) {
		c.console = enabled
	}
}

// EvalOption configures a single evaluation.
type EvalOption func(*evalConfig)

type evalConfig struct {
	await bool
}

func defaultEvalConfig() evalConfig {
	return evalConfig{
		await: true,
	}
}

// WithAwait controls the evaluation mode. Enabled (the default) wraps the
// code in a deferred-computation boundary, awaits the resolved value, and
// drains the event loop to quiescence before reading the result. Disabled
// evaluates synchronously: pending promises are serialized as-is, never
// unwrapped, and no scheduled work is awaited.
func WithAwait(enabled bool) EvalOption {
	return func(c *evalConfig) {
		c.await = enabled
	}
}
