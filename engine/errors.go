package engine

import (
	"context"
	"errors"
)

// Sentinel errors for the evaluation pipeline. Callers distinguish
// failure phases with errors.Is; messages carry the detail.
var (
	// ErrClosed is returned when a closed Context is used.
	ErrClosed = errors.New("context closed")

	// ErrCompile means the init code failed to run. The context stays
	// uncompiled, so a later call re-attempts compilation.
	ErrCompile = errors.New("compile error")

	// ErrExecution means the submitted code threw or the engine call
	// itself failed.
	ErrExecution = errors.New("execution error")

	// ErrEventLoop means event-loop draining finished without the
	// evaluation settling (e.g. a promise that never resolves).
	ErrEventLoop = errors.New("event loop error")

	// ErrResultMissing means the run reported no error but the result
	// slot was empty afterwards.
	ErrResultMissing = errors.New("no result stored")

	// ErrConversion means the stored result text failed to parse as an
	// interchange value.
	ErrConversion = errors.New("conversion error")

	// ErrTimeout means the evaluation exceeded the deadline configured
	// with WithTimeout.
	ErrTimeout = errors.New("evaluation timeout")
)

// IsInterrupt reports whether err came from a deadline or cancellation
// rather than from the guest code. An interrupted await-mode drain can
// leave scheduled jobs behind on the context's event loop; callers that
// pool or share contexts use this to drop the instance instead of
// reusing it.
func IsInterrupt(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
