package engine

import (
	"sync"

	"github.com/dop251/goja_nodejs/require"
)

var (
	bootstrapOnce  sync.Once
	globalRegistry *require.Registry
)

// ensureInitialized sets up process-wide engine resources exactly once.
// Every constructor and the package-level Eval fast path call it, so the
// order of first use does not matter.
func ensureInitialized() {
	bootstrapOnce.Do(func() {
		globalRegistry = require.NewRegistry()
	})
}

// sharedRegistry returns the process-wide module registry. The registry
// caches compiled modules and is built to be shared across runtimes.
func sharedRegistry() *require.Registry {
	ensureInitialized()
	return globalRegistry
}
