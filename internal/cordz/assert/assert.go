// Package assert implements the debug-only precondition checks used by
// the cordz tracking core.
//
// Violations guarded by this package are programmer bugs (for example
// calling SetCordRep without holding the record mutex), not runtime
// conditions a caller could recover from. Checks are therefore compiled
// down to a single branch that is false in release builds: build with
// the "cordzdebug" tag to arm them, or call SetEnabledForTesting from
// test code.
package assert

import "fmt"

// enabled controls whether Check panics on violated preconditions.
// It defaults to the build-tag constant and may be overridden by tests.
var enabled = enabledDefault

// Check panics with msg if cond is false and assertions are enabled.
//
// The condition expression is always evaluated; keep it cheap on hot
// paths (a single comparison or atomic load).
func Check(cond bool, msg string) {
	if enabled && !cond {
		panic(fmt.Sprintf("cordz: internal contract violated: %s", msg))
	}
}

// Enabled reports whether assertion checks are currently armed.
func Enabled() bool {
	return enabled
}

// SetEnabledForTesting arms or disarms assertion checks and returns the
// previous setting so tests can restore it.
//
// NOT safe for concurrent use; call only from single-threaded test
// setup/teardown.
func SetEnabledForTesting(on bool) bool {
	prev := enabled
	enabled = on
	return prev
}
