//go:build !cordzdebug

package assert

// enabledDefault is false in release builds: Check compiles down to a
// never-taken branch.
const enabledDefault = false
