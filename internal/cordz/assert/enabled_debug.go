//go:build cordzdebug

package assert

// enabledDefault is true under the cordzdebug build tag: every Check
// verifies its precondition and panics on violation.
const enabledDefault = true
