// Package assert provides precondition checks for real-time code paths.
//
// Checks are compiled in only with the enginedebug build tag. Without it
// Enabled is false and every call is a no-op the compiler removes, so
// violations stay undefined behaviour in release builds.
package assert

import "fmt"

// That panics with msg if cond is false and assertions are enabled.
func That(cond bool, msg string) {
	if Enabled && !cond {
		panic("assertion failed: " + msg)
	}
}

// Failf panics with a formatted message if assertions are enabled. Call it
// only on the failing branch, so arguments are not boxed on hot paths:
//
//	if assert.Enabled && offset < 0 {
//		assert.Failf("negative offset %d", offset)
//	}
func Failf(format string, args ...any) {
	if Enabled {
		panic("assertion failed: " + fmt.Sprintf(format, args...))
	}
}
