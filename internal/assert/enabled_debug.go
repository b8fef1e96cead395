//go:build enginedebug

package assert

// Enabled reports whether assertions are compiled in.
const Enabled = true
