//go:build !amd64 && !arm64

package thread

// EnableFlushToZero is a no-op on this architecture.
func EnableFlushToZero() {}

// FlushToZero always returns false on this architecture.
func FlushToZero() bool {
	return false
}
