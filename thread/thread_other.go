//go:build !linux

package thread

import (
	"time"
)

var monotonicStart = time.Now()

// SetAffinity is not supported.
func SetAffinity(int) error {
	return ErrUnsupported
}

// SetRealtimePriority is not supported.
func SetRealtimePriority(int) error {
	return ErrUnsupported
}

// SetName is a no-op on this platform.
func SetName(string) error {
	return nil
}

// Name is not supported.
func Name() (string, error) {
	return "", ErrUnsupported
}

// LockMemory is not supported.
func LockMemory() error {
	return ErrUnsupported
}

// CPUTime falls back to monotonic wall time since the package start.
func CPUTime() time.Duration {
	return time.Since(monotonicStart)
}
