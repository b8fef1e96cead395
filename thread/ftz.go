//go:build amd64 || arm64

package thread

// EnableFlushToZero makes the FPU of the calling thread flush denormal
// results to zero.
func EnableFlushToZero() {
	enableFlushToZero()
}

// FlushToZero reports whether flush-to-zero is on for the calling thread.
func FlushToZero() bool {
	return flushToZero()
}

func enableFlushToZero()

func flushToZero() bool
