// Package metric measures real-time processing load and reports it to
// non-real-time observers.
package metric

import (
	"time"

	"pipelined.dev/engine"
	"pipelined.dev/engine/thread"
)

// LoadMeter measures CPU time of the calling thread against the deadline
// of one block. The calling goroutine must be locked to its OS thread with
// runtime.LockOSThread between StartLoad and Stop, as the process thread
// is. Otherwise the readings may come from different threads.
type LoadMeter struct {
	deadline time.Duration
	start    time.Duration
}

// StartLoad starts measuring a block of frames at the sample rate.
func StartLoad(frames int, sampleRate engine.SampleRate) LoadMeter {
	return LoadMeter{
		deadline: sampleRate.DurationOf(frames),
		start:    thread.CPUTime(),
	}
}

// Deadline returns processing time available for the block.
func (m LoadMeter) Deadline() time.Duration {
	return m.deadline
}

// Stop returns the load as fraction of the deadline.
func (m LoadMeter) Stop() float64 {
	return Load(thread.CPUTime()-m.start, m.deadline)
}

// Load returns elapsed time as fraction of the deadline. Zero deadline,
// e.g. an empty block, yields zero load.
func Load(elapsed, deadline time.Duration) float64 {
	if deadline <= 0 {
		return 0
	}
	return float64(elapsed) / float64(deadline)
}
