// Package thread configures OS threads for real-time work.
//
// Go schedules goroutines over OS threads, so every function here acts on
// the calling OS thread and must be called from a goroutine locked with
// runtime.LockOSThread. A configured thread should never be unlocked: when
// the goroutine exits, the runtime terminates the thread together with its
// elevated scheduling settings.
package thread

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnsupported is returned on platforms without real-time thread control.
var ErrUnsupported = errors.New("thread configuration is not supported on this platform")

// Configuration of a real-time thread. Zero value leaves OS defaults.
type Configuration struct {
	// Affinity pins the thread to the CPU with this index.
	Affinity *int `yaml:"affinity,omitempty"`
	// Priority switches the thread to SCHED_FIFO with this priority. It
	// also enables flush-to-zero. Process memory is locked separately with
	// LockProcessMemory.
	Priority *int `yaml:"priority,omitempty"`
	// Name of the thread. Linux truncates it to 15 bytes.
	Name string `yaml:"name,omitempty"`
}

// CPU returns pointer to cpu index, to fill Configuration.Affinity.
func CPU(i int) *int {
	return &i
}

// Priority returns pointer to the priority, to fill Configuration.Priority.
func Priority(p int) *int {
	return &p
}

// IsRealtime returns true if realtime priority is requested.
func (c Configuration) IsRealtime() bool {
	return c.Priority != nil
}

// Apply configures the calling thread. It's called once, at the very start
// of the thread body.
func (c Configuration) Apply() error {
	if c.Affinity != nil {
		if err := SetAffinity(*c.Affinity); err != nil {
			return fmt.Errorf("error setting affinity %d: %w", *c.Affinity, err)
		}
	}
	if c.Priority != nil {
		if err := SetRealtimePriority(*c.Priority); err != nil {
			return fmt.Errorf("error setting realtime priority %d: %w", *c.Priority, err)
		}
		EnableFlushToZero()
	}
	if c.Name != "" {
		if err := SetName(c.Name); err != nil {
			return fmt.Errorf("error setting name %q: %w", c.Name, err)
		}
	}
	return nil
}

var (
	lockMemory     = LockMemory
	memoryLockOnce sync.Once
	memoryLockErr  error
)

// LockProcessMemory locks process memory with LockMemory on the first call
// and returns the result of that attempt on every call. The lock is
// process-wide, so all real-time threads share it.
func LockProcessMemory() error {
	memoryLockOnce.Do(func() {
		memoryLockErr = lockMemory()
	})
	return memoryLockErr
}

// String returns readable configuration.
func (c Configuration) String() string {
	affinity, priority := "default", "default"
	if c.Affinity != nil {
		affinity = fmt.Sprint(*c.Affinity)
	}
	if c.Priority != nil {
		priority = fmt.Sprint(*c.Priority)
	}
	return fmt.Sprintf("name=%q affinity=%s priority=%s", c.Name, affinity, priority)
}
