// Package process runs the audio process function on a real-time thread.
package process

import (
	"runtime"
	"sync/atomic"

	"pipelined.dev/engine/internal/assert"
	"pipelined.dev/engine/log"
	"pipelined.dev/engine/thread"
)

// Func processes one block. It's called in a loop until the thread is
// stopped. Any non-nil error is fatal for the run: the loop ends and the
// error is recorded. Func must return within the block deadline, so stop
// requests are observed between blocks.
type Func func() error

// Thread owns a goroutine locked to a dedicated OS thread that invokes
// Func in a loop.
//
// State machine:
//
//	Idle -> Running -> Stopped (Stop called)
//	                -> Errored (Func or configuration returned error)
//
// Thread can be started again once it's not running.
type Thread struct {
	running atomic.Bool
	stop    atomic.Bool
	err     error
	done    chan struct{}
	log     log.Logger
}

// Option configures the thread.
type Option func(*Thread)

// WithLogger sets logger. Thread logs only on state transitions, never
// from the loop.
func WithLogger(l log.Logger) Option {
	return func(t *Thread) {
		t.log = l
	}
}

// New creates idle thread.
func New(options ...Option) *Thread {
	t := &Thread{log: log.Silent()}
	for _, option := range options {
		option(t)
	}
	return t
}

// IsRunning returns true while the loop is active.
func (t *Thread) IsRunning() bool {
	return t.running.Load()
}

// Err returns the error that stopped the last run, nil if it was stopped
// with Stop. It must not be called while running: wait for IsRunning to
// turn false or call Wait first.
func (t *Thread) Err() error {
	assert.That(!t.IsRunning(), "error queried while process thread is running")
	return t.err
}

// Start spawns the thread with configuration applied and runs fn in a
// loop. Thread must not be running. If the previous run has not fully
// exited yet, Start waits for it first. IsRunning is true from the moment
// Start returns until the loop exits.
func (t *Thread) Start(conf thread.Configuration, fn Func) {
	assert.That(!t.IsRunning(), "process thread started while running")
	t.Wait()

	t.err = nil
	t.stop.Store(false)
	t.done = make(chan struct{})
	t.running.Store(true)
	t.log.Debug("starting process thread: ", conf)
	go t.loop(conf, fn, t.done)
}

func (t *Thread) loop(conf thread.Configuration, fn Func, done chan struct{}) {
	defer close(done)
	// the thread is not unlocked and dies with the goroutine
	runtime.LockOSThread()

	if err := conf.Apply(); err != nil {
		t.log.Error("process thread configuration failed: ", err)
		t.err = err
		t.running.Store(false)
		return
	}
	if conf.IsRealtime() {
		// memory stays unlocked, the thread keeps running
		if err := thread.LockProcessMemory(); err != nil {
			t.log.Warn("process memory is not locked: ", err)
		}
	}

	for !t.stop.Load() {
		if err := fn(); err != nil {
			t.err = err
			break
		}
	}

	if t.err != nil {
		t.log.Error("process thread stopped on error: ", t.err)
	} else {
		t.log.Debug("process thread stopped")
	}
	t.running.Store(false)
}

// Stop requests the loop to end after the current block. It doesn't wait.
func (t *Thread) Stop() {
	t.stop.Store(true)
}

// Wait blocks until the goroutine of the last run has exited. It returns
// immediately if the thread was never started.
func (t *Thread) Wait() {
	if t.done != nil {
		<-t.done
	}
}
