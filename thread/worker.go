package thread

import (
	"runtime"
	"sync/atomic"
)

// Worker runs one task at a time on a dedicated, configured OS thread.
// Tasks must not panic and should be prepared once and reused: a new
// closure per Wakeup may allocate.
type Worker struct {
	work     chan struct{} // binary semaphore, released when task is set
	finished chan struct{} // binary semaphore, held while task runs
	done     chan struct{}
	stopped  atomic.Bool
	task     func()
	err      error
}

// NewWorker starts new worker thread with the configuration applied. If
// configuration fails, the worker still runs tasks on an unconfigured
// thread and the error is available from Err.
func NewWorker(conf Configuration) *Worker {
	w := &Worker{
		work:     make(chan struct{}, 1),
		finished: make(chan struct{}, 1),
		done:     make(chan struct{}),
		task:     func() {},
	}
	w.finished <- struct{}{}
	ready := make(chan struct{})
	go w.run(conf, ready)
	<-ready
	return w
}

func (w *Worker) run(conf Configuration, ready chan<- struct{}) {
	defer close(w.done)
	// the thread is not unlocked and dies with the goroutine
	runtime.LockOSThread()
	w.err = conf.Apply()
	close(ready)

	for {
		<-w.work
		if w.stopped.Load() {
			return
		}
		w.task()
		w.finished <- struct{}{}
	}
}

// Err returns the configuration error of the worker thread.
func (w *Worker) Err() error {
	return w.err
}

// Wakeup hands the task over to the worker. It blocks until the previous
// task is finished.
func (w *Worker) Wakeup(task func()) {
	<-w.finished
	w.task = task
	w.work <- struct{}{}
}

// Wait blocks until the current task, if any, is finished.
func (w *Worker) Wait() {
	<-w.finished
	w.finished <- struct{}{}
}

// Close waits for the current task to finish, stops the worker and joins
// its goroutine.
func (w *Worker) Close() {
	<-w.finished
	w.stopped.Store(true)
	w.work <- struct{}{}
	<-w.done
}
