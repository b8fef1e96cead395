// Package dag executes a directed acyclic graph of tasks once per block.
//
// A DAG is built up front with AddTask, AddChildTask and AddChild, then
// turned into an Executor with Runnable. The executor runs every task
// exactly once per call, each task after all of its parents. Executing
// doesn't allocate, block or take locks, so it's safe to call from a
// real-time thread.
package dag

import (
	"errors"
	"fmt"
	"time"

	"pipelined.dev/engine/thread"
)

var (
	// ErrUnknownTask is returned when task id doesn't belong to the DAG.
	ErrUnknownTask = errors.New("unknown task")
	// ErrCycle is returned when an edge would close a cycle.
	ErrCycle = errors.New("child is an ancestor of the parent")
)

// TaskID identifies a task within its DAG.
type TaskID int

// ThreadContext is the state shared by tasks executed on the same thread
// within one block.
type ThreadContext struct {
	BufferSize int
}

// Task is a unit of work executed once per block.
type Task func(*ThreadContext)

// Executor executes all tasks for a block of bufferSize frames and
// returns the CPU time spent. The calling goroutine is locked to its OS
// thread for the duration of Execute, so the measurement covers a single
// thread. Locks nest, so it's safe to call from an already locked thread.
type Executor interface {
	Execute(bufferSize int) time.Duration
}

// DAG is a graph of tasks. The zero value is an empty graph.
type DAG struct {
	tasks    []Task
	children [][]TaskID
}

// AddTask adds a task without parents.
func (d *DAG) AddTask(t Task) TaskID {
	id := TaskID(len(d.tasks))
	d.tasks = append(d.tasks, t)
	d.children = append(d.children, nil)
	return id
}

// AddChildTask adds a task that runs after the parent.
func (d *DAG) AddChildTask(parent TaskID, t Task) (TaskID, error) {
	if !d.contains(parent) {
		return 0, fmt.Errorf("parent %d: %w", parent, ErrUnknownTask)
	}
	id := d.AddTask(t)
	d.children[parent] = append(d.children[parent], id)
	return id, nil
}

// AddChild makes an existing task run after the parent.
func (d *DAG) AddChild(parent, child TaskID) error {
	if !d.contains(parent) {
		return fmt.Errorf("parent %d: %w", parent, ErrUnknownTask)
	}
	if !d.contains(child) {
		return fmt.Errorf("child %d: %w", child, ErrUnknownTask)
	}
	if d.isDescendant(child, parent) {
		return fmt.Errorf("edge %d -> %d: %w", parent, child, ErrCycle)
	}
	d.children[parent] = append(d.children[parent], child)
	return nil
}

// Len returns number of tasks.
func (d *DAG) Len() int {
	return len(d.tasks)
}

// Runnable returns an executor of the DAG. Without workers the tasks run
// on the calling thread only. Workers must not be shared between
// executors that run concurrently. Later changes of the DAG don't affect
// the returned executor.
func (d *DAG) Runnable(workers ...*thread.Worker) Executor {
	if len(workers) == 0 {
		return newSingle(d)
	}
	return newMulti(d, workers)
}

func (d *DAG) contains(id TaskID) bool {
	return id >= 0 && int(id) < len(d.tasks)
}

func (d *DAG) isDescendant(parent, descendant TaskID) bool {
	if parent == descendant {
		return true
	}
	for _, child := range d.children[parent] {
		if d.isDescendant(child, descendant) {
			return true
		}
	}
	return false
}
