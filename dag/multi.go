package dag

import (
	"runtime"
	"sync/atomic"
	"time"

	"pipelined.dev/engine/internal/assert"
	"pipelined.dev/engine/thread"
)

const cacheLine = 64

// multi executes tasks on the calling thread and the workers. Ready tasks
// are shared through a lock-free stack.
type multi struct {
	running atomic.Int32 // workers that haven't finished the block
	_       [cacheLine - 4]byte
	// tasks not yet processed in current block
	remaining atomic.Int32
	_         [cacheLine - 4]byte

	bufferSize atomic.Int64
	jobs       stack
	nodes      []node
	roots      []*node
	main       participant
	workers    []participant
	threads    []*thread.Worker
	// prepared once, so waking workers doesn't allocate
	tasks []func()
}

// participant processes jobs on one thread and measures its CPU time.
type participant struct {
	e   *multi
	ctx ThreadContext
	cpu time.Duration
}

func newMulti(d *DAG, threads []*thread.Worker) *multi {
	e := &multi{
		nodes:   makeNodes(d),
		threads: threads,
	}
	for i := range e.nodes {
		if e.nodes[i].numParents == 0 {
			e.roots = append(e.roots, &e.nodes[i])
		}
	}
	e.main.e = e
	e.workers = make([]participant, len(threads))
	e.tasks = make([]func(), len(threads))
	for i := range e.workers {
		w := &e.workers[i]
		w.e = e
		e.tasks[i] = func() {
			w.run()
			e.running.Add(-1)
		}
	}
	return e
}

// Execute returns CPU time averaged over the calling thread and the
// workers.
func (e *multi) Execute(bufferSize int) time.Duration {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	e.bufferSize.Store(int64(bufferSize))
	for i := range e.nodes {
		e.nodes[i].reset()
	}
	for _, n := range e.roots {
		e.jobs.push(n)
	}
	e.remaining.Store(int32(len(e.nodes)))

	e.running.Store(int32(len(e.threads)))
	for i, w := range e.threads {
		w.Wakeup(e.tasks[i])
	}
	e.main.run()
	if assert.Enabled {
		assert.That(e.remaining.Load() == 0, "block finished with unprocessed tasks")
	}

	for e.running.Load() > 0 {
		runtime.Gosched()
	}

	total := e.main.cpu
	for i := range e.workers {
		total += e.workers[i].cpu
	}
	return total / time.Duration(1+len(e.workers))
}

func (p *participant) run() {
	start := thread.CPUTime()
	p.ctx.BufferSize = int(p.e.bufferSize.Load())
	for p.e.remaining.Load() > 0 {
		n := p.e.jobs.pop()
		if n == nil {
			runtime.Gosched()
			continue
		}
		for n != nil {
			n = p.process(n)
		}
	}
	p.cpu = thread.CPUTime() - start
}

// process executes the node and returns one of its children that became
// ready, if any. Other ready children are pushed to the job stack.
func (p *participant) process(n *node) *node {
	if assert.Enabled {
		assert.That(n.pending.Load() == 0, "task executed before its parents")
	}
	n.task(&p.ctx)

	var next *node
	for _, child := range n.children {
		if child.pending.Add(-1) == 0 {
			if next == nil {
				next = child
			} else {
				p.e.jobs.push(child)
			}
		}
	}
	p.e.remaining.Add(-1)
	return next
}
