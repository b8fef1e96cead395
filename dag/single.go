package dag

import (
	"runtime"
	"time"

	"pipelined.dev/engine/internal/assert"
	"pipelined.dev/engine/thread"
)

// single executes all tasks on the calling thread.
type single struct {
	nodes []node
	queue []*node
	ctx   ThreadContext
}

func newSingle(d *DAG) *single {
	nodes := makeNodes(d)
	return &single{
		nodes: nodes,
		queue: make([]*node, 0, len(nodes)),
	}
}

// Execute returns CPU time of the calling thread spent on the block.
func (e *single) Execute(bufferSize int) time.Duration {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	start := thread.CPUTime()
	for i := range e.nodes {
		n := &e.nodes[i]
		n.reset()
		if n.numParents == 0 {
			e.queue = append(e.queue, n)
		}
	}

	e.ctx.BufferSize = bufferSize
	for len(e.queue) > 0 {
		n := e.queue[len(e.queue)-1]
		e.queue = e.queue[:len(e.queue)-1]
		if assert.Enabled {
			assert.That(n.pending.Load() == 0, "task executed before its parents")
		}
		n.task(&e.ctx)
		for _, child := range n.children {
			if child.pending.Add(-1) == 0 {
				e.queue = append(e.queue, child)
			}
		}
	}
	return thread.CPUTime() - start
}
