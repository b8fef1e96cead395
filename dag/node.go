package dag

import "sync/atomic"

type node struct {
	pending    atomic.Int32 // parents left to process in current block
	numParents int32
	task       Task
	children   []*node
	next       atomic.Pointer[node] // link in job stack
}

// reset prepares node for the next block.
func (n *node) reset() {
	n.pending.Store(n.numParents)
}

func makeNodes(d *DAG) []node {
	nodes := make([]node, len(d.tasks))
	for id, t := range d.tasks {
		nodes[id].task = t
	}
	for parent, children := range d.children {
		nodes[parent].children = make([]*node, 0, len(children))
		for _, child := range children {
			nodes[parent].children = append(nodes[parent].children, &nodes[child])
			nodes[child].numParents++
		}
	}
	return nodes
}

// stack is a lock-free LIFO of nodes. A node is pushed at most once per
// block, so popped nodes are never reused while a pop is in flight.
type stack struct {
	head atomic.Pointer[node]
}

func (s *stack) push(n *node) {
	for {
		head := s.head.Load()
		n.next.Store(head)
		if s.head.CompareAndSwap(head, n) {
			return
		}
	}
}

func (s *stack) pop() *node {
	for {
		head := s.head.Load()
		if head == nil {
			return nil
		}
		if s.head.CompareAndSwap(head, head.next.Load()) {
			return head
		}
	}
}
