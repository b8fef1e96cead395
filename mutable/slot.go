package mutable

import (
	"sync/atomic"
)

const (
	// dirty marks that the middle buffer holds a value not pulled yet.
	dirty uint32 = 1 << 2
	// indexMask extracts buffer index from the middle state.
	indexMask uint32 = dirty - 1
)

// Slot is a lock-free single-producer single-consumer mailbox. Push
// overwrites any unread value, Pull takes the pending value if there is
// one. Both never block and never allocate. Exactly one goroutine may push
// and exactly one goroutine may pull.
//
// Zero value is an empty slot ready to use. Slot must not be copied after
// first use.
//
// Slot is a triple buffer: producer owns the back buffer, consumer owns the
// front buffer and the middle one is exchanged atomically. Indices are
// stored XOR-ed with their initial positions (back 0, middle 1, front 2)
// so that the zero value is a valid initial state.
type Slot[T any] struct {
	buffers [3]T

	_      [64]byte
	middle atomic.Uint32 // middle index ^ 1, with dirty flag
	_      [64]byte
	back   uint32 // back index ^ 0, owned by producer
	_      [64]byte
	front  uint32 // front index ^ 2, owned by consumer
}

// Push stores the value. Unread value is overwritten.
func (s *Slot[T]) Push(v T) {
	b := s.back
	s.buffers[b] = v
	prev := s.middle.Swap((b ^ 1) | dirty)
	s.back = (prev & indexMask) ^ 1
}

// Pull takes the pending value into out. It returns false and leaves out
// untouched if nothing was pushed since the last successful pull.
func (s *Slot[T]) Pull(out *T) bool {
	if s.middle.Load()&dirty == 0 {
		return false
	}
	f := s.front ^ 2
	prev := s.middle.Swap(f ^ 1)
	i := (prev & indexMask) ^ 1
	s.front = i ^ 2
	*out = s.buffers[i]
	return true
}

// Consume calls fn with the pending value if there is one.
func (s *Slot[T]) Consume(fn func(T)) {
	var v T
	if s.Pull(&v) {
		fn(v)
	}
}

// Pending reports whether a value waits to be pulled. It's safe to call
// from either side, but the answer may be stale by the time it returns.
func (s *Slot[T]) Pending() bool {
	return s.middle.Load()&dirty != 0
}
