// Package event provides sample-accurate events and block-scoped event
// buffers.
//
// An event carries a value and the frame offset inside the current block
// at which it takes effect. Events of one port within one block are kept
// in non-decreasing offset order. Buffers are cleared by the owning
// infrastructure at the start of every block and never carried over.
package event

import (
	"pipelined.dev/engine/internal/assert"
)

// Event is a value taking effect at Offset frames into a block. T should
// be a plain value type: buffers are reset without per-element cleanup.
type Event[T any] struct {
	Offset int
	Value  T
}

// New returns new event.
func New[T any](offset int, value T) Event[T] {
	return Event[T]{Offset: offset, Value: value}
}

// Buffer is an ordered collection of events of one port for one block.
// Writers insert in non-decreasing offset order, readers iterate forward
// and never mutate it.
type Buffer[T any] struct {
	events []Event[T]
}

// NewBuffer returns buffer with preallocated capacity. Buffers grow if
// more events are inserted, but keep the capacity after Clear, so the
// steady state doesn't allocate.
func NewBuffer[T any](capacity int) *Buffer[T] {
	return &Buffer[T]{events: make([]Event[T], 0, capacity)}
}

// Insert appends new event. Offset must not be less than the offset of
// the last inserted event.
func (b *Buffer[T]) Insert(offset int, value T) {
	if assert.Enabled {
		if offset < 0 {
			assert.Failf("negative event offset %d", offset)
		}
		if last := b.lastOffset(); offset < last {
			assert.Failf("event offset %d inserted after %d", offset, last)
		}
	}
	b.events = append(b.events, Event[T]{Offset: offset, Value: value})
}

func (b *Buffer[T]) lastOffset() int {
	if len(b.events) == 0 {
		return 0
	}
	return b.events[len(b.events)-1].Offset
}

// Events returns events in insertion order. The slice is valid until the
// buffer is cleared and must not be modified.
func (b *Buffer[T]) Events() []Event[T] {
	if b == nil {
		return nil
	}
	return b.events
}

// Len returns number of events.
func (b *Buffer[T]) Len() int {
	if b == nil {
		return 0
	}
	return len(b.events)
}

// Empty returns true if buffer has no events.
func (b *Buffer[T]) Empty() bool {
	return b.Len() == 0
}

// Front returns the first event. Buffer must not be empty.
func (b *Buffer[T]) Front() Event[T] {
	return b.events[0]
}

// Clear drops all events and keeps the capacity.
func (b *Buffer[T]) Clear() {
	b.events = b.events[:0]
}

// Verify checks that events are ordered and fit into a block of
// bufferSize frames.
func (b *Buffer[T]) Verify(bufferSize int) bool {
	prev := 0
	for _, e := range b.Events() {
		if e.Offset < prev || e.Offset >= bufferSize {
			return false
		}
		prev = e.Offset
	}
	return true
}
