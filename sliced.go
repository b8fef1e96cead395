package engine

import (
	"pipelined.dev/engine/event"
	"pipelined.dev/engine/internal/assert"
)

// SlicedProcessor can render a run of samples with constant parameters
// and apply parameter events between such runs.
type SlicedProcessor[T any] interface {
	// ProcessBuffer renders the whole block with the current parameter.
	ProcessBuffer(ctx *Context)
	// ProcessEvent applies the event value as the current parameter.
	ProcessEvent(ctx *Context, e event.Event[T])
	// ProcessSlice renders length frames starting at offset with the
	// current parameter.
	ProcessSlice(ctx *Context, offset, length int)
}

// ProcessSliced renders the block of ctx by splitting it at offsets of
// events in the buffer:
//
//   - no events: ProcessBuffer once;
//   - a single event at offset 0: ProcessEvent, then ProcessBuffer;
//   - otherwise every span between event offsets is rendered with
//     ProcessSlice before the next event is applied, and the tail after
//     the last event is rendered at the end.
//
// Event offsets must be ordered and less than ctx.BufferSize.
func ProcessSliced[T any](ctx *Context, in *event.Buffer[T], p SlicedProcessor[T]) {
	events := in.Events()
	switch {
	case len(events) == 0:
		p.ProcessBuffer(ctx)
	case len(events) == 1 && events[0].Offset == 0:
		p.ProcessEvent(ctx, events[0])
		p.ProcessBuffer(ctx)
	default:
		offset := 0
		for _, e := range events {
			if assert.Enabled {
				if e.Offset >= ctx.BufferSize {
					assert.Failf("event offset %d out of block %d", e.Offset, ctx.BufferSize)
				}
				if e.Offset < offset {
					assert.Failf("event offset %d before %d", e.Offset, offset)
				}
			}
			if offset != e.Offset {
				p.ProcessSlice(ctx, offset, e.Offset-offset)
			}
			p.ProcessEvent(ctx, e)
			offset = e.Offset
		}
		p.ProcessSlice(ctx, offset, ctx.BufferSize-offset)
	}
}
