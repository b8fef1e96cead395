package engine

import (
	"time"

	"pipelined.dev/engine/event"
	"pipelined.dev/engine/internal/assert"
)

// Processor is a node of the processing graph.
type Processor interface {
	// TypeName identifies the kind of processor, e.g. "gain".
	TypeName() string
	// Name identifies the instance for diagnostics.
	Name() string
	NumInputs() int
	NumOutputs() int
	EventInputs() []event.Port
	EventOutputs() []event.Port
	// Process renders one block.
	Process(ctx *Context)
}

// Context is the per-call state of Process. It's owned by the executor and
// references inside are valid only for the duration of the call.
type Context struct {
	Inputs       [][]float64
	Outputs      [][]float64
	Results      [][]float64
	EventInputs  event.Inputs
	EventOutputs event.Outputs
	BufferSize   int
}

// Named implements Name method of Processor and can be embedded.
type Named string

// Name returns name of the processor.
func (n Named) Name() string {
	return string(n)
}

// NoEvents can be embedded by processors without event ports.
type NoEvents struct{}

// EventInputs returns no ports.
func (NoEvents) EventInputs() []event.Port {
	return nil
}

// EventOutputs returns no ports.
func (NoEvents) EventOutputs() []event.Port {
	return nil
}

// VerifyContext asserts that ctx matches the processor's declared ports.
// It's a no-op unless assertions are enabled.
func VerifyContext(p Processor, ctx *Context) {
	if !assert.Enabled {
		return
	}
	if len(ctx.Inputs) != p.NumInputs() {
		assert.Failf("%s: %d inputs, want %d", p.Name(), len(ctx.Inputs), p.NumInputs())
	}
	if len(ctx.Outputs) != p.NumOutputs() {
		assert.Failf("%s: %d outputs, want %d", p.Name(), len(ctx.Outputs), p.NumOutputs())
	}
	if len(ctx.Results) != p.NumOutputs() {
		assert.Failf("%s: %d results, want %d", p.Name(), len(ctx.Results), p.NumOutputs())
	}
	if ctx.EventInputs.Len() != len(p.EventInputs()) {
		assert.Failf("%s: %d event inputs, want %d", p.Name(), ctx.EventInputs.Len(), len(p.EventInputs()))
	}
	if ctx.EventOutputs.Len() != len(p.EventOutputs()) {
		assert.Failf("%s: %d event outputs, want %d", p.Name(), ctx.EventOutputs.Len(), len(p.EventOutputs()))
	}
	for i, port := range p.EventInputs() {
		if ctx.EventInputs.At(i).Type() != port.Type() {
			assert.Failf("%s: event input %v type mismatch", p.Name(), port)
		}
	}
	for i, port := range p.EventOutputs() {
		if ctx.EventOutputs.At(i).Type() != port.Type() {
			assert.Failf("%s: event output %v type mismatch", p.Name(), port)
		}
	}
	for _, out := range ctx.Outputs {
		assert.That(len(out) >= ctx.BufferSize, "output buffer shorter than block")
	}
}

// SampleRate is the number of frames per second.
type SampleRate uint

// DurationOf returns time duration of frames at the sample rate. Zero
// sample rate yields zero duration.
func (sr SampleRate) DurationOf(frames int) time.Duration {
	if sr == 0 {
		return 0
	}
	return time.Duration(int64(frames) * int64(time.Second) / int64(sr))
}

// FramesIn returns number of frames that fit into the duration.
func (sr SampleRate) FramesIn(d time.Duration) int {
	return int(int64(d) * int64(sr) / int64(time.Second))
}
