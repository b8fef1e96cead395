// Package enginetest provides an environment to run a processor in
// isolation.
package enginetest

import (
	"pipelined.dev/engine"
	"pipelined.dev/engine/event"
)

// EventCapacity is the number of preallocated events per event buffer.
const EventCapacity = 64

// Env owns buffers bound to a processor's declared ports.
type Env struct {
	Context   engine.Context
	processor engine.Processor
	inputs    [][]float64
	outputs   [][]float64
}

// New allocates buffers for all ports of the processor. Audio inputs are
// silent until filled through Input.
func New(p engine.Processor, bufferSize int) *Env {
	e := &Env{
		processor: p,
		inputs:    buffers(p.NumInputs(), bufferSize),
		outputs:   buffers(p.NumOutputs(), bufferSize),
	}
	e.Context = engine.Context{
		Inputs:       make([][]float64, p.NumInputs()),
		Outputs:      make([][]float64, p.NumOutputs()),
		Results:      make([][]float64, p.NumOutputs()),
		EventInputs:  event.NewInputs(p.EventInputs()),
		EventOutputs: event.NewOutputs(p.EventOutputs(), EventCapacity),
		BufferSize:   bufferSize,
	}
	for i, port := range p.EventInputs() {
		e.Context.EventInputs.Set(i, port.NewBuffer(EventCapacity))
	}
	return e
}

func buffers(n, size int) [][]float64 {
	b := make([][]float64, n)
	for i := range b {
		b[i] = make([]float64, size)
	}
	return b
}

// Input returns writable buffer of the audio input.
func (e *Env) Input(port int) []float64 {
	return e.inputs[port]
}

// Result returns audio result of the output port.
func (e *Env) Result(port int) []float64 {
	return e.Context.Results[port]
}

// Process binds the buffers, clears event outputs and processes one block
// of Context.BufferSize frames. Event inputs are left intact.
func (e *Env) Process() {
	ctx := &e.Context
	bs := ctx.BufferSize
	for i := range ctx.Inputs {
		ctx.Inputs[i] = e.inputs[i][:bs]
	}
	for i := range ctx.Outputs {
		ctx.Outputs[i] = e.outputs[i][:bs]
		ctx.Results[i] = ctx.Outputs[i]
	}
	ctx.EventOutputs.Clear()
	engine.VerifyContext(e.processor, ctx)
	e.processor.Process(ctx)
}

// ClearEvents clears all event inputs.
func (e *Env) ClearEvents() {
	for i := 0; i < e.Context.EventInputs.Len(); i++ {
		e.Context.EventInputs.At(i).Clear()
	}
}

// EventInput returns event input buffer of the port.
func EventInput[T any](e *Env, port int) *event.Buffer[T] {
	return event.Input[T](e.Context.EventInputs, port)
}

// EventOutput returns event output buffer of the port.
func EventOutput[T any](e *Env, port int) *event.Buffer[T] {
	return event.Output[T](e.Context.EventOutputs, port)
}
