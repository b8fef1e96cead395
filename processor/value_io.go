package processor

import (
	"fmt"
	"reflect"

	"pipelined.dev/engine"
	"pipelined.dev/engine/event"
	"pipelined.dev/engine/mutable"
)

// ValueIO bridges values between non-real-time code and the graph.
//
// A value passed to Set is emitted as an event at offset 0 of the next
// block. Every event received on the input is forwarded to the output
// and its value is published for Get and Consume.
type ValueIO[T any] struct {
	engine.Named
	typeName     string
	eventInputs  []event.Port
	eventOutputs []event.Port
	in           mutable.Slot[T]
	out          mutable.Slot[T]
}

// NewValueIO returns value bridge of type T.
func NewValueIO[T any](name string) *ValueIO[T] {
	return &ValueIO[T]{
		Named:        engine.Named(name),
		typeName:     fmt.Sprintf("%v_io", reflect.TypeFor[T]()),
		eventInputs:  []event.Port{event.PortOf[T]("ext_in")},
		eventOutputs: []event.Port{event.PortOf[T]("out")},
	}
}

func (p *ValueIO[T]) TypeName() string {
	return p.typeName
}

func (*ValueIO[T]) NumInputs() int {
	return 0
}

func (*ValueIO[T]) NumOutputs() int {
	return 0
}

func (p *ValueIO[T]) EventInputs() []event.Port {
	return p.eventInputs
}

func (p *ValueIO[T]) EventOutputs() []event.Port {
	return p.eventOutputs
}

// Set sends value into the graph. Only the latest value set between two
// blocks is emitted.
func (p *ValueIO[T]) Set(v T) {
	p.in.Push(v)
}

// Get stores the latest value received from the graph in v. It returns
// false if there was no new value since the previous call.
func (p *ValueIO[T]) Get(v *T) bool {
	return p.out.Pull(v)
}

// Consume calls fn with the latest value received from the graph, if any.
func (p *ValueIO[T]) Consume(fn func(T)) {
	p.out.Consume(fn)
}

func (p *ValueIO[T]) Process(ctx *engine.Context) {
	out := event.Output[T](ctx.EventOutputs, 0)
	var v T
	if p.in.Pull(&v) {
		out.Insert(0, v)
	}
	for _, e := range event.Input[T](ctx.EventInputs, 0).Events() {
		p.out.Push(e.Value)
		out.Insert(e.Offset, e.Value)
	}
}
