package event

import (
	"fmt"
	"reflect"
)

type (
	// Port describes a typed event port of a processor.
	Port struct {
		name      string
		typ       reflect.Type
		newBuffer func(capacity int) AnyBuffer
	}

	// AnyBuffer is a Buffer with erased element type. The graph keeps
	// buffers in this form and processors recover the concrete type with
	// Input and Output.
	AnyBuffer interface {
		Clear()
		Len() int
		Type() reflect.Type
	}
)

// PortOf returns event port of type T.
func PortOf[T any](name string) Port {
	return Port{
		name: name,
		typ:  reflect.TypeFor[T](),
		newBuffer: func(capacity int) AnyBuffer {
			return NewBuffer[T](capacity)
		},
	}
}

// Name returns port name.
func (p Port) Name() string {
	return p.name
}

// Type returns element type of the port.
func (p Port) Type() reflect.Type {
	return p.typ
}

// NewBuffer allocates new buffer of the port element type.
func (p Port) NewBuffer(capacity int) AnyBuffer {
	return p.newBuffer(capacity)
}

// String returns port name and type.
func (p Port) String() string {
	return fmt.Sprintf("%s(%v)", p.name, p.typ)
}

// Type returns element type of the buffer.
func (b *Buffer[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

type (
	// Inputs are event input buffers of a processor indexed by port.
	Inputs struct {
		buffers []AnyBuffer
	}

	// Outputs are event output buffers of a processor indexed by port.
	Outputs struct {
		buffers []AnyBuffer
	}
)

// NewInputs creates input buffers for the ports. Until Set is called every
// port is bound to its own empty buffer.
func NewInputs(ports []Port) Inputs {
	in := Inputs{buffers: make([]AnyBuffer, len(ports))}
	for i := range ports {
		in.buffers[i] = ports[i].NewBuffer(0)
	}
	return in
}

// Set binds input port to the buffer.
func (in Inputs) Set(port int, b AnyBuffer) {
	in.buffers[port] = b
}

// Len returns number of ports.
func (in Inputs) Len() int {
	return len(in.buffers)
}

// At returns type-erased buffer of the port.
func (in Inputs) At(port int) AnyBuffer {
	return in.buffers[port]
}

// NewOutputs allocates output buffers for the ports.
func NewOutputs(ports []Port, capacity int) Outputs {
	out := Outputs{buffers: make([]AnyBuffer, len(ports))}
	for i := range ports {
		out.buffers[i] = ports[i].NewBuffer(capacity)
	}
	return out
}

// Len returns number of ports.
func (out Outputs) Len() int {
	return len(out.buffers)
}

// At returns type-erased buffer of the port.
func (out Outputs) At(port int) AnyBuffer {
	return out.buffers[port]
}

// Clear resets all output buffers.
func (out Outputs) Clear() {
	for _, b := range out.buffers {
		b.Clear()
	}
}

// Input returns input buffer of the port. It panics if the port element
// type is not T.
func Input[T any](in Inputs, port int) *Buffer[T] {
	return in.buffers[port].(*Buffer[T])
}

// Output returns output buffer of the port. It panics if the port element
// type is not T.
func Output[T any](out Outputs, port int) *Buffer[T] {
	return out.buffers[port].(*Buffer[T])
}
