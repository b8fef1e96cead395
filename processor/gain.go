package processor

import (
	"github.com/cwbudde/algo-vecmath"

	"pipelined.dev/engine"
	"pipelined.dev/engine/event"
)

var gainEventInputs = []event.Port{event.PortOf[float64]("gain")}

// Gain multiplies audio by a gain factor. The factor changes with events
// on its input at exact frame offsets.
type Gain struct {
	engine.Named
	gain float64
}

// NewGain returns gain processor with initial factor.
func NewGain(name string, gain float64) *Gain {
	return &Gain{
		Named: engine.Named(name),
		gain:  gain,
	}
}

func (*Gain) TypeName() string {
	return "gain"
}

func (*Gain) NumInputs() int {
	return 1
}

func (*Gain) NumOutputs() int {
	return 1
}

func (*Gain) EventInputs() []event.Port {
	return gainEventInputs
}

func (*Gain) EventOutputs() []event.Port {
	return nil
}

// Gain returns current gain factor. It must be called from the thread
// that processes the block.
func (g *Gain) Gain() float64 {
	return g.gain
}

func (g *Gain) Process(ctx *engine.Context) {
	engine.ProcessSliced(ctx, event.Input[float64](ctx.EventInputs, 0), g)
}

// ProcessBuffer forwards input as result if gain is unity.
func (g *Gain) ProcessBuffer(ctx *engine.Context) {
	if g.gain == 1 {
		ctx.Results[0] = ctx.Inputs[0]
		return
	}
	g.ProcessSlice(ctx, 0, ctx.BufferSize)
}

func (g *Gain) ProcessEvent(_ *engine.Context, e event.Event[float64]) {
	g.gain = e.Value
}

func (g *Gain) ProcessSlice(ctx *engine.Context, offset, length int) {
	end := offset + length
	vecmath.ScaleBlock(ctx.Outputs[0][offset:end], ctx.Inputs[0][offset:end], g.gain)
}
