package processor

import (
	"github.com/cwbudde/algo-vecmath"

	"pipelined.dev/engine"
)

// Mix sums its inputs.
type Mix struct {
	engine.Named
	engine.NoEvents
	inputs int
}

// NewMix returns mixer of n inputs.
func NewMix(name string, n int) *Mix {
	return &Mix{
		Named:  engine.Named(name),
		inputs: n,
	}
}

func (*Mix) TypeName() string {
	return "mix"
}

func (m *Mix) NumInputs() int {
	return m.inputs
}

func (*Mix) NumOutputs() int {
	return 1
}

func (m *Mix) Process(ctx *engine.Context) {
	switch len(ctx.Inputs) {
	case 0:
		clear(ctx.Outputs[0])
	case 1:
		ctx.Results[0] = ctx.Inputs[0]
	default:
		out := ctx.Outputs[0]
		copy(out, ctx.Inputs[0])
		for _, in := range ctx.Inputs[1:] {
			vecmath.AddBlockInPlace(out, in)
		}
	}
}
