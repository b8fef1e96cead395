package processor

import (
	"pipelined.dev/engine"
)

// Player plays preloaded audio, one output per channel. Outputs are
// silent after the end.
type Player struct {
	engine.Named
	engine.NoEvents
	channels [][]float64
	length   int
	position int
}

// NewPlayer returns player of the channels. All channels must have the
// same length.
func NewPlayer(name string, channels [][]float64) *Player {
	length := 0
	if len(channels) > 0 {
		length = len(channels[0])
	}
	return &Player{
		Named:    engine.Named(name),
		channels: channels,
		length:   length,
	}
}

func (*Player) TypeName() string {
	return "player"
}

func (*Player) NumInputs() int {
	return 0
}

func (p *Player) NumOutputs() int {
	return len(p.channels)
}

// Remaining returns number of frames left to play. It must be called
// from the thread that processes the block or after the block is done.
func (p *Player) Remaining() int {
	return p.length - p.position
}

// Rewind starts playback from the beginning.
func (p *Player) Rewind() {
	p.position = 0
}

func (p *Player) Process(ctx *engine.Context) {
	n := min(ctx.BufferSize, p.Remaining())
	for i, out := range ctx.Outputs {
		copy(out, p.channels[i][p.position:p.position+n])
		clear(out[n:ctx.BufferSize])
	}
	p.position += n
}
