package processor

import (
	"math"
	"time"

	"github.com/cwbudde/algo-vecmath"

	"pipelined.dev/engine"
	"pipelined.dev/engine/mutable"
)

const (
	// DefaultLevelWindow is the default RMS measuring time.
	DefaultLevelWindow = 800 * time.Millisecond
	// DefaultMinLevel is the level below which the meter shows zero, -60 dB.
	DefaultMinLevel = 0.001
)

// LevelMeter measures RMS level of its input over a sliding window and
// publishes it after every block.
type LevelMeter struct {
	engine.Named
	engine.NoEvents
	minLevel float64
	squares  []float64 // ring of squared samples
	position int
	sum      float64
	level    mutable.Slot[float64]
}

// NewLevelMeter returns level meter with a window at the sample rate.
// Levels below minLevel are reported as zero.
func NewLevelMeter(name string, sampleRate engine.SampleRate, window time.Duration, minLevel float64) *LevelMeter {
	return &LevelMeter{
		Named:    engine.Named(name),
		minLevel: minLevel,
		squares:  make([]float64, max(1, sampleRate.FramesIn(window))),
	}
}

func (*LevelMeter) TypeName() string {
	return "level_meter"
}

func (*LevelMeter) NumInputs() int {
	return 1
}

func (*LevelMeter) NumOutputs() int {
	return 0
}

// Levels returns slot the level is published to. It has a single
// consumer.
func (m *LevelMeter) Levels() *mutable.Slot[float64] {
	return &m.level
}

// WindowSize returns number of frames in the window.
func (m *LevelMeter) WindowSize() int {
	return len(m.squares)
}

func (m *LevelMeter) Process(ctx *engine.Context) {
	m.measure(ctx.Inputs[0][:ctx.BufferSize])
	m.level.Push(m.Level())
}

// Level returns the current level. It must be called from the thread
// that processes the block.
func (m *LevelMeter) Level() float64 {
	rms := math.Sqrt(max(m.sum, 0) / float64(len(m.squares)))
	if rms < m.minLevel {
		return 0
	}
	return rms
}

// Reset clears the window.
func (m *LevelMeter) Reset() {
	clear(m.squares)
	m.sum = 0
	m.position = 0
}

func (m *LevelMeter) measure(in []float64) {
	n := len(m.squares)
	if len(in) >= n {
		in = in[len(in)-n:]
		vecmath.MulBlock(m.squares, in, in)
		m.sum = sum(m.squares)
		m.position = 0
		return
	}
	for len(in) > 0 {
		k := min(len(in), n-m.position)
		part := m.squares[m.position : m.position+k]
		old := sum(part)
		vecmath.MulBlock(part, in[:k], in[:k])
		m.sum += sum(part) - old
		m.position = (m.position + k) % n
		in = in[k:]
	}
}

func sum(s []float64) float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}
