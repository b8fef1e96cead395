package processor

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"pipelined.dev/engine"
	"pipelined.dev/engine/event"
	"pipelined.dev/engine/internal/assert"
)

// ErrLookupTable is returned when smoother lookup table is invalid.
var ErrLookupTable = errors.New("invalid lookup table")

var smootherEventInputs = []event.Port{event.PortOf[float64]("ev")}

// Smoother turns parameter jumps into ramps. On a new target it steps
// through the lookup table entries between the current value and the
// target, one entry per frame.
type Smoother struct {
	engine.Named
	lut          []float64
	current      float64
	target       float64
	currentIndex int
	targetIndex  int
}

// NewSmoother returns smoother starting at the current value. The lookup
// table must be sorted, have at least two entries and contain current
// within its bounds.
func NewSmoother(name string, lut []float64, current float64) (*Smoother, error) {
	if len(lut) < 2 || !slices.IsSorted(lut) {
		return nil, fmt.Errorf("%s: %w", name, ErrLookupTable)
	}
	if current < lut[0] || current > lut[len(lut)-1] {
		return nil, fmt.Errorf("%s: %v out of [%v, %v]: %w", name, current, lut[0], lut[len(lut)-1], ErrLookupTable)
	}
	return &Smoother{
		Named:   engine.Named(name),
		lut:     lut,
		current: current,
		target:  current,
	}, nil
}

func (*Smoother) TypeName() string {
	return "smooth"
}

func (*Smoother) NumInputs() int {
	return 0
}

func (*Smoother) NumOutputs() int {
	return 1
}

func (*Smoother) EventInputs() []event.Port {
	return smootherEventInputs
}

func (*Smoother) EventOutputs() []event.Port {
	return nil
}

// Value returns the last rendered value.
func (s *Smoother) Value() float64 {
	return s.current
}

func (s *Smoother) Process(ctx *engine.Context) {
	engine.ProcessSliced(ctx, event.Input[float64](ctx.EventInputs, 0), s)
}

func (s *Smoother) ProcessBuffer(ctx *engine.Context) {
	s.ProcessSlice(ctx, 0, ctx.BufferSize)
}

func (s *Smoother) ProcessSlice(ctx *engine.Context, offset, length int) {
	if length == 0 {
		return
	}
	out := ctx.Outputs[0][offset : offset+length]
	if s.running() {
		s.generate(out)
		return
	}
	fill(out, s.current)
}

func (s *Smoother) ProcessEvent(_ *engine.Context, e event.Event[float64]) {
	if assert.Enabled && (e.Value < s.lut[0] || e.Value > s.lut[len(s.lut)-1]) {
		assert.Failf("%s: target %v out of table", s.Name(), e.Value)
	}
	s.target = e.Value
	switch {
	case s.current < s.target:
		s.currentIndex = s.above(s.current)
		s.targetIndex = s.above(s.target)
	case s.target < s.current:
		s.currentIndex = s.below(s.current)
		s.targetIndex = s.below(s.target)
	}
}

func (s *Smoother) running() bool {
	return s.current != s.target
}

// above returns index of the first entry greater than v.
func (s *Smoother) above(v float64) int {
	return sort.Search(len(s.lut), func(i int) bool { return s.lut[i] > v })
}

// below returns number of entries less than v.
func (s *Smoother) below(v float64) int {
	return sort.Search(len(s.lut), func(i int) bool { return s.lut[i] >= v })
}

func (s *Smoother) generate(out []float64) {
	n := 0
	switch {
	case s.currentIndex < s.targetIndex:
		n = min(len(out), s.targetIndex-s.currentIndex)
		copy(out, s.lut[s.currentIndex:s.currentIndex+n])
		s.currentIndex += n
	case s.targetIndex < s.currentIndex:
		n = min(len(out), s.currentIndex-s.targetIndex)
		for i := 0; i < n; i++ {
			out[i] = s.lut[s.currentIndex-1-i]
		}
		s.currentIndex -= n
	}

	if s.currentIndex == s.targetIndex {
		s.current = s.target
		fill(out[n:], s.current)
		return
	}
	s.current = out[len(out)-1]
}

func fill(out []float64, v float64) {
	for i := range out {
		out[i] = v
	}
}
