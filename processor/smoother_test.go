package processor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/engine/enginetest"
	"pipelined.dev/engine/event"
	"pipelined.dev/engine/processor"
)

var lut = []float64{0.0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}

func TestSmoother(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		events   []event.Event[float64]
		expected []float64
	}{
		{
			name:     "no events",
			current:  0.27,
			expected: []float64{0.27, 0.27, 0.27, 0.27, 0.27, 0.27, 0.27, 0.27},
		},
		{
			name:     "up",
			current:  0.27,
			events:   []event.Event[float64]{event.New(0, 0.75)},
			expected: []float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.75, 0.75, 0.75},
		},
		{
			name:     "up to max",
			current:  0.57,
			events:   []event.Event[float64]{event.New(2, 1.0)},
			expected: []float64{0.57, 0.57, 0.6, 0.7, 0.8, 0.9, 1.0, 1.0},
		},
		{
			name:     "up from min",
			current:  0.0,
			events:   []event.Event[float64]{event.New(2, 1.0)},
			expected: []float64{0.0, 0.0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6},
		},
		{
			name:     "up inside entry",
			current:  0.31,
			events:   []event.Event[float64]{event.New(2, 0.37)},
			expected: []float64{0.31, 0.31, 0.37, 0.37, 0.37, 0.37, 0.37, 0.37},
		},
		{
			name:     "up consecutive",
			current:  0.31,
			events:   []event.Event[float64]{event.New(2, 0.57), event.New(3, 0.77)},
			expected: []float64{0.31, 0.31, 0.4, 0.5, 0.6, 0.7, 0.77, 0.77},
		},
		{
			name:     "up and up",
			current:  0.31,
			events:   []event.Event[float64]{event.New(0, 0.57), event.New(3, 0.77)},
			expected: []float64{0.4, 0.5, 0.57, 0.6, 0.7, 0.77, 0.77, 0.77},
		},
		{
			name:     "down",
			current:  0.77,
			events:   []event.Event[float64]{event.New(0, 0.27)},
			expected: []float64{0.7, 0.6, 0.5, 0.4, 0.3, 0.27, 0.27, 0.27},
		},
		{
			name:     "down to min",
			current:  0.47,
			events:   []event.Event[float64]{event.New(2, 0.0)},
			expected: []float64{0.47, 0.47, 0.4, 0.3, 0.2, 0.1, 0.0, 0.0},
		},
		{
			name:     "down from max",
			current:  1.0,
			events:   []event.Event[float64]{event.New(2, 0.0)},
			expected: []float64{1.0, 1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4},
		},
		{
			name:     "down inside entry",
			current:  1.0,
			events:   []event.Event[float64]{event.New(2, 0.97)},
			expected: []float64{1.0, 1.0, 0.97, 0.97, 0.97, 0.97, 0.97, 0.97},
		},
		{
			name:     "down consecutive",
			current:  0.71,
			events:   []event.Event[float64]{event.New(2, 0.57), event.New(3, 0.44)},
			expected: []float64{0.71, 0.71, 0.7, 0.6, 0.5, 0.44, 0.44, 0.44},
		},
		{
			name:     "down and down",
			current:  0.71,
			events:   []event.Event[float64]{event.New(0, 0.57), event.New(3, 0.23)},
			expected: []float64{0.7, 0.6, 0.57, 0.5, 0.4, 0.3, 0.23, 0.23},
		},
		{
			name:     "up and down",
			current:  0.27,
			events:   []event.Event[float64]{event.New(0, 0.75), event.New(4, 0.27)},
			expected: []float64{0.3, 0.4, 0.5, 0.6, 0.5, 0.4, 0.3, 0.27},
		},
		{
			name:     "down and up",
			current:  0.77,
			events:   []event.Event[float64]{event.New(0, 0.27), event.New(4, 0.75)},
			expected: []float64{0.7, 0.6, 0.5, 0.4, 0.5, 0.6, 0.7, 0.75},
		},
		{
			name:     "exact to exact",
			current:  0.5,
			events:   []event.Event[float64]{event.New(0, 0.3), event.New(4, 0.8)},
			expected: []float64{0.4, 0.3, 0.3, 0.3, 0.4, 0.5, 0.6, 0.7},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, err := processor.NewSmoother("smooth", lut, test.current)
			require.NoError(t, err)
			env := enginetest.New(s, 8)
			in := enginetest.EventInput[float64](env, 0)
			for _, e := range test.events {
				in.Insert(e.Offset, e.Value)
			}

			env.Process()
			assert.Equal(t, test.expected, env.Result(0))
		})
	}
}

func TestSmootherContinues(t *testing.T) {
	s, err := processor.NewSmoother("smooth", lut, 1.0)
	require.NoError(t, err)
	env := enginetest.New(s, 8)
	enginetest.EventInput[float64](env, 0).Insert(2, 0.0)

	env.Process()
	env.ClearEvents()
	env.Process()
	assert.Equal(t, []float64{0.3, 0.2, 0.1, 0.0, 0.0, 0.0, 0.0, 0.0}, env.Result(0))
	assert.Equal(t, 0.0, s.Value())
}

func TestSmootherErrors(t *testing.T) {
	_, err := processor.NewSmoother("smooth", []float64{0}, 0)
	assert.ErrorIs(t, err, processor.ErrLookupTable)
	_, err = processor.NewSmoother("smooth", []float64{1, 0}, 0)
	assert.ErrorIs(t, err, processor.ErrLookupTable)
	_, err = processor.NewSmoother("smooth", lut, 1.5)
	assert.ErrorIs(t, err, processor.ErrLookupTable)
}
