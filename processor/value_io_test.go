package processor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/engine/enginetest"
	"pipelined.dev/engine/event"
	"pipelined.dev/engine/processor"
)

func TestValueIO(t *testing.T) {
	t.Run("type name", func(t *testing.T) {
		assert.Equal(t, "float64_io", processor.NewValueIO[float64]("v").TypeName())
		assert.Equal(t, "bool_io", processor.NewValueIO[bool]("v").TypeName())
	})
	t.Run("set", func(t *testing.T) {
		p := processor.NewValueIO[float64]("v")
		env := enginetest.New(p, 8)
		out := enginetest.EventOutput[float64](env, 0)

		p.Set(0.5)
		p.Set(0.75)
		env.Process()
		assert.Equal(t, []event.Event[float64]{event.New(0, 0.75)}, out.Events())

		env.Process()
		assert.True(t, out.Empty(), "value is emitted once")

		var v float64
		assert.False(t, p.Get(&v), "set values are not published back")
	})
	t.Run("forward", func(t *testing.T) {
		p := processor.NewValueIO[int]("v")
		env := enginetest.New(p, 8)
		in := enginetest.EventInput[int](env, 0)
		out := enginetest.EventOutput[int](env, 0)
		in.Insert(1, 10)
		in.Insert(5, 20)

		p.Set(1)
		env.Process()
		assert.Equal(t, []event.Event[int]{
			event.New(0, 1),
			event.New(1, 10),
			event.New(5, 20),
		}, out.Events())

		var v int
		assert.True(t, p.Get(&v))
		assert.Equal(t, 20, v)
		assert.False(t, p.Get(&v))

		env.Process()
		var consumed []int
		p.Consume(func(v int) { consumed = append(consumed, v) })
		assert.Equal(t, []int{20}, consumed)
	})
	t.Run("allocs", func(t *testing.T) {
		p := processor.NewValueIO[float64]("v")
		env := enginetest.New(p, 8)
		enginetest.EventInput[float64](env, 0).Insert(3, 1)
		allocs := testing.AllocsPerRun(100, func() {
			p.Set(0.5)
			env.Process()
		})
		assert.Zero(t, allocs)
	})
}
