package assert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	engineassert "pipelined.dev/engine/internal/assert"
)

func TestThat(t *testing.T) {
	assert.NotPanics(t, func() { engineassert.That(true, "ok") })
	if !engineassert.Enabled {
		assert.NotPanics(t, func() { engineassert.That(false, "ignored") })
		assert.NotPanics(t, func() { engineassert.Failf("ignored %d", 1) })
		return
	}
	assert.PanicsWithValue(t, "assertion failed: broken", func() {
		engineassert.That(false, "broken")
	})
	assert.PanicsWithValue(t, "assertion failed: offset 3", func() {
		engineassert.Failf("offset %d", 3)
	})
}
