package process_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pipelined.dev/engine/process"
	"pipelined.dev/engine/thread"
)

var (
	errBrokenPipe         = errors.New("broken pipe")
	errDeviceDisconnected = errors.New("device disconnected")
	timeout               = time.Second
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitFor(t *process.Thread, running bool) bool {
	deadline := time.Now().Add(timeout)
	for t.IsRunning() != running {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}

func idle() error {
	time.Sleep(100 * time.Microsecond)
	return nil
}

func TestStartIsRunning(t *testing.T) {
	sut := process.New()
	sut.Start(thread.Configuration{}, idle)
	assert.True(t, waitFor(sut, true))

	sut.Stop()
	sut.Wait()
}

func TestRunningOnceStarted(t *testing.T) {
	sut := process.New()
	release := make(chan struct{})
	sut.Start(thread.Configuration{}, func() error {
		<-release
		return errDeviceDisconnected
	})
	assert.True(t, sut.IsRunning())

	close(release)
	sut.Wait()
	assert.False(t, sut.IsRunning())
	assert.ErrorIs(t, sut.Err(), errDeviceDisconnected)
}

func TestStartStop(t *testing.T) {
	sut := process.New()
	sut.Start(thread.Configuration{}, idle)
	require.True(t, waitFor(sut, true))

	sut.Stop()
	assert.True(t, waitFor(sut, false))
	assert.NoError(t, sut.Err())
	sut.Wait()
}

func TestStopOnError(t *testing.T) {
	sut := process.New()
	assert.NoError(t, sut.Err())

	var generateError atomic.Bool
	sut.Start(thread.Configuration{}, func() error {
		if generateError.Load() {
			return errBrokenPipe
		}
		return idle()
	})
	require.True(t, waitFor(sut, true))

	generateError.Store(true)
	assert.True(t, waitFor(sut, false))
	assert.Equal(t, errBrokenPipe, sut.Err())
	sut.Wait()
}

func TestImmediateError(t *testing.T) {
	sut := process.New()
	var calls atomic.Int32
	sut.Start(thread.Configuration{}, func() error {
		calls.Add(1)
		return errDeviceDisconnected
	})
	sut.Wait()

	assert.False(t, sut.IsRunning())
	assert.True(t, errors.Is(sut.Err(), errDeviceDisconnected))
	assert.Equal(t, int32(1), calls.Load())
}

func TestConfigurationError(t *testing.T) {
	sut := process.New()
	var called atomic.Bool
	sut.Start(thread.Configuration{Affinity: thread.CPU(-1)}, func() error {
		called.Store(true)
		return nil
	})
	sut.Wait()

	assert.False(t, sut.IsRunning())
	assert.Error(t, sut.Err())
	assert.False(t, called.Load())
}

func TestRestart(t *testing.T) {
	sut := process.New()
	sut.Start(thread.Configuration{}, func() error {
		return errDeviceDisconnected
	})
	sut.Wait()
	require.Equal(t, errDeviceDisconnected, sut.Err())

	var blocks atomic.Int32
	sut.Start(thread.Configuration{}, func() error {
		blocks.Add(1)
		return idle()
	})
	require.True(t, waitFor(sut, true))
	sut.Stop()
	sut.Wait()

	assert.NoError(t, sut.Err())
	assert.Greater(t, blocks.Load(), int32(0))
}
