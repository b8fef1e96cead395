package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pipelined.dev/engine/log"
	"pipelined.dev/engine/thread"
	"pipelined.dev/engine/wav"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const sampleRate = 1000

// writeInput writes stereo file of n frames with constant samples.
func writeInput(t *testing.T, n int, value float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	w, err := wav.Create(path, sampleRate, 2, 16)
	require.NoError(t, err)
	left, right := make([]float64, n), make([]float64, n)
	for i := range left {
		left[i], right[i] = value, -value
	}
	require.NoError(t, w.Write([][]float64{left, right}))
	require.NoError(t, w.Close())
	return path
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
period: 128
workers: 2
bit_depth: 24
gain: 0.8
level_window: 300ms
thread:
  name: audio
  affinity: 1
  priority: 70
automation:
  - at: 2s
    gain: 0.1
  - at: 500ms
    gain: 0.5
`), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.validate())
	assert.Equal(t, 128, cfg.Period)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 24, cfg.BitDepth)
	assert.Equal(t, 0.8, cfg.Gain)
	assert.Equal(t, 300*time.Millisecond, cfg.LevelWindow)
	assert.Equal(t, 100*time.Millisecond, cfg.MetricsInterval, "defaults are kept")
	assert.Equal(t, thread.Configuration{Name: "audio", Affinity: thread.CPU(1), Priority: thread.Priority(70)}, cfg.Thread)
	assert.Equal(t, "engine-worker", cfg.WorkerThread.Name)
	assert.Equal(t, []point{{At: 500 * time.Millisecond, Gain: 0.5}, {At: 2 * time.Second, Gain: 0.1}}, cfg.Automation)

	cfg, err = loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	cfg = defaultConfig()
	cfg.Period = 0
	assert.ErrorIs(t, cfg.validate(), errConfig)
}

func TestRender(t *testing.T) {
	const frames = 1000
	in := writeInput(t, frames, 0.5)
	for _, workers := range []int{0, 2} {
		cfg := defaultConfig()
		cfg.Period = 64
		cfg.Workers = workers
		cfg.Thread = thread.Configuration{}
		cfg.WorkerThread = thread.Configuration{}
		cfg.Automation = []point{{At: 100 * time.Millisecond, Gain: 0.5}}
		out := filepath.Join(t.TempDir(), "out.wav")

		s, err := render(context.Background(), cfg, in, out, log.Silent())
		require.NoError(t, err)
		assert.Equal(t, frames, s.Frames)

		result, err := wav.Load(out)
		require.NoError(t, err)
		require.Len(t, result.Channels, 2)
		require.Equal(t, frames, result.Length())
		// automation at frame 100 is applied at the start of the block at 128
		for i, v := range result.Channels[0] {
			expected := 0.5
			if i >= 128 {
				expected = 0.25
			}
			require.InDelta(t, expected, v, 1e-3, "frame %d", i)
			require.InDelta(t, -expected, result.Channels[1][i], 1e-3, "frame %d", i)
		}
	}
}

func TestRenderCanceled(t *testing.T) {
	in := writeInput(t, 1000, 0.5)
	cfg := defaultConfig()
	cfg.Thread = thread.Configuration{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := render(ctx, cfg, in, filepath.Join(t.TempDir(), "out.wav"), log.Silent())
	require.NoError(t, err)
	assert.LessOrEqual(t, s.Frames, 1000)
}

func TestRenderErrors(t *testing.T) {
	cfg := defaultConfig()
	_, err := render(context.Background(), cfg, filepath.Join(t.TempDir(), "missing.wav"), filepath.Join(t.TempDir(), "out.wav"), log.Silent())
	assert.Error(t, err)

	cfg.BitDepth = 8
	_, err = render(context.Background(), cfg, writeInput(t, 10, 0), filepath.Join(t.TempDir(), "out.wav"), log.Silent())
	assert.ErrorIs(t, err, wav.ErrUnsupportedBitDepth)
}

func TestCommands(t *testing.T) {
	in := writeInput(t, 300, 0.5)
	out := filepath.Join(t.TempDir(), "out.wav")

	root := newRootCommand()
	root.SetArgs([]string{"render", "--in", in, "--out", out, "--period", "32"})
	require.NoError(t, root.Execute())

	var buf bytes.Buffer
	root = newRootCommand()
	root.SetOut(&buf)
	root.SetArgs([]string{"info", out})
	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "cpus:")
	assert.Contains(t, buf.String(), "2 channels, 1000 Hz, 16 bit, 300ms")
}
