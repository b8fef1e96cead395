package wav_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/engine/wav"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		bitDepth int
		delta    float64
	}{
		{bitDepth: 16, delta: 1.0 / (1 << 14)},
		{bitDepth: 24, delta: 1.0 / (1 << 22)},
		{bitDepth: 32, delta: 1.0 / (1 << 30)},
	}
	left := []float64{0, 0.25, 0.5, -0.5, 0.99, -0.99, 2, -2}
	right := []float64{0.1, -0.1, 0.2, -0.2, 0.3, -0.3, 0.4, -0.4}
	clipped := []float64{0, 0.25, 0.5, -0.5, 0.99, -0.99, 1, -1}
	for _, test := range tests {
		path := filepath.Join(t.TempDir(), "out.wav")
		w, err := wav.Create(path, 44100, 2, test.bitDepth)
		require.NoError(t, err)
		require.NoError(t, w.Write([][]float64{left[:3], right[:3]}))
		require.NoError(t, w.Write([][]float64{left[3:], right[3:]}))
		assert.Equal(t, 8, w.Frames())
		require.NoError(t, w.Close())

		a, err := wav.Load(path)
		require.NoError(t, err)
		assert.Equal(t, 8, a.Length())
		assert.EqualValues(t, 44100, a.SampleRate)
		assert.Equal(t, test.bitDepth, a.BitDepth)
		require.Len(t, a.Channels, 2)
		assert.InDeltaSlice(t, clipped, a.Channels[0], test.delta, "bit depth %d", test.bitDepth)
		assert.InDeltaSlice(t, right, a.Channels[1], test.delta, "bit depth %d", test.bitDepth)
	}
}

func TestErrors(t *testing.T) {
	_, err := wav.Create(filepath.Join(t.TempDir(), "out.wav"), 44100, 1, 12)
	assert.ErrorIs(t, err, wav.ErrUnsupportedBitDepth)

	_, err = wav.Decode(bytes.NewReader([]byte("not a wav file at all")))
	assert.ErrorIs(t, err, wav.ErrInvalidFile)

	_, err = wav.Load(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)

	w, err := wav.Create(filepath.Join(t.TempDir(), "out.wav"), 44100, 2, 16)
	require.NoError(t, err)
	assert.Error(t, w.Write([][]float64{{1}}))
	assert.NoError(t, w.Close())
}
