// Package wav is the offline file backend: it loads WAV files into memory
// and writes rendered blocks into WAV files.
package wav

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"pipelined.dev/engine"
)

const pcmFormat = 1

var (
	// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
	ErrUnsupportedBitDepth = errors.New("only 16, 24 and 32 bit depth is supported")
	// ErrInvalidFile is returned when file is not a valid wav.
	ErrInvalidFile = errors.New("wav is not valid")
	// ErrEndOfStream is returned by process functions when the source is
	// exhausted. It marks a successful end of rendering.
	ErrEndOfStream = errors.New("end of stream")
)

// Audio is a decoded file.
type Audio struct {
	Channels   [][]float64
	SampleRate engine.SampleRate
	BitDepth   int
}

// Length returns number of frames.
func (a Audio) Length() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

func validBitDepth(bitDepth int) bool {
	switch bitDepth {
	case 16, 24, 32:
		return true
	}
	return false
}

// Load decodes the whole file at path.
func Load(path string) (Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return Audio{}, err
	}
	defer f.Close()
	a, err := Decode(f)
	if err != nil {
		return Audio{}, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Decode decodes the whole stream into de-interleaved channels scaled to
// [-1, 1].
func Decode(r io.ReadSeeker) (Audio, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return Audio{}, ErrInvalidFile
	}
	bitDepth := int(decoder.BitDepth)
	if !validBitDepth(bitDepth) {
		return Audio{}, fmt.Errorf("%d: %w", bitDepth, ErrUnsupportedBitDepth)
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Audio{}, fmt.Errorf("decode: %w", err)
	}

	numChannels := int(decoder.NumChans)
	if numChannels == 0 {
		return Audio{}, ErrInvalidFile
	}
	frames := len(buf.Data) / numChannels
	channels := make([][]float64, numChannels)
	for c := range channels {
		channels[c] = make([]float64, frames)
	}
	scale := 1 / float64(int(1)<<(bitDepth-1))
	for i, v := range buf.Data[:frames*numChannels] {
		channels[i%numChannels][i/numChannels] = float64(v) * scale
	}
	return Audio{
		Channels:   channels,
		SampleRate: engine.SampleRate(decoder.SampleRate),
		BitDepth:   bitDepth,
	}, nil
}

// Writer encodes blocks of de-interleaved channels.
type Writer struct {
	dest        io.WriteSeeker
	encoder     *wav.Encoder
	buffer      *audio.IntBuffer
	numChannels int
	max         float64
	frames      int
}

// Create creates file at path and returns writer into it.
func Create(path string, sampleRate engine.SampleRate, numChannels, bitDepth int) (*Writer, error) {
	if !validBitDepth(bitDepth) {
		return nil, fmt.Errorf("%d: %w", bitDepth, ErrUnsupportedBitDepth)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return NewWriter(f, sampleRate, numChannels, bitDepth)
}

// NewWriter returns writer into w. If w is an io.Closer it's closed
// together with the writer.
func NewWriter(w io.WriteSeeker, sampleRate engine.SampleRate, numChannels, bitDepth int) (*Writer, error) {
	if !validBitDepth(bitDepth) {
		return nil, fmt.Errorf("%d: %w", bitDepth, ErrUnsupportedBitDepth)
	}
	return &Writer{
		dest:    w,
		encoder: wav.NewEncoder(w, int(sampleRate), bitDepth, numChannels, pcmFormat),
		buffer: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: numChannels,
				SampleRate:  int(sampleRate),
			},
			SourceBitDepth: bitDepth,
		},
		numChannels: numChannels,
		max:         float64(int(1)<<(bitDepth-1) - 1),
	}, nil
}

// Write encodes the block. Samples are clipped to [-1, 1].
func (w *Writer) Write(channels [][]float64) error {
	if len(channels) != w.numChannels {
		return fmt.Errorf("write %d channels into %d channel file", len(channels), w.numChannels)
	}
	if w.numChannels == 0 {
		return nil
	}
	frames := len(channels[0])
	size := frames * w.numChannels
	if cap(w.buffer.Data) < size {
		w.buffer.Data = make([]int, size)
	}
	w.buffer.Data = w.buffer.Data[:size]
	for c, samples := range channels {
		for i, v := range samples[:frames] {
			w.buffer.Data[i*w.numChannels+c] = int(min(max(v, -1), 1) * w.max)
		}
	}
	if err := w.encoder.Write(w.buffer); err != nil {
		return err
	}
	w.frames += frames
	return nil
}

// Frames returns number of frames written.
func (w *Writer) Frames() int {
	return w.frames
}

// Close finalizes the file header.
func (w *Writer) Close() error {
	if err := w.encoder.Close(); err != nil {
		return err
	}
	if c, ok := w.dest.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
