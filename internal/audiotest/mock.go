// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds synthetic audio for tests.
package audiotest

import (
	"io"
	"math"
)

// Waveform returns the value of channel at time step sample.
type Waveform func(sample int, channel int) float32

// Sine is a sine wave of frequency Hz at sampleRate, identical on every channel.
func Sine(sampleRate int, frequency float64) Waveform {
	return func(sample int, _ int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	}
}

// Constant is value on every channel.
func Constant(value float32) Waveform {
	return func(int, int) float32 { return value }
}

// Ramp rises by step per sample starting at start.
func Ramp(start, step float32) Waveform {
	return func(sample int, _ int) float32 { return start + step*float32(sample) }
}

// Planar renders frames time steps of w, starting at offset, into one slice
// per channel.
func Planar(w Waveform, channels, offset, frames int) [][]float32 {
	out := make([][]float32, channels)
	for c := range channels {
		out[c] = make([]float32, frames)
		for i := range frames {
			out[c][i] = w(offset+i, c)
		}
	}
	return out
}

// Mono renders frames time steps of channel 0 of w, starting at offset.
func Mono(w Waveform, offset, frames int) []float32 {
	return Planar(w, 1, offset, frames)[0]
}

// MockSource generates interleaved audio. It satisfies audio.Source without
// importing it.
type MockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // per channel
	generated    int // per channel
	waveform     Waveform

	// Closed reports whether Close was called.
	Closed bool
	// ReadErr, when set, is returned once the source is exhausted instead of io.EOF.
	ReadErr error
}

// NewMockSource creates a source of totalSamples time steps of waveform.
func NewMockSource(sampleRate, channels, totalSamples int, waveform Waveform) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, Constant(0))
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, Sine(sampleRate, frequency))
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, Constant(value))
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }

func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}

// Reset resets the generated sample counter to allow re-reading
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.totalSamples {
		if m.ReadErr != nil {
			return 0, m.ReadErr
		}
		return 0, io.EOF
	}

	framesToWrite := min(len(dst)/m.channels, m.totalSamples-m.generated)

	for frame := range framesToWrite {
		sampleIndex := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(sampleIndex, ch)
		}
	}

	m.generated += framesToWrite

	return framesToWrite * m.channels, nil
}
