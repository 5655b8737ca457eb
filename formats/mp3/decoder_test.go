// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// chunkedReader hands out at most size bytes per Read.
type chunkedReader struct {
	data []byte
	size int
	err  error
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := min(len(p), r.size, len(r.data))
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func pcmBytes(vals ...int16) []byte {
	out := make([]byte, 0, 2*len(vals))
	for _, v := range vals {
		out = append(out, byte(v), byte(uint16(v)>>8))
	}
	return out
}

func TestReadSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		chunk int
	}{
		{name: "whole", chunk: 1 << 10},
		{name: "odd byte splits", chunk: 3},
		{name: "single bytes", chunk: 1},
	}

	in := []int16{-32768, 16384, 0, -16384, 32767, 1}
	want := []float32{-1, 0.5, 0, -0.5, 32767.0 / 32768.0, 1.0 / 32768.0}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &source{dec: &chunkedReader{data: pcmBytes(in...), size: tt.chunk}, sampleRate: 44100}

			var got []float32
			buf := make([]float32, 4)
			for {
				n, err := src.ReadSamples(buf)
				got = append(got, buf[:n]...)
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					t.Fatalf("ReadSamples: %v", err)
				}
			}

			if len(got) != len(want) {
				t.Fatalf("got %v, want %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("sample %d: got %v, want %v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestReadSamplesError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	src := &source{dec: &chunkedReader{err: errBoom, size: 8}}

	_, err := src.ReadSamples(make([]float32, 4))
	if !errors.Is(err, errBoom) {
		t.Errorf("got %v, want %v", err, errBoom)
	}
}

func TestSourceShape(t *testing.T) {
	t.Parallel()

	src := &source{sampleRate: 48000}
	if src.Channels() != 2 || src.SampleRate() != 48000 {
		t.Errorf("got %d ch %d Hz", src.Channels(), src.SampleRate())
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestDecodeInvalid(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("not an mp3 stream"))); err == nil {
		t.Error("expected an error for garbage input")
	}
}
