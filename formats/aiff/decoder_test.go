// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
)

type fakePCM struct {
	data []int
	err  error
}

func (f *fakePCM) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := copy(buf.Data, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestReadSamples(t *testing.T) {
	t.Parallel()

	src := &source{
		dec:      &fakePCM{data: []int{-32768, 16384, 0, -8192}},
		channels: 2,
		scale:    32768,
		intBuf:   &goaudio.IntBuffer{},
	}

	buf := make([]float32, 3)
	n, err := src.ReadSamples(buf)
	if err != nil || n != 3 {
		t.Fatalf("got (%d, %v), want (3, nil)", n, err)
	}
	want := []float32{-1, 0.5, 0}
	for i := range want {
		if buf[i] != want[i] {
			t.Errorf("sample %d: got %v, want %v", i, buf[i], want[i])
		}
	}

	n, err = src.ReadSamples(buf)
	if err != nil || n != 1 || buf[0] != -0.25 {
		t.Errorf("got (%d, %v) first %v, want (1, nil) -0.25", n, err, buf[0])
	}

	if n, err := src.ReadSamples(buf); n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("got (%d, %v), want (0, EOF)", n, err)
	}
}

func TestReadSamplesError(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	src := &source{dec: &fakePCM{err: errBoom}, channels: 1, scale: 32768, intBuf: &goaudio.IntBuffer{}}

	if _, err := src.ReadSamples(make([]float32, 2)); !errors.Is(err, errBoom) {
		t.Errorf("got %v, want %v", err, errBoom)
	}
}

func TestScaleFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		depth int
		want  float32
		err   error
	}{
		{8, 128, nil},
		{16, 32768, nil},
		{24, 8388608, nil},
		{32, 2147483648, nil},
		{12, 0, ErrUnsupportedBitDepth},
	}

	for _, tt := range tests {
		got, err := scaleFor(tt.depth)
		if !errors.Is(err, tt.err) || got != tt.want {
			t.Errorf("scaleFor(%d) = (%v, %v), want (%v, %v)", tt.depth, got, err, tt.want, tt.err)
		}
	}
}

func TestDecodeNotAiff(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewBufferString("RIFF....WAVEfmt "))
	if !errors.Is(err, ErrNotAiffFile) {
		t.Errorf("got %v, want %v", err, ErrNotAiffFile)
	}
}
