// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/pcmframe/audio"
)

var ErrWriterClosed = errors.New("wav frame writer is closed")

// FrameWriter is an audio.FrameSink that streams frames into a mono 16-bit
// WAV file. The header is patched with the final sizes on Close.
//
// Emit cannot return an error, so the first write failure is kept and
// reported by Err and Close; later frames are discarded.
type FrameWriter struct {
	enc    *gowav.Encoder
	buf    *goaudio.IntBuffer
	frames int
	err    error
	closed bool
}

func NewFrameWriter(w io.WriteSeeker, sampleRate int) *FrameWriter {
	format := &goaudio.Format{NumChannels: 1, SampleRate: sampleRate}

	return &FrameWriter{
		enc: gowav.NewEncoder(w, sampleRate, 16, 1, formatPCM),
		buf: &goaudio.IntBuffer{Format: format, SourceBitDepth: 16},
	}
}

func (fw *FrameWriter) Emit(f audio.Frame) {
	if fw.err != nil {
		return
	}
	if fw.closed {
		fw.err = ErrWriterClosed
		return
	}

	n := f.Len()
	if cap(fw.buf.Data) < n {
		fw.buf.Data = make([]int, n)
	}
	fw.buf.Data = fw.buf.Data[:n]
	for i, s := range f.Samples() {
		fw.buf.Data[i] = int(s)
	}

	if err := fw.enc.Write(fw.buf); err != nil {
		fw.err = fmt.Errorf("writing frame %d: %w", fw.frames, err)
		return
	}
	fw.frames++
}

// Frames is the number of frames written so far.
func (fw *FrameWriter) Frames() int { return fw.frames }

func (fw *FrameWriter) Err() error { return fw.err }

// Close finalizes the header. It does not close the underlying writer.
func (fw *FrameWriter) Close() error {
	if fw.closed {
		return fw.err
	}
	fw.closed = true

	if fw.frames == 0 && fw.err == nil {
		// The encoder writes its header on the first Write.
		fw.buf.Data = fw.buf.Data[:0]
		if err := fw.enc.Write(fw.buf); err != nil {
			fw.err = fmt.Errorf("writing wav header: %w", err)
		}
	}

	if err := fw.enc.Close(); err != nil && fw.err == nil {
		fw.err = fmt.Errorf("finalizing wav: %w", err)
	}

	return fw.err
}
