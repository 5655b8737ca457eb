// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/ik5/pcmframe/utils"
)

// Framer slices a running stream of mono samples into frames of a fixed
// sample count and quantizes each one to 16-bit PCM.
//
// Between calls it holds fewer than FrameSamples() samples. A Framer is not
// safe for concurrent use.
type Framer struct {
	size    int
	pending []float32
}

func NewFramer(frameSamples int) (*Framer, error) {
	if frameSamples < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidFrameSize, frameSamples)
	}

	return &Framer{
		size:    frameSamples,
		pending: make([]float32, 0, frameSamples*2),
	}, nil
}

func (fr *Framer) FrameSamples() int { return fr.size }

// Pending is the number of samples waiting for the next frame.
func (fr *Framer) Pending() int { return len(fr.pending) }

// Push appends samples after the pending ones and emits every complete frame
// to sink, oldest first. It returns the number of frames emitted.
func (fr *Framer) Push(samples []float32, sink FrameSink) int {
	fr.pending = append(fr.pending, samples...)

	emitted := 0
	off := 0
	for len(fr.pending)-off >= fr.size {
		sink.Emit(fr.quantize(fr.pending[off : off+fr.size]))
		off += fr.size
		emitted++
	}

	if off > 0 {
		n := copy(fr.pending, fr.pending[off:])
		fr.pending = fr.pending[:n]
	}

	return emitted
}

func (fr *Framer) quantize(samples []float32) Frame {
	payload := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(payload[2*i:], uint16(utils.QuantizeInt16(s)))
	}
	return Frame{Payload: payload}
}
