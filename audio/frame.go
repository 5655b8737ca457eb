// SPDX-License-Identifier: EPL-2.0

package audio

import "encoding/binary"

// KindFrame is the only event kind the pipeline produces.
const KindFrame = "frame"

// Frame is one fixed-size block of mono signed 16-bit little-endian PCM.
// The payload belongs to the receiver once emitted.
type Frame struct {
	Payload []byte
}

func (Frame) Kind() string { return KindFrame }

// Len is the number of samples in the frame.
func (f Frame) Len() int { return len(f.Payload) / 2 }

// Samples decodes the payload into int16 values.
func (f Frame) Samples() []int16 {
	out := make([]int16, f.Len())
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(f.Payload[2*i:]))
	}
	return out
}

// FrameSink receives frames in the order they are produced. Emit is called
// from the processing call and must not block.
type FrameSink interface {
	Emit(Frame)
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(Frame)

func (fn FrameSinkFunc) Emit(f Frame) { fn(f) }

// FrameCollector is a FrameSink that keeps every frame it receives.
type FrameCollector struct {
	Frames []Frame
}

func (c *FrameCollector) Emit(f Frame) { c.Frames = append(c.Frames, f) }

// Reset drops the collected frames but keeps the backing array.
func (c *FrameCollector) Reset() {
	clear(c.Frames)
	c.Frames = c.Frames[:0]
}
