// SPDX-License-Identifier: EPL-2.0

package audio

// Buffer is one block of planar audio as handed over by a capture callback:
// one slice per channel, float samples in roughly [-1, 1].
type Buffer [][]float32

func (b Buffer) Channels() int { return len(b) }

// Len is the number of time steps in the buffer, taken from the first
// channel. Shorter channels are read as zero past their end.
func (b Buffer) Len() int {
	if len(b) == 0 {
		return 0
	}
	return len(b[0])
}

// Deinterleave splits interleaved samples into a planar Buffer, reusing the
// channel slices of dst when their capacity allows.
func Deinterleave(dst Buffer, src []float32, channels int) (Buffer, error) {
	if channels < 1 {
		return dst, ErrInvalidChannels
	}
	if len(src)%channels != 0 {
		return dst, ErrInterleavedSize
	}

	frames := len(src) / channels

	if cap(dst) < channels {
		grown := make(Buffer, channels)
		copy(grown, dst)
		dst = grown
	}
	dst = dst[:channels]

	for c := range channels {
		if cap(dst[c]) < frames {
			dst[c] = make([]float32, frames)
		}
		dst[c] = dst[c][:frames]
	}

	if channels == 1 {
		copy(dst[0], src)
		return dst, nil
	}

	for f := range frames {
		base := f * channels
		for c := range channels {
			dst[c][f] = src[base+c]
		}
	}

	return dst, nil
}
