// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// DefaultChunkFrames matches the Web Audio render quantum, the block size a
// browser capture callback delivers.
const DefaultChunkFrames = 128

// Drain reads src to the end in blocks of chunkFrames time steps and feeds
// each block to p at src's native rate, the way a capture callback would.
// Frames go to sink. It returns the number of frames emitted; reaching
// io.EOF is not an error.
//
// Samples still pending in p when src ends stay there.
func Drain(src Source, p *Pipeline, chunkFrames int, sink FrameSink) (int, error) {
	if chunkFrames <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, chunkFrames)
	}

	channels := src.Channels()
	if channels < 1 {
		return 0, ErrInvalidChannels
	}

	rate := src.SampleRate()
	interleaved := make([]float32, chunkFrames*channels)
	var planar Buffer
	emitted := 0

	for {
		n, err := src.ReadSamples(interleaved)
		if n > 0 {
			// Decoders may return a partial frame at the very end.
			n -= n % channels

			var derr error
			planar, derr = Deinterleave(planar, interleaved[:n], channels)
			if derr != nil {
				return emitted, fmt.Errorf("deinterleaving chunk: %w", derr)
			}
			emitted += p.ProcessTo(planar, rate, sink)
		}

		if errors.Is(err, io.EOF) {
			return emitted, nil
		}
		if err != nil {
			return emitted, fmt.Errorf("reading source: %w", err)
		}
	}
}
