// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"

	"github.com/ik5/pcmframe/audio"
)

var ErrNoChannels = errors.New("flac stream declares no channels")

type frameParser interface {
	ParseNext() (*frame.Frame, error)
}

type source struct {
	stream     frameParser
	closer     io.Closer
	sampleRate int
	channels   int

	// cur is the frame being handed out; pos is the next time step in it.
	cur *frame.Frame
	pos int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// ReadSamples interleaves the subframes of as many FLAC frames as fit in dst.
func (s *source) ReadSamples(dst []float32) (int, error) {
	steps := len(dst) / s.channels
	n := 0

	for n < steps*s.channels {
		if s.cur == nil || s.pos >= len(s.cur.Subframes[0].Samples) {
			f, err := s.stream.ParseNext()
			if errors.Is(err, io.EOF) {
				if n > 0 {
					return n, nil
				}
				return 0, io.EOF
			}
			if err != nil {
				return n, fmt.Errorf("decoding flac frame: %w", err)
			}
			if len(f.Subframes) != s.channels {
				return n, fmt.Errorf("flac frame has %d channels, stream has %d", len(f.Subframes), s.channels)
			}
			s.cur, s.pos = f, 0
		}

		scale := float32(int64(1) << (s.cur.BitsPerSample - 1))
		avail := len(s.cur.Subframes[0].Samples) - s.pos
		take := min(avail, steps-n/s.channels)

		for i := range take {
			for c, sub := range s.cur.Subframes {
				dst[n+i*s.channels+c] = float32(sub.Samples[s.pos+i]) / scale
			}
		}
		s.pos += take
		n += take * s.channels
	}

	return n, nil
}

// Decoder reads FLAC streams with github.com/mewkiz/flac.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("opening flac stream: %w", err)
	}
	if stream.Info.NChannels == 0 {
		stream.Close()
		return nil, ErrNoChannels
	}

	return &source{
		stream:     stream,
		closer:     stream,
		sampleRate: int(stream.Info.SampleRate),
		channels:   int(stream.Info.NChannels),
	}, nil
}
