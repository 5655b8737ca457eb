// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"time"

	"github.com/ik5/pcmframe/audio"
)

// pacedSource stops reads once ctx is done and, when paced, spaces them one
// chunk duration apart like a live capture device.
type pacedSource struct {
	audio.Source
	ctx    context.Context
	ticker *time.Ticker
}

func newPacedSource(ctx context.Context, src audio.Source, chunkFrames int, paced bool) *pacedSource {
	ps := &pacedSource{Source: src, ctx: ctx}
	if paced && src.SampleRate() > 0 {
		ps.ticker = time.NewTicker(time.Duration(chunkFrames) * time.Second / time.Duration(src.SampleRate()))
	}
	return ps
}

func (s *pacedSource) ReadSamples(dst []float32) (int, error) {
	if s.ticker == nil {
		if err := s.ctx.Err(); err != nil {
			return 0, err
		}
		return s.Source.ReadSamples(dst)
	}

	select {
	case <-s.ctx.Done():
		return 0, s.ctx.Err()
	case <-s.ticker.C:
	}
	return s.Source.ReadSamples(dst)
}

func (s *pacedSource) stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
}
