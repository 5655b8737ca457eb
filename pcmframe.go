// SPDX-License-Identifier: EPL-2.0

package pcmframe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ik5/pcmframe/audio"
	"github.com/ik5/pcmframe/formats/aiff"
	"github.com/ik5/pcmframe/formats/flac"
	"github.com/ik5/pcmframe/formats/mp3"
	"github.com/ik5/pcmframe/formats/vorbis"
	"github.com/ik5/pcmframe/formats/wav"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// DefaultRegistry returns a registry with every bundled decoder.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("flac", flac.Decoder{})

	return reg
}

type fileSource struct {
	audio.Source
	f *os.File
}

func (s fileSource) Close() error {
	return errors.Join(s.Source.Close(), s.f.Close())
}

// Open decodes the file at path with the decoder registered for its
// extension. Closing the returned Source also closes the file.
func Open(reg *audio.Registry, path string) (audio.Source, error) {
	dec, ok := reg.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return fileSource{Source: src, f: f}, nil
}

// CollectFrames runs src through a fresh Pipeline built from cfg, in blocks
// of chunkFrames time steps, and returns every frame produced. Samples that
// never filled a frame are dropped with the Pipeline.
func CollectFrames(src audio.Source, cfg audio.Config, chunkFrames int) ([]audio.Frame, error) {
	p, err := audio.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	var c audio.FrameCollector
	if _, err := audio.Drain(src, p, chunkFrames, &c); err != nil {
		return c.Frames, fmt.Errorf("collecting frames: %w", err)
	}

	return c.Frames, nil
}
