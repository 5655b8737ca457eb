// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
)

const (
	DefaultTargetSampleRate = 16000
	DefaultFrameDurationMs  = 30
)

// Config selects the output of a Pipeline.
type Config struct {
	TargetSampleRate int `yaml:"target_sample_rate"`
	FrameDurationMs  int `yaml:"frame_duration_ms"`
}

// DefaultConfig is 16 kHz output in 30 ms frames (480 samples).
func DefaultConfig() Config {
	return Config{
		TargetSampleRate: DefaultTargetSampleRate,
		FrameDurationMs:  DefaultFrameDurationMs,
	}
}

// FrameSamples is round(TargetSampleRate * FrameDurationMs / 1000).
func (c Config) FrameSamples() int {
	return int(math.Round(float64(c.TargetSampleRate) * float64(c.FrameDurationMs) / 1000))
}

// FrameBytes is the payload size of one frame.
func (c Config) FrameBytes() int { return c.FrameSamples() * 2 }

func (c Config) Validate() error {
	var errs []error
	if c.TargetSampleRate <= 0 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidTargetRate, c.TargetSampleRate))
	}
	if c.FrameDurationMs <= 0 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidFrameDuration, c.FrameDurationMs))
	}
	if len(errs) == 0 && c.FrameSamples() < 1 {
		errs = append(errs, fmt.Errorf("%w: %d Hz x %d ms", ErrInvalidFrameSize, c.TargetSampleRate, c.FrameDurationMs))
	}
	return errors.Join(errs...)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for rate changes and dropped buffers.
// The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// Pipeline downmixes, resamples and frames audio buffers as they arrive from
// a capture callback. Each call runs to completion without blocking; state is
// carried from one call to the next for the life of the Pipeline.
//
// A Pipeline must not be used from more than one goroutine at a time.
// Independent Pipelines may run in parallel.
type Pipeline struct {
	cfg       Config
	resampler *Resampler
	framer    *Framer
	logger    *slog.Logger

	mono      []float32
	resampled []float32

	inputRate  int
	warnedRate sync.Once
}

// New builds a Pipeline for cfg. It fails when cfg cannot produce frames of
// at least one sample.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("audio: invalid pipeline config: %w", err)
	}

	framer, err := NewFramer(cfg.FrameSamples())
	if err != nil {
		return nil, fmt.Errorf("audio: invalid pipeline config: %w", err)
	}

	p := &Pipeline{
		cfg:       cfg,
		resampler: NewResampler(cfg.TargetSampleRate),
		framer:    framer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

func (p *Pipeline) Config() Config            { return p.cfg }
func (p *Pipeline) FrameSamples() int         { return p.framer.FrameSamples() }
func (p *Pipeline) Pending() int              { return p.framer.Pending() }
func (p *Pipeline) Resampler() ResamplerState { return p.resampler.State() }

// Process runs one buffer through the pipeline and returns the frames it
// completed, in order.
func (p *Pipeline) Process(buf Buffer, inputRate int) []Frame {
	var c FrameCollector
	p.ProcessTo(buf, inputRate, &c)
	return c.Frames
}

// ProcessTo runs one buffer through the pipeline, handing every completed
// frame to sink. It returns the number of frames emitted.
//
// Buffers with a non-positive inputRate are dropped.
func (p *Pipeline) ProcessTo(buf Buffer, inputRate int, sink FrameSink) int {
	if inputRate <= 0 {
		p.warnedRate.Do(func() {
			p.logger.Warn("audio pipeline: dropping buffer with invalid input rate",
				"inputRate", inputRate,
				"frames", buf.Len(),
			)
		})
		return 0
	}

	if inputRate != p.inputRate {
		p.logger.Debug("audio pipeline: input rate changed",
			"from", p.inputRate,
			"to", inputRate,
			"targetRate", p.cfg.TargetSampleRate,
		)
		p.inputRate = inputRate
	}

	p.mono = Downmix(p.mono, buf)
	out := p.resampler.Resample(p.resampled, p.mono, inputRate)
	if inputRate != p.cfg.TargetSampleRate {
		p.resampled = out
	}

	return p.framer.Push(out, sink)
}
