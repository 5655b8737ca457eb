// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/pcmframe"
	"github.com/ik5/pcmframe/audio"
	"github.com/ik5/pcmframe/formats/wav"
	"github.com/ik5/pcmframe/internal/config"
	"github.com/ik5/pcmframe/internal/observe"
	"github.com/ik5/pcmframe/internal/uplink"
)

type convertCmd struct {
	Input    string `arg:"" help:"Audio file to frame (wav, mp3, ogg, aiff, flac)." type:"existingfile"`
	WAV      string `name:"wav" help:"Write frames to this WAV file." placeholder:"FILE"`
	Uplink   string `help:"Stream frames to this ws:// or wss:// URL." placeholder:"URL"`
	Session  string `help:"Session ID sent in the uplink hello. Generated when empty."`
	Rate     int    `help:"Target sample rate in Hz (default 16000)."`
	FrameMs  int    `name:"frame-ms" help:"Frame duration in milliseconds (default 30)."`
	Chunk    int    `help:"Time steps per simulated capture callback (default 128)."`
	Realtime bool   `help:"Feed the file at capture speed instead of as fast as possible."`
}

func (c *convertCmd) apply(cfg *config.Config) {
	if c.WAV != "" {
		cfg.Output.WAV = c.WAV
	}
	if c.Uplink != "" {
		cfg.Uplink.URL = c.Uplink
	}
	if c.Session != "" {
		cfg.Uplink.SessionID = c.Session
	}
	if c.Rate != 0 {
		cfg.Pipeline.TargetSampleRate = c.Rate
	}
	if c.FrameMs != 0 {
		cfg.Pipeline.FrameDurationMs = c.FrameMs
	}
	if c.Chunk != 0 {
		cfg.Capture.ChunkFrames = c.Chunk
	}
}

func (c *convertCmd) Run(g *Globals) error {
	cfg, err := g.load(c.apply)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := convert(ctx, c.Input, cfg, c.Realtime, observe.DefaultMetrics())
	if err != nil {
		return err
	}

	slog.Info("done",
		"input", c.Input,
		"frames", stats.Frames,
		"pending_samples", stats.Pending,
		"sent", stats.Sent,
		"dropped", stats.Dropped,
	)
	return nil
}

type convertStats struct {
	Frames  int
	Pending int
	Sent    int64
	Dropped int64
}

// multiSink hands every frame to each sink in turn.
type multiSink []audio.FrameSink

func (m multiSink) Emit(f audio.Frame) {
	for _, s := range m {
		s.Emit(f)
	}
}

func convert(ctx context.Context, input string, cfg *config.Config, realtime bool, metrics *observe.Metrics) (convertStats, error) {
	var stats convertStats

	session := cfg.Uplink.SessionID
	if session == "" {
		session = uuid.NewString()
	}
	logger := slog.Default().With("session", session)

	src, err := pcmframe.Open(pcmframe.DefaultRegistry(), input)
	if err != nil {
		return stats, err
	}
	defer src.Close()

	logger.Info("decoding",
		"input", input,
		"sample_rate", src.SampleRate(),
		"channels", src.Channels(),
		"target_rate", cfg.Pipeline.TargetSampleRate,
		"frame_ms", cfg.Pipeline.FrameDurationMs,
	)

	p, err := audio.New(cfg.Pipeline, audio.WithLogger(logger))
	if err != nil {
		return stats, err
	}

	var sinks multiSink

	var client *uplink.Client
	if cfg.Uplink.URL != "" {
		hello := uplink.Hello{
			SessionID:  session,
			SampleRate: cfg.Pipeline.TargetSampleRate,
			FrameMs:    cfg.Pipeline.FrameDurationMs,
		}
		client, err = uplink.Dial(ctx, cfg.Uplink.URL, hello,
			uplink.WithLogger(logger),
			uplink.WithMetrics(metrics),
			uplink.WithQueue(cfg.Uplink.Queue),
		)
		if err != nil {
			return stats, err
		}
		sinks = append(sinks, client)
	}

	// Nothing is written to disk until the uplink is connected.
	var fw *wav.FrameWriter
	if cfg.Output.WAV != "" {
		f, err := os.Create(cfg.Output.WAV)
		if err != nil {
			if client != nil {
				_ = client.Close()
			}
			return stats, fmt.Errorf("creating wav output: %w", err)
		}
		defer f.Close()

		fw = wav.NewFrameWriter(f, cfg.Pipeline.TargetSampleRate)
		sinks = append(sinks, fw)
	}

	sink := metrics.CountFrames(ctx, session, sinks)

	g, gctx := errgroup.WithContext(ctx)
	feed := newPacedSource(gctx, metrics.CountBuffers(ctx, session, src), cfg.Capture.ChunkFrames, realtime)
	defer feed.stop()

	if client != nil {
		g.Go(func() error { return client.Run(gctx) })
	}
	g.Go(func() error {
		n, err := audio.Drain(feed, p, cfg.Capture.ChunkFrames, sink)
		stats.Frames = n
		if client != nil {
			err = errors.Join(err, client.Close())
		}
		return err
	})

	err = g.Wait()
	stats.Pending = p.Pending()
	if client != nil {
		stats.Sent, stats.Dropped = client.Sent(), client.Dropped()
	}
	if fw != nil {
		err = errors.Join(err, fw.Close())
	}

	return stats, err
}
