// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ik5/pcmframe/audio"
	"github.com/ik5/pcmframe/formats/wav"
	"github.com/ik5/pcmframe/internal/config"
	"github.com/ik5/pcmframe/internal/observe"
	"github.com/ik5/pcmframe/internal/uplink"
)

type serveCmd struct {
	Listen  string `help:"Address to listen on." default:":8080"`
	Dir     string `help:"Directory recordings are written to." default:"recordings" type:"path"`
	Rate    int    `help:"Expected sample rate in Hz (default 16000)."`
	FrameMs int    `name:"frame-ms" help:"Expected frame duration in milliseconds (default 30)."`
}

func (s *serveCmd) Run(g *Globals) error {
	cfg, err := g.load(func(cfg *config.Config) {
		if s.Rate != 0 {
			cfg.Pipeline.TargetSampleRate = s.Rate
		}
		if s.FrameMs != 0 {
			cfg.Pipeline.FrameDurationMs = s.FrameMs
		}
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating recordings dir: %w", err)
	}

	rec := newRecorder(s.Dir, cfg.Pipeline.TargetSampleRate)
	rc := uplink.NewReceiver(cfg.Pipeline.FrameSamples(), rec.Frame,
		uplink.WithStreamStart(rec.Start),
		uplink.WithStreamEnd(rec.End),
		uplink.WithReceiverMetrics(observe.DefaultMetrics()),
	)

	mux := http.NewServeMux()
	mux.Handle("/ws-audio", rc)

	srv := &http.Server{
		Addr:              s.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	slog.Info("listening", "addr", s.Listen, "dir", s.Dir, "frame_samples", cfg.Pipeline.FrameSamples())

	select {
	case err := <-errc:
		return fmt.Errorf("serving %s: %w", s.Listen, err)
	case <-ctx.Done():
	}

	slog.Info("shutdown signal received, stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return errors.Join(err, rec.CloseAll())
}

type recording struct {
	f     *os.File
	w     *wav.FrameWriter
	conns int
}

// recorder keeps one WAV file open per session while any connection for it
// is streaming.
type recorder struct {
	dir  string
	rate int

	mu       sync.Mutex
	sessions map[string]*recording
}

func newRecorder(dir string, rate int) *recorder {
	return &recorder{dir: dir, rate: rate, sessions: make(map[string]*recording)}
}

// path maps a session to a file name that stays inside dir.
func (r *recorder) path(session string) string {
	name := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			return c
		}
		return '_'
	}, session)
	return filepath.Join(r.dir, name+".wav")
}

// Start counts a connection for session. Frame opens the file lazily, so a
// stream that never delivers a frame leaves nothing behind.
func (r *recorder) Start(session string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[session]
	if !ok {
		rec = &recording{}
		r.sessions[session] = rec
	}
	rec.conns++
}

func (r *recorder) Frame(session string, f audio.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[session]
	if !ok {
		return
	}
	if rec.w == nil {
		file, err := os.Create(r.path(session))
		if err != nil {
			slog.Error("cannot create recording", "session", session, "err", err)
			return
		}
		rec.f, rec.w = file, wav.NewFrameWriter(file, r.rate)
	}
	rec.w.Emit(f)
}

func (r *recorder) End(session string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[session]
	if !ok {
		return
	}
	rec.conns--
	if rec.conns > 0 {
		return
	}
	delete(r.sessions, session)
	if rec.w == nil {
		return
	}

	if err := closeRecording(rec); err != nil {
		slog.Error("recording failed", "session", session, "err", err)
		return
	}
	slog.Info("recording saved", "session", session, "file", rec.f.Name(), "frames", rec.w.Frames())
}

func (r *recorder) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for session, rec := range r.sessions {
		if rec.w != nil {
			errs = append(errs, closeRecording(rec))
		}
		delete(r.sessions, session)
	}
	return errors.Join(errs...)
}

func closeRecording(rec *recording) error {
	return errors.Join(rec.w.Close(), rec.f.Close())
}
