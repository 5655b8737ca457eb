// SPDX-License-Identifier: EPL-2.0

package uplink

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/ik5/pcmframe/audio"
	"github.com/ik5/pcmframe/internal/observe"
)

// DefaultSession names streams whose hello is missing or carries no session.
const DefaultSession = "default"

const (
	// defaultReadLimit is the coder/websocket per-message default.
	defaultReadLimit = 32768
	helloHeadroom    = 1024
)

// FrameHandler receives each valid frame of a stream. Calls for one
// connection are sequential; different connections call it concurrently.
type FrameHandler func(session string, f audio.Frame)

// Receiver is the server side of an uplink. Binary messages that are not
// exactly one frame long are ignored, as are text messages after the hello.
type Receiver struct {
	frameBytes int
	handle     FrameHandler
	logger     *slog.Logger
	metrics    *observe.Metrics
	accept     *websocket.AcceptOptions
	fallback   func() string
	onStart    func(session string)
	onEnd      func(session string, frames int)
}

// ReceiverOption configures a Receiver.
type ReceiverOption func(*Receiver)

func WithReceiverLogger(l *slog.Logger) ReceiverOption {
	return func(r *Receiver) { r.logger = l }
}

func WithReceiverMetrics(m *observe.Metrics) ReceiverOption {
	return func(r *Receiver) { r.metrics = m }
}

func WithAcceptOptions(o *websocket.AcceptOptions) ReceiverOption {
	return func(r *Receiver) { r.accept = o }
}

// WithSessionFallback sets where the session comes from when the hello does
// not name one. The default always returns DefaultSession.
func WithSessionFallback(fn func() string) ReceiverOption {
	return func(r *Receiver) { r.fallback = fn }
}

// WithStreamStart registers fn to run once the hello of a connection was
// read, before any of its frames is handled.
func WithStreamStart(fn func(session string)) ReceiverOption {
	return func(r *Receiver) { r.onStart = fn }
}

// WithStreamEnd registers fn to run after a connection's last frame was
// handled, with the number of frames it delivered.
func WithStreamEnd(fn func(session string, frames int)) ReceiverOption {
	return func(r *Receiver) { r.onEnd = fn }
}

// NewReceiver accepts frames of frameSamples 16-bit samples.
func NewReceiver(frameSamples int, h FrameHandler, opts ...ReceiverOption) *Receiver {
	r := &Receiver{
		frameBytes: 2 * frameSamples,
		handle:     h,
		logger:     slog.Default(),
		fallback:   func() string { return DefaultSession },
	}
	for _, o := range opts {
		o(r)
	}
	if r.metrics == nil {
		r.metrics = observe.DefaultMetrics()
	}
	return r
}

func (r *Receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := websocket.Accept(w, req, r.accept)
	if err != nil {
		r.logger.Warn("uplink accept failed", "remote", req.RemoteAddr, "err", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(r.readLimit())

	ctx := req.Context()
	session := r.readHello(ctx, conn)
	logger := r.logger.With("session", session, "remote", req.RemoteAddr)
	logger.Info("uplink stream started")
	if r.onStart != nil {
		r.onStart(session)
	}

	r.metrics.ActiveSessions.Add(ctx, 1)
	defer r.metrics.ActiveSessions.Add(context.WithoutCancel(ctx), -1)

	var frames, ignored int
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				logger.Warn("uplink stream ended with error", "err", err)
			}
			break
		}

		if typ != websocket.MessageBinary {
			continue
		}
		if len(data) != r.frameBytes {
			ignored++
			continue
		}

		frames++
		r.metrics.RecordUplinkBytes(ctx, session, "receive", len(data))
		r.handle(session, audio.Frame{Payload: data})
	}

	logger.Info("uplink stream ended", "frames", frames, "ignored", ignored)
	if r.onEnd != nil {
		r.onEnd(session, frames)
	}
}

// readLimit admits one frame plus room for a hello, and never goes below the
// library default so mis-sized frames are still read and ignored.
func (r *Receiver) readLimit() int64 {
	return max(int64(r.frameBytes), defaultReadLimit) + helloHeadroom
}

// readHello consumes the first message. Anything that is not a JSON hello
// with a session, binary frames included, falls back to the default session.
func (r *Receiver) readHello(ctx context.Context, conn *websocket.Conn) string {
	typ, data, err := conn.Read(ctx)
	if err != nil || typ != websocket.MessageText {
		return r.fallback()
	}
	h, ok := parseHello(data)
	if !ok || h.SessionID == "" {
		return r.fallback()
	}
	return h.SessionID
}
