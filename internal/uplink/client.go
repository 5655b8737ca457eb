// SPDX-License-Identifier: EPL-2.0

package uplink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"

	"github.com/ik5/pcmframe/audio"
	"github.com/ik5/pcmframe/internal/observe"
)

const defaultQueue = 64

// Client sends frames to a WebSocket endpoint. It is an audio.FrameSink whose
// Emit never blocks: frames are queued and written by Run, and a frame that
// finds the queue full is dropped.
type Client struct {
	conn    *websocket.Conn
	hello   Hello
	frames  chan []byte
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	// mu orders sends to frames against close(done).
	mu      sync.RWMutex
	running atomic.Bool

	sent    atomic.Int64
	dropped atomic.Int64

	logger  *slog.Logger
	metrics *observe.Metrics
	queue   int
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

func WithMetrics(m *observe.Metrics) Option { return func(c *Client) { c.metrics = m } }

// WithQueue sets how many frames may wait for Run. Values below 1 are ignored.
func WithQueue(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.queue = n
		}
	}
}

// Dial connects to url and sends hello.
func Dial(ctx context.Context, url string, hello Hello, opts ...Option) (*Client, error) {
	c := &Client{
		hello:   hello,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  slog.Default(),
		queue:   defaultQueue,
	}
	for _, o := range opts {
		o(c)
	}
	if c.metrics == nil {
		c.metrics = observe.DefaultMetrics()
	}
	c.frames = make(chan []byte, c.queue)

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("uplink: dial %s: %w", url, err)
	}

	data, err := json.Marshal(hello)
	if err != nil {
		conn.CloseNow()
		return nil, fmt.Errorf("uplink: encode hello: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		conn.CloseNow()
		return nil, fmt.Errorf("uplink: send hello: %w", err)
	}

	c.conn = conn
	c.logger = c.logger.With("session", hello.SessionID)
	c.logger.Debug("uplink connected", "url", url, "sample_rate", hello.SampleRate, "frame_ms", hello.FrameMs)

	return c, nil
}

func (c *Client) Emit(f audio.Frame) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	select {
	case <-c.done:
		c.drop("closed")
		return
	default:
	}

	select {
	case c.frames <- f.Payload:
	default:
		c.drop("queue full")
	}
}

func (c *Client) drop(reason string) {
	if c.dropped.Add(1) == 1 {
		c.logger.Warn("uplink dropping frames", "reason", reason)
	}
	c.metrics.RecordDropped(context.Background(), c.hello.SessionID)
}

// Sent is the number of frames written to the socket.
func (c *Client) Sent() int64 { return c.sent.Load() }

// Dropped is the number of frames discarded by Emit, plus those still queued
// when Close found Run already stopped.
func (c *Client) Dropped() int64 { return c.dropped.Load() }

// Run writes queued frames in order until Close is called, then flushes the
// queue and returns. It returns early on a write error, when the peer closes
// the connection or when ctx is done. Run must be called at most once; if
// Close has already run it returns nil at once.
func (c *Client) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		select {
		case <-c.done:
			// Close got here first and flushed the queue itself.
			return nil
		default:
			return errors.New("uplink: Run called twice")
		}
	}
	defer close(c.stopped)

	// The endpoint sends no data; CloseRead handles control frames and
	// reports when the peer goes away.
	peer := c.conn.CloseRead(ctx)

	for {
		select {
		case p := <-c.frames:
			if err := c.write(ctx, p); err != nil {
				return err
			}
		case <-c.done:
			return c.flush(ctx)
		case <-peer.Done():
			select {
			case <-c.done:
				return nil
			default:
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			return ErrPeerClosed
		}
	}
}

func (c *Client) flush(ctx context.Context) error {
	for {
		select {
		case p := <-c.frames:
			if err := c.write(ctx, p); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// discard counts frames left behind by a failed flush or an early Run exit.
func (c *Client) discard() {
	for {
		select {
		case <-c.frames:
			c.drop("not sent")
		default:
			return
		}
	}
}

func (c *Client) write(ctx context.Context, p []byte) error {
	if err := c.conn.Write(ctx, websocket.MessageBinary, p); err != nil {
		return fmt.Errorf("uplink: write frame: %w", err)
	}
	c.sent.Add(1)
	c.metrics.RecordUplinkBytes(ctx, c.hello.SessionID, "send", len(p))
	return nil
}

// Close stops accepting frames, waits for Run to flush what is queued and
// closes the connection normally. Without a running Run the queue is
// flushed here.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		close(c.done)
		c.mu.Unlock()

		if c.running.CompareAndSwap(false, true) {
			err = c.flush(context.Background())
		} else {
			<-c.stopped
		}
		c.discard()
		if cerr := c.conn.Close(websocket.StatusNormalClosure, "stream ended"); cerr != nil {
			c.logger.Debug("uplink close handshake failed", "err", cerr)
		}
		c.logger.Info("uplink closed", "sent", c.Sent(), "dropped", c.Dropped())
	})
	return err
}
