// SPDX-License-Identifier: EPL-2.0

// Package observe provides the OpenTelemetry counters pcmframe records while
// framing and streaming audio.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) uses the
// global meter provider; tests should use [NewMetrics] with their own
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ik5/pcmframe/audio"
)

// meterName is the instrumentation scope name used for all pcmframe metrics.
const meterName = "github.com/ik5/pcmframe"

// Metrics holds the instruments. All fields are safe for concurrent use.
type Metrics struct {
	// BuffersProcessed counts capture buffers handed to a pipeline.
	BuffersProcessed metric.Int64Counter

	// FramesEmitted counts frames produced by a pipeline.
	FramesEmitted metric.Int64Counter

	// FramesDropped counts frames an uplink discarded because its queue was
	// full.
	FramesDropped metric.Int64Counter

	// UplinkBytes counts payload bytes written to or read from a WebSocket.
	// Use with attribute.String("direction", "send"|"receive").
	UplinkBytes metric.Int64Counter

	// ActiveSessions tracks the number of connected receiver sessions.
	ActiveSessions metric.Int64UpDownCounter
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider].
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.BuffersProcessed, err = m.Int64Counter("pcmframe.buffers.processed",
		metric.WithDescription("Capture buffers fed to a pipeline."),
	); err != nil {
		return nil, err
	}
	if met.FramesEmitted, err = m.Int64Counter("pcmframe.frames.emitted",
		metric.WithDescription("PCM frames produced by a pipeline."),
	); err != nil {
		return nil, err
	}
	if met.FramesDropped, err = m.Int64Counter("pcmframe.frames.dropped",
		metric.WithDescription("PCM frames discarded by a full uplink queue."),
	); err != nil {
		return nil, err
	}
	if met.UplinkBytes, err = m.Int64Counter("pcmframe.uplink.bytes",
		metric.WithDescription("Frame payload bytes moved over WebSocket uplinks."),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("pcmframe.active_sessions",
		metric.WithDescription("Number of connected uplink sessions."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Panics if instrument creation
// fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

func session(id string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("session", id))
}

// RecordBuffer counts one processed capture buffer.
func (m *Metrics) RecordBuffer(ctx context.Context, sessionID string) {
	m.BuffersProcessed.Add(ctx, 1, session(sessionID))
}

// RecordDropped counts one frame dropped by an uplink.
func (m *Metrics) RecordDropped(ctx context.Context, sessionID string) {
	m.FramesDropped.Add(ctx, 1, session(sessionID))
}

// RecordUplinkBytes counts n payload bytes moved in direction ("send" or
// "receive").
func (m *Metrics) RecordUplinkBytes(ctx context.Context, sessionID, direction string, n int) {
	m.UplinkBytes.Add(ctx, int64(n),
		metric.WithAttributes(
			attribute.String("session", sessionID),
			attribute.String("direction", direction),
		),
	)
}

// CountFrames wraps next so that every frame passing through is counted
// under sessionID.
func (m *Metrics) CountFrames(ctx context.Context, sessionID string, next audio.FrameSink) audio.FrameSink {
	opt := session(sessionID)
	return audio.FrameSinkFunc(func(f audio.Frame) {
		m.FramesEmitted.Add(ctx, 1, opt)
		next.Emit(f)
	})
}

type countingSource struct {
	audio.Source
	ctx       context.Context
	m         *Metrics
	sessionID string
}

func (s countingSource) ReadSamples(dst []float32) (int, error) {
	n, err := s.Source.ReadSamples(dst)
	if n > 0 {
		s.m.RecordBuffer(s.ctx, s.sessionID)
	}
	return n, err
}

// CountBuffers wraps src so that every non-empty read, one capture buffer
// when drained through a pipeline, is counted under sessionID.
func (m *Metrics) CountBuffers(ctx context.Context, sessionID string, src audio.Source) audio.Source {
	return countingSource{Source: src, ctx: ctx, m: m, sessionID: sessionID}
}
