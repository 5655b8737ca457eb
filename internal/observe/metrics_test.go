// SPDX-License-Identifier: EPL-2.0

package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/ik5/pcmframe/audio"
	"github.com/ik5/pcmframe/internal/audiotest"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// sumFor adds up the data points of counter name whose attributes include kv.
func sumFor(t *testing.T, rm metricdata.ResourceMetrics, name string, kv attribute.KeyValue) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if met.Name != name {
				continue
			}
			sum, ok := met.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s: expected Sum[int64], got %T", name, met.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(kv.Key); ok && v == kv.Value {
					total += dp.Value
				}
			}
			return total
		}
	}
	t.Fatalf("metric %q not found", name)
	return 0
}

func TestCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordBuffer(ctx, "a")
	m.RecordBuffer(ctx, "a")
	m.RecordBuffer(ctx, "b")
	m.RecordDropped(ctx, "a")
	m.RecordUplinkBytes(ctx, "a", "send", 960)
	m.RecordUplinkBytes(ctx, "a", "send", 960)
	m.RecordUplinkBytes(ctx, "a", "receive", 320)

	rm := collect(t, reader)

	tests := []struct {
		name string
		kv   attribute.KeyValue
		want int64
	}{
		{"pcmframe.buffers.processed", attribute.String("session", "a"), 2},
		{"pcmframe.buffers.processed", attribute.String("session", "b"), 1},
		{"pcmframe.frames.dropped", attribute.String("session", "a"), 1},
		{"pcmframe.uplink.bytes", attribute.String("direction", "send"), 1920},
		{"pcmframe.uplink.bytes", attribute.String("direction", "receive"), 320},
	}

	for _, tt := range tests {
		if got := sumFor(t, rm, tt.name, tt.kv); got != tt.want {
			t.Errorf("%s{%s=%s} = %d, want %d", tt.name, tt.kv.Key, tt.kv.Value.Emit(), got, tt.want)
		}
	}
}

func TestCountFrames(t *testing.T) {
	m, reader := newTestMetrics(t)

	var c audio.FrameCollector
	sink := m.CountFrames(context.Background(), "call-1", &c)
	for range 3 {
		sink.Emit(audio.Frame{Payload: make([]byte, 960)})
	}

	if len(c.Frames) != 3 {
		t.Errorf("forwarded %d frames, want 3", len(c.Frames))
	}
	if got := sumFor(t, collect(t, reader), "pcmframe.frames.emitted", attribute.String("session", "call-1")); got != 3 {
		t.Errorf("frames.emitted = %d, want 3", got)
	}
}

func TestDefaultMetrics(t *testing.T) {
	a, b := DefaultMetrics(), DefaultMetrics()
	if a == nil || a != b {
		t.Errorf("DefaultMetrics() returned %p then %p, want the same non-nil pointer", a, b)
	}
}

func TestCountBuffers(t *testing.T) {
	m, reader := newTestMetrics(t)

	src := m.CountBuffers(context.Background(), "file", audiotest.NewSilentSource(16000, 1, 300))
	p, err := audio.New(audio.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := audio.Drain(src, p, 128, &audio.FrameCollector{}); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	// Reads past the end return nothing and count nothing.
	if n, _ := src.ReadSamples(make([]float32, 128)); n != 0 {
		t.Fatalf("read %d samples past the end", n)
	}

	// 300 steps in 128-step chunks: 128, 128, 44.
	if got := sumFor(t, collect(t, reader), "pcmframe.buffers.processed", attribute.String("session", "file")); got != 3 {
		t.Errorf("buffers.processed = %d, want 3", got)
	}
}
