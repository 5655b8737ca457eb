// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"testing"

	"github.com/ik5/pcmframe/internal/audiotest"
)

func assertSamples(t *testing.T, got, want []float32, tolerance float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > tolerance {
			t.Errorf("sample[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestResampler_Identity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []float32
	}{
		{name: "non-empty", in: []float32{0.1, -0.2, 0.3}},
		{name: "empty", in: []float32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewResampler(16000)
			got := r.Resample(nil, tt.in, 16000)

			assertSamples(t, got, tt.in, 0)
			if r.State() != (ResamplerState{}) {
				t.Errorf("State() = %+v, want zero state after identity pass", r.State())
			}
		})
	}
}

func TestResampler_EmptyInputKeepsState(t *testing.T) {
	t.Parallel()

	r := NewResampler(16000)
	r.Resample(nil, []float32{0.5, 0.25}, 12000)
	before := r.State()

	got := r.Resample(nil, nil, 12000)

	if len(got) != 0 {
		t.Errorf("Resample(empty) returned %d samples, want 0", len(got))
	}
	if r.State() != before {
		t.Errorf("State() = %+v, want unchanged %+v", r.State(), before)
	}
}

func TestResampler_Downsample48kTo16k(t *testing.T) {
	t.Parallel()

	in := make([]float32, 1440)
	for i := range in {
		in[i] = 1
	}

	r := NewResampler(16000)
	got := r.Resample(nil, in, 48000)

	if len(got) != 480 {
		t.Fatalf("Resample() produced %d samples, want 480", len(got))
	}
	for i, s := range got {
		if s != 1 {
			t.Fatalf("sample[%d] = %v, want 1", i, s)
		}
	}

	want := ResamplerState{FractionalPosition: 0, LastInputSample: 1}
	if r.State() != want {
		t.Errorf("State() = %+v, want %+v", r.State(), want)
	}
}

func TestResampler_DownsamplePicksEveryThirdSample(t *testing.T) {
	t.Parallel()

	in := audiotest.Mono(audiotest.Ramp(0, 0.001), 0, 300)

	r := NewResampler(16000)
	got := r.Resample(nil, in, 48000)

	want := make([]float32, 100)
	for k := range want {
		want[k] = in[3*k]
	}
	assertSamples(t, got, want, 0)
}

func TestResampler_Upsample(t *testing.T) {
	t.Parallel()

	r := NewResampler(16000)

	got := r.Resample(nil, []float32{0, 1, 2, 3}, 8000)
	assertSamples(t, got, []float32{0, 0.5, 1, 1.5, 2, 2.5, 3, 3}, 1e-6)

	want := ResamplerState{FractionalPosition: 0, LastInputSample: 3}
	if r.State() != want {
		t.Errorf("State() = %+v, want %+v", r.State(), want)
	}

	got = r.Resample(nil, []float32{4, 5}, 8000)
	assertSamples(t, got, []float32{4, 4.5, 5, 5}, 1e-6)
}

func TestResampler_CarriesFractionalPosition(t *testing.T) {
	t.Parallel()

	// 12 kHz to 16 kHz advances the cursor by 0.75 input samples.
	r := NewResampler(16000)

	got := r.Resample(nil, []float32{0, 0.4}, 12000)
	assertSamples(t, got, []float32{0, 0.3, 0.4}, 1e-6)

	if got := r.State().FractionalPosition; got != 0.25 {
		t.Errorf("FractionalPosition = %v, want 0.25", got)
	}
	if got := r.State().LastInputSample; got != 0.4 {
		t.Errorf("LastInputSample = %v, want 0.4", got)
	}

	// Next block starts a quarter of a sample in.
	got = r.Resample(nil, []float32{0.8, 1.2}, 12000)
	assertSamples(t, got, []float32{0.9, 1.2, 1.2}, 1e-6)

	if got := r.State().FractionalPosition; got != 0.5 {
		t.Errorf("FractionalPosition = %v, want 0.5", got)
	}
}

// TestResampler_DownsampleCarriesOnlyFraction pins the cursor behaviour when a
// block length is not a multiple of the decimation step: the integer overshoot
// is discarded.
func TestResampler_DownsampleCarriesOnlyFraction(t *testing.T) {
	t.Parallel()

	r := NewResampler(16000)
	got := r.Resample(nil, make([]float32, 128), 48000)

	if len(got) != 43 {
		t.Errorf("Resample() produced %d samples, want 43", len(got))
	}
	if got := r.State().FractionalPosition; got != 0 {
		t.Errorf("FractionalPosition = %v, want 0", got)
	}
}

func TestResampler_OutputBound(t *testing.T) {
	t.Parallel()

	rates := []int{8000, 11025, 22050, 24000, 32000, 44100, 48000, 96000}
	lengths := []int{1, 2, 3, 127, 128, 441, 1024}

	for _, inRate := range rates {
		for _, n := range lengths {
			r := NewResampler(16000)
			in := audiotest.Mono(audiotest.Sine(inRate, 440), 0, n)

			got := r.Resample(nil, in, inRate)
			if inRate == 16000 {
				continue
			}

			bound := int(math.Floor(float64(n+1) * 16000 / float64(inRate)))
			if len(got) > bound {
				t.Errorf("%d Hz, %d samples: produced %d, bound %d", inRate, n, len(got), bound)
			}
			if fp := r.State().FractionalPosition; fp < 0 || fp >= 1 {
				t.Errorf("%d Hz, %d samples: FractionalPosition = %v outside [0, 1)", inRate, n, fp)
			}
		}
	}
}

// continuity compares one pass over in with the same samples fed in pieces.
// Outputs may differ only in the last slot before each split, and there by
// no more than one input step.
func continuity(t *testing.T, inRate int, in []float32, pieces []int) {
	t.Helper()

	whole := NewResampler(16000).Resample(nil, in, inRate)

	r := NewResampler(16000)
	var split []float32
	off := 0
	for _, n := range pieces {
		split = append(split, r.Resample(nil, in[off:off+n], inRate)...)
		off += n
	}
	if off != len(in) {
		t.Fatalf("pieces cover %d samples, input has %d", off, len(in))
	}

	if len(split) != len(whole) {
		t.Fatalf("split pass produced %d samples, single pass %d", len(split), len(whole))
	}

	maxStep := 0.0
	for i := 1; i < len(in); i++ {
		maxStep = max(maxStep, math.Abs(float64(in[i]-in[i-1])))
	}

	slotsPerSample := int(math.Ceil(16000 / float64(inRate)))
	allowed := len(pieces) * slotsPerSample
	mismatched := 0
	for i := range whole {
		diff := math.Abs(float64(whole[i] - split[i]))
		if diff > 1e-6 {
			mismatched++
		}
		if diff > maxStep+1e-6 {
			t.Errorf("sample %d: single %v, split %v, diff %v exceeds one input step %v", i, whole[i], split[i], diff, maxStep)
		}
	}
	if mismatched > allowed {
		t.Errorf("%d samples differ, want at most %d", mismatched, allowed)
	}
}

func TestResampler_Continuity(t *testing.T) {
	t.Parallel()

	t.Run("upsample 8k", func(t *testing.T) {
		t.Parallel()
		in := audiotest.Mono(audiotest.Sine(8000, 440), 0, 400)
		continuity(t, 8000, in, []int{100, 37, 63, 200})
	})

	t.Run("upsample 12k fractional", func(t *testing.T) {
		t.Parallel()
		in := audiotest.Mono(audiotest.Sine(12000, 300), 0, 480)
		continuity(t, 12000, in, []int{2, 2, 2, 2, 2, 2, 100, 50, 318})
	})

	t.Run("downsample 48k aligned", func(t *testing.T) {
		t.Parallel()
		in := audiotest.Mono(audiotest.Sine(48000, 440), 0, 1440)
		continuity(t, 48000, in, []int{120, 120, 600, 3, 597})
	})

	t.Run("downsample 32k aligned", func(t *testing.T) {
		t.Parallel()
		in := audiotest.Mono(audiotest.Sine(32000, 440), 0, 1024)
		continuity(t, 32000, in, []int{128, 128, 256, 512})
	})
}

func TestResampler_ZeroAllocsAfterWarmup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	r := NewResampler(16000)
	in := audiotest.Mono(audiotest.Sine(48000, 440), 0, 129)
	dst := r.Resample(nil, in, 48000)

	allocs := testing.AllocsPerRun(100, func() {
		dst = r.Resample(dst, in, 48000)
	})

	if allocs > 0 {
		t.Errorf("Resample allocated %v times after warmup, want 0", allocs)
	}
}

// BenchmarkResampler_48kTo16k benchmarks one render quantum at 48 kHz.
func BenchmarkResampler_48kTo16k(b *testing.B) {
	r := NewResampler(16000)
	in := audiotest.Mono(audiotest.Sine(48000, 440), 0, 128)
	dst := make([]float32, 0, 64)

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		dst = r.Resample(dst, in, 48000)
	}
}

// BenchmarkResampler_44k1To16k benchmarks a non-integer ratio.
func BenchmarkResampler_44k1To16k(b *testing.B) {
	r := NewResampler(16000)
	in := audiotest.Mono(audiotest.Sine(44100, 440), 0, 128)
	dst := make([]float32, 0, 64)

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		dst = r.Resample(dst, in, 44100)
	}
}
