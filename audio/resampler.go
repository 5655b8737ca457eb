// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"

	"github.com/ik5/pcmframe/utils"
)

// ResamplerState is the phase carried by a Resampler between calls.
type ResamplerState struct {
	// FractionalPosition is the offset of the next output sample inside the
	// next input buffer, in [0, 1).
	FractionalPosition float64
	// LastInputSample is the final sample of the previous non-empty input.
	LastInputSample float32
}

// Resampler converts mono blocks to a fixed target rate with linear
// interpolation. It treats successive calls as one continuous stream, so the
// phase of the output does not restart at every block boundary.
// No anti-aliasing filter is applied when downsampling.
//
// A Resampler is not safe for concurrent use.
type Resampler struct {
	targetRate int
	state      ResamplerState
}

func NewResampler(targetRate int) *Resampler {
	return &Resampler{targetRate: targetRate}
}

func (r *Resampler) TargetRate() int       { return r.targetRate }
func (r *Resampler) State() ResamplerState { return r.state }

// Resample converts in, sampled at inputRate, to the target rate and appends
// the result to dst[:0].
//
// When inputRate equals the target rate in is returned as is and the state is
// left untouched. An empty in returns an empty result, also without touching
// the state.
//
// At most floor((len(in)+1) * target/input) samples are produced. Production
// stops as soon as the cursor reaches the end of in; an output that would
// need the next block is not carried over.
func (r *Resampler) Resample(dst, in []float32, inputRate int) []float32 {
	if inputRate == r.targetRate {
		return in
	}

	dst = dst[:0]
	if len(in) == 0 || inputRate <= 0 {
		return dst
	}

	step := float64(inputRate) / float64(r.targetRate)
	maxOut := int(int64(len(in)+1) * int64(r.targetRate) / int64(inputRate))

	last := in[len(in)-1]
	t := r.state.FractionalPosition

	for range maxOut {
		fi := math.Floor(t)
		i := int(fi)
		f := t - fi

		var left float32
		switch {
		case i == -1:
			left = r.state.LastInputSample
		case i >= 0 && i < len(in):
			left = in[i]
		default:
			left = last
		}

		right := last
		if i+1 >= 0 && i+1 < len(in) {
			right = in[i+1]
		}

		dst = append(dst, utils.LinearInterpolate(left, right, f))

		t += step
		if int(math.Floor(t)) >= len(in) {
			break
		}
	}

	r.state.FractionalPosition = t - math.Floor(t)
	r.state.LastInputSample = last

	return dst
}
