// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInterleavedSize = errors.New("interleaved size must be multiple of channels")
	ErrInvalidChannels = errors.New("channel count must be at least 1")

	ErrInvalidTargetRate    = errors.New("target sample rate must be positive")
	ErrInvalidFrameDuration = errors.New("frame duration must be positive")
	ErrInvalidFrameSize     = errors.New("frame must hold at least one sample")
	ErrInvalidChunkSize     = errors.New("chunk size must be positive")
)
