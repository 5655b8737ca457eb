// SPDX-License-Identifier: EPL-2.0

// Package audio turns a live stream of multi-channel float audio into
// fixed-duration mono 16-bit PCM frames at a chosen sample rate.
//
// The building blocks are:
//   - Buffer, planar audio as delivered by a capture callback
//   - Downmix, averaging channels into mono
//   - Resampler, a streaming linear resampler that carries its phase and
//     last sample from one buffer to the next
//   - Framer, slicing the resampled stream into frames and quantizing them
//   - Pipeline, the three above wired together
//
// # Pipeline
//
// A Pipeline is fed one buffer per capture callback, together with the rate
// the buffer was captured at:
//
//	p, err := audio.New(audio.Config{TargetSampleRate: 16000, FrameDurationMs: 30})
//	if err != nil {
//	    return err
//	}
//
//	// inside the capture callback
//	for _, frame := range p.Process(buf, 48000) {
//	    send(frame.Payload) // 960 bytes, 480 samples
//	}
//
// ProcessTo hands frames to a FrameSink instead of returning a slice. Sinks
// are called synchronously and must not block; queue the frame and return.
//
// Samples that do not yet fill a frame stay inside the Pipeline until the
// next call. Nothing is flushed or reset; a fresh stream needs a new
// Pipeline.
//
// # Resampling
//
// Resampling is plain linear interpolation without an anti-aliasing filter,
// chosen for latency. The fractional phase and the last sample are carried
// across buffers, so feeding one long buffer or the same samples split into
// pieces gives the same output, apart from the last output slot before each
// split, which is interpolated against the edge sample. Only the fractional
// part of the cursor is carried: when downsampling, a buffer whose length is
// not a multiple of the decimation step restarts the next buffer at its first
// sample rather than part way into it.
//
// # Quantization
//
// Samples are clamped to [-1, 1]; negative values scale by 32768, positive
// by 32767, then round to the nearest integer.
//
// # Sources and decoders
//
// Source and Decoder describe decoded audio files; the formats/ packages
// provide decoders and Drain feeds a Source through a Pipeline in
// capture-sized chunks:
//
//	src, _ := wav.Decoder{}.Decode(f)
//	n, err := audio.Drain(src, p, audio.DefaultChunkFrames, sink)
//
// # Concurrency
//
// A Pipeline, Resampler or Framer belongs to one goroutine at a time. Run one
// Pipeline per audio session; separate Pipelines share nothing.
package audio
