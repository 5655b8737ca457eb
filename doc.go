// SPDX-License-Identifier: EPL-2.0

// Package pcmframe converts audio into fixed-duration frames of mono 16-bit
// little-endian PCM, ready to stream to a speech service.
//
// The streaming core lives in the audio subpackage: a Pipeline takes the
// planar float buffers a capture callback delivers, downmixes them to mono,
// resamples them to the target rate and emits a Frame every time a full
// frame of samples is available. The defaults are 16 kHz and 30 ms, so a
// frame holds 480 samples in 960 bytes.
//
// # Supported Formats
//
// For offline use, audio files are decoded into an audio.Source and drained
// through a Pipeline in capture-sized blocks:
//   - WAV (integer PCM) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF via formats/aiff
//   - FLAC via formats/flac
//
// # Quick Start
//
//	src, err := pcmframe.Open(pcmframe.DefaultRegistry(), "speech.mp3")
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//
//	frames, err := pcmframe.CollectFrames(src, audio.DefaultConfig(), audio.DefaultChunkFrames)
//
// # Live capture
//
//	p, _ := audio.New(audio.DefaultConfig())
//	// per capture callback
//	p.ProcessTo(buf, deviceRate, sink)
//
// Frames can be written to WAV with wav.FrameWriter or streamed over a
// WebSocket with the uplink client in cmd/pcmframe.
package pcmframe
