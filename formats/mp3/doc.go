// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files into an audio.Source using
// github.com/hajimehoshi/go-mp3.
//
// The source is always stereo at the file's sample rate; audio.Drain
// downmixes and resamples it like any other capture.
package mp3
