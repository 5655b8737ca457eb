// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC files into an audio.Source using
// github.com/mewkiz/flac. Samples are scaled by the bit depth each frame
// declares.
package flac
