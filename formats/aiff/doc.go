// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF files into an audio.Source using
// github.com/go-audio/aiff.
//
// Input that cannot seek is read into memory first, since the underlying
// decoder walks the chunk list. AIFF-C is not supported.
package aiff
