// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files into an audio.Source using
// github.com/jfreymuth/oggvorbis. Vorbis already decodes to float samples,
// so no scaling happens here.
package vorbis
