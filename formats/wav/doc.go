// SPDX-License-Identifier: EPL-2.0

// Package wav reads integer PCM WAV files into an audio.Source and writes
// pipeline frames back out as mono 16-bit WAV.
//
// Decoding and the seekable FrameWriter are built on github.com/go-audio/wav.
// WriteFrames writes the header itself so it can target a plain io.Writer.
//
//	f, _ := os.Create("frames.wav")
//	fw := wav.NewFrameWriter(f, 16000)
//	p.ProcessTo(buf, 48000, fw)
//	if err := fw.Close(); err != nil {
//	    return err
//	}
package wav
