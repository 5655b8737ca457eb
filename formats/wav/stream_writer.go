// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/pcmframe/audio"
)

const headerSize = 44

// WriteFrames writes frames as one mono 16-bit WAV to w. The data size has to
// be known up front, so all frames are passed at once; w need not seek, which
// makes it usable for pipes and stdout.
func WriteFrames(w io.Writer, sampleRate int, frames []audio.Frame) error {
	dataSize := 0
	for _, f := range frames {
		dataSize += len(f.Payload)
	}

	if err := writeHeader(w, sampleRate, uint32(dataSize)); err != nil {
		return err
	}

	for _, f := range frames {
		if _, err := w.Write(f.Payload); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
	}

	return nil
}

func writeHeader(w io.Writer, sampleRate int, dataSize uint32) error {
	const (
		channels      = 1
		bitsPerSample = 16
		blockAlign    = channels * bitsPerSample / 8
	)

	header := make([]byte, headerSize)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], channels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate)*blockAlign)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing wav header: %w", err)
	}

	return nil
}
