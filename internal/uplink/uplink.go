// SPDX-License-Identifier: EPL-2.0

// Package uplink streams PCM frames over a WebSocket.
//
// A connection opens with one JSON text message, the [Hello], describing the
// stream. Every following binary message is exactly one frame payload.
package uplink

import (
	"encoding/json"
	"errors"
)

var ErrPeerClosed = errors.New("uplink: connection closed by peer")

// Hello is the first message of a stream.
type Hello struct {
	SessionID  string `json:"session_id"`
	SampleRate int    `json:"sample_rate"`
	FrameMs    int    `json:"frame_ms"`
}

func parseHello(data []byte) (Hello, bool) {
	var h Hello
	if err := json.Unmarshal(data, &h); err != nil {
		return Hello{}, false
	}
	return h, true
}
