// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// QuantizeInt16 clamps x to [-1, 1] and maps it to signed 16-bit PCM.
// Negative values scale by 32768 and positive values by 32767, so both
// ends of the int16 range are reachable. The result is rounded half away
// from zero. NaN maps to 0.
func QuantizeInt16(x float32) int16 {
	s := float64(x)
	if math.IsNaN(s) {
		return 0
	}
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}

	if s < 0 {
		return int16(math.Round(s * 32768.0))
	}

	return int16(math.Round(s * 32767.0))
}

// DequantizeInt16 is the inverse scaling of QuantizeInt16.
func DequantizeInt16(v int16) float32 {
	if v < 0 {
		return float32(v) / 32768.0
	}

	return float32(v) / 32767.0
}
