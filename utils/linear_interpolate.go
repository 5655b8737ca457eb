// SPDX-License-Identifier: EPL-2.0

package utils

// LinearInterpolate returns the point at fraction f between a and b.
// f is expected in [0, 1]; values outside extrapolate along the same line.
func LinearInterpolate(a, b float32, f float64) float32 {
	return a + (b-a)*float32(f)
}
