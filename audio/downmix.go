// SPDX-License-Identifier: EPL-2.0

package audio

// Downmix averages the channels of buf into a single mono sequence of
// buf.Len() samples, appended to dst[:0]. An empty channel set or an empty
// buffer yields an empty result. NaN samples count as 0.
func Downmix(dst []float32, buf Buffer) []float32 {
	dst = dst[:0]

	frames := buf.Len()
	if frames == 0 {
		return dst
	}

	if cap(dst) < frames {
		dst = make([]float32, frames)
	}
	dst = dst[:frames]

	channels := buf.Channels()

	// Fast paths need every channel at full length.
	full := true
	for _, ch := range buf {
		if len(ch) < frames {
			full = false
			break
		}
	}

	switch {
	case channels == 1:
		for i, v := range buf[0] {
			dst[i] = orZero(v)
		}
	case channels == 2 && full:
		l, r := buf[0], buf[1]
		for i := range frames {
			dst[i] = (orZero(l[i]) + orZero(r[i])) * 0.5
		}
	default:
		n := float32(channels)
		for i := range frames {
			sum := float32(0)
			for _, ch := range buf {
				if i < len(ch) {
					sum += orZero(ch[i])
				}
			}
			dst[i] = sum / n
		}
	}

	return dst
}

func orZero(v float32) float32 {
	if v != v {
		return 0
	}
	return v
}
