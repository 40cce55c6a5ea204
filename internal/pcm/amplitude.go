package pcm

import "math"

// Amplitude reduces one frame of samples to a single normalized loudness
// value: RMS energy over the frame, normalized by the int16 range and scaled
// by 2 for visibility, clamped to [0, 1]. Clients depend on this exact
// formula, so it must not be "improved" into a calibrated loudness model.
//
// An empty frame produces no value (ok is false); silence that decodes to
// zero samples simply yields no update for that tick.
func Amplitude(samples []int16) (value float64, ok bool) {
	if len(samples) == 0 {
		return 0, false
	}

	var energy float64
	for _, s := range samples {
		energy += float64(s) * float64(s)
	}

	rms := math.Sqrt(energy / float64(len(samples)))
	value = rms / 32768.0 * 2
	if value > 1.0 {
		value = 1.0
	}
	return value, true
}
