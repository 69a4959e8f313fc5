// SPDX-License-Identifier: GPL-3.0-or-later
package pan

import "math"

// HRTFCount is the number of samples an HRTF IR change ramps over to avoid
// clicks on direction change (spec §4.5's HRTF_COUNT).
const HRTFCount = 32

// MaxHRTFDelay bounds the interaural delay SyntheticIR will encode as tap
// position, and is the minimum left-context history ApplyIR's callers must
// keep per channel.
const MaxHRTFDelay = 32

// HRTFIR is one ear's head-related impulse response plus its integer
// sample delay.
type HRTFIR struct {
	Coeffs []float32
	Delay  int
}

// HRTFState holds the current and target IRs for both ears and tracks how
// far through the HRTFCount-sample ramp the mixer has progressed.
type HRTFState struct {
	CurLeft, CurRight       HRTFIR
	TargetLeft, TargetRight HRTFIR
	FadeStep                int
}

// SetTarget installs a new target IR pair; the mixer ramps toward it over
// the next HRTFCount output samples via Step.
func (h *HRTFState) SetTarget(left, right HRTFIR) {
	h.TargetLeft, h.TargetRight = left, right
	h.FadeStep = 0
}

// Step returns the blended (current, target)-interpolated IR coefficients
// for the sample at ramp position h.FadeStep, advances the ramp, and once
// it reaches HRTFCount promotes the target IR to current.
func (h *HRTFState) Step() (left, right HRTFIR) {
	mu := float32(h.FadeStep) / float32(HRTFCount)
	left = blendIR(h.CurLeft, h.TargetLeft, mu)
	right = blendIR(h.CurRight, h.TargetRight, mu)

	h.FadeStep++
	if h.FadeStep >= HRTFCount {
		h.CurLeft, h.CurRight = h.TargetLeft, h.TargetRight
		h.FadeStep = HRTFCount
	}
	return left, right
}

func blendIR(from, to HRTFIR, mu float32) HRTFIR {
	n := len(from.Coeffs)
	if len(to.Coeffs) > n {
		n = len(to.Coeffs)
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var a, b float32
		if i < len(from.Coeffs) {
			a = from.Coeffs[i]
		}
		if i < len(to.Coeffs) {
			b = to.Coeffs[i]
		}
		out[i] = a + (b-a)*mu
	}
	delay := from.Delay
	if mu >= 1 {
		delay = to.Delay
	}
	return HRTFIR{Coeffs: out, Delay: delay}
}

// SyntheticIR synthesizes a head-related impulse response pair for
// headphone-mode rendering from an azimuth (radians, 0 = front, positive =
// right) and elevation (radians, positive = up), modeling interaural time
// difference as a tap delay via Woodworth's spherical-head approximation
// and interaural level difference as a gain split. This is a geometric
// stand-in for a measured HRIR dataset, which this package does not ship;
// it captures the azimuth-dependent delay/level cues HRTF panning needs
// without per-listener head measurements.
func SyntheticIR(azimuth, elevation float32, sampleRate int) (left, right HRTFIR) {
	const headRadiusM = 0.0875
	const speedOfSound = 343.0

	az := float64(azimuth)
	cosEl := float32(math.Cos(float64(elevation)))

	itd := float32(headRadiusM/speedOfSound*(az+math.Sin(az))) * cosEl
	delaySamples := int(math.Abs(float64(itd))*float64(sampleRate) + 0.5)
	if delaySamples > MaxHRTFDelay {
		delaySamples = MaxHRTFDelay
	}

	ild := 0.3 * float32(math.Sin(az)) * cosEl
	leftGain := 1 - ild
	rightGain := 1 + ild
	if leftGain < 0.05 {
		leftGain = 0.05
	}
	if rightGain < 0.05 {
		rightGain = 0.05
	}

	if itd >= 0 {
		// Source to the right: right ear leads, left ear lags.
		left = monoTapIR(delaySamples, leftGain)
		right = monoTapIR(0, rightGain)
	} else {
		left = monoTapIR(0, leftGain)
		right = monoTapIR(delaySamples, rightGain)
	}
	return left, right
}

func monoTapIR(delay int, gain float32) HRTFIR {
	coeffs := make([]float32, delay+1)
	coeffs[delay] = gain
	return HRTFIR{Coeffs: coeffs, Delay: delay}
}

// ApplyIR convolves a mono input block with an ear's IR, writing into dst
// (which must be at least len(in) long); history must hold at least
// len(ir.Coeffs)-1 samples of left context preceding in[0].
func ApplyIR(dst, in []float32, history []float32, ir HRTFIR) {
	taps := len(ir.Coeffs)
	for i := range in {
		var acc float32
		for t := 0; t < taps; t++ {
			idx := i - t
			var s float32
			if idx >= 0 {
				s = in[idx]
			} else if len(history)+idx >= 0 {
				s = history[len(history)+idx]
			}
			acc += s * ir.Coeffs[t]
		}
		dst[i] = acc
	}
}
