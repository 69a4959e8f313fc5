// SPDX-License-Identifier: GPL-3.0-or-later

// Package filter implements the direct-form-II-transposed biquad (spec
// §4.3) and the allpass-preserving band splitter (spec §4.4), grounded
// directly on openal-soft's Alc/filters/biquad.{h,cpp} and splitter.cpp —
// the RBJ Audio EQ Cookbook formulas spec §4.3 defers to "source headers".
package filter

import "math"

// Type selects the biquad's frequency response shape.
type Type int

const (
	HighShelf Type = iota
	LowShelf
	Peaking
	LowPass
	HighPass
	BandPass
)

// Biquad is a transposed Direct Form II second-order IIR section.
type Biquad struct {
	z1, z2     float32
	b0, b1, b2 float32
	a1, a2     float32
}

// Clear resets the filter's delay elements without touching coefficients.
func (b *Biquad) Clear() { b.z1, b.z2 = 0, 0 }

// SetParams designs the filter for the given type, gain, normalized
// reference frequency (f/sampleRate), and reciprocal-Q, per the RBJ
// cookbook. gain is linear (not dB) and only used by shelf/peaking types.
func (b *Biquad) SetParams(typ Type, gain, f0norm, rcpQ float32) {
	w0 := float32(2*math.Pi) * f0norm
	sinW0 := float32(math.Sin(float64(w0)))
	cosW0 := float32(math.Cos(float64(w0)))
	alpha := sinW0 / 2.0 * rcpQ

	var a [3]float32
	var bb [3]float32
	a[0], bb[0] = 1, 1

	switch typ {
	case HighShelf:
		sqrtGainAlpha2 := 2.0 * sqrtF32(gain) * alpha
		bb[0] = gain * ((gain + 1) + (gain-1)*cosW0 + sqrtGainAlpha2)
		bb[1] = -2.0 * gain * ((gain - 1) + (gain+1)*cosW0)
		bb[2] = gain * ((gain + 1) + (gain-1)*cosW0 - sqrtGainAlpha2)
		a[0] = (gain + 1) - (gain-1)*cosW0 + sqrtGainAlpha2
		a[1] = 2.0 * ((gain - 1) - (gain+1)*cosW0)
		a[2] = (gain + 1) - (gain-1)*cosW0 - sqrtGainAlpha2
	case LowShelf:
		sqrtGainAlpha2 := 2.0 * sqrtF32(gain) * alpha
		bb[0] = gain * ((gain + 1) - (gain-1)*cosW0 + sqrtGainAlpha2)
		bb[1] = 2.0 * gain * ((gain - 1) - (gain+1)*cosW0)
		bb[2] = gain * ((gain + 1) - (gain-1)*cosW0 - sqrtGainAlpha2)
		a[0] = (gain + 1) + (gain-1)*cosW0 + sqrtGainAlpha2
		a[1] = -2.0 * ((gain - 1) + (gain+1)*cosW0)
		a[2] = (gain + 1) + (gain-1)*cosW0 - sqrtGainAlpha2
	case Peaking:
		g := sqrtF32(gain)
		bb[0] = 1 + alpha*g
		bb[1] = -2 * cosW0
		bb[2] = 1 - alpha*g
		a[0] = 1 + alpha/g
		a[1] = -2 * cosW0
		a[2] = 1 - alpha/g
	case LowPass:
		bb[0] = (1 - cosW0) / 2
		bb[1] = 1 - cosW0
		bb[2] = (1 - cosW0) / 2
		a[0] = 1 + alpha
		a[1] = -2 * cosW0
		a[2] = 1 - alpha
	case HighPass:
		bb[0] = (1 + cosW0) / 2
		bb[1] = -(1 + cosW0)
		bb[2] = (1 + cosW0) / 2
		a[0] = 1 + alpha
		a[1] = -2 * cosW0
		a[2] = 1 - alpha
	case BandPass:
		bb[0] = alpha
		bb[1] = 0
		bb[2] = -alpha
		a[0] = 1 + alpha
		a[1] = -2 * cosW0
		a[2] = 1 - alpha
	}

	b.a1 = a[1] / a[0]
	b.a2 = a[2] / a[0]
	b.b0 = bb[0] / a[0]
	b.b1 = bb[1] / a[0]
	b.b2 = bb[2] / a[0]
}

// CopyParamsFrom copies the designed coefficients (not the delay state)
// from another biquad, for sharing one design across L/R channel pairs.
func (b *Biquad) CopyParamsFrom(o *Biquad) {
	b.b0, b.b1, b.b2, b.a1, b.a2 = o.b0, o.b1, o.b2, o.a1, o.a2
}

// Process filters src into dst (may alias) using transposed Direct Form II.
func (b *Biquad) Process(dst, src []float32) {
	z1, z2 := b.z1, b.z2
	b0, b1, b2, a1, a2 := b.b0, b.b1, b.b2, b.a1, b.a2
	for i, in := range src {
		out := in*b0 + z1
		z1 = in*b1 - out*a1 + z2
		z2 = in*b2 - out*a2
		dst[i] = out
	}
	b.z1, b.z2 = z1, z2
}

// ProcessOne filters a single sample using externally carried state, for
// callers interleaving biquad processing with other per-sample work.
func (b *Biquad) ProcessOne(in float32, z1, z2 *float32) float32 {
	out := in*b.b0 + *z1
	*z1 = in*b.b1 - out*b.a1 + *z2
	*z2 = in*b.b2 - out*b.a2
	return out
}

// RcpQFromSlope computes 1/Q for shelving filters from gain and shelf slope
// (0 < slope <= 1), per openal-soft Alc/filters/biquad.h.
func RcpQFromSlope(gain, slope float32) float32 {
	return sqrtF32((gain+1.0/gain)*(1.0/slope-1.0) + 2.0)
}

// RcpQFromBandwidth computes 1/Q from normalized center frequency and
// bandwidth (octaves), per openal-soft Alc/filters/biquad.h.
func RcpQFromBandwidth(f0norm, bandwidth float32) float32 {
	w0 := float32(2*math.Pi) * f0norm
	return 2.0 * float32(math.Sinh(float64(float32(math.Ln2)/2.0*bandwidth*w0/sinF32(w0))))
}

func sqrtF32(v float32) float32 { return float32(math.Sqrt(float64(v))) }
func sinF32(v float32) float32  { return float32(math.Sin(float64(v))) }
