// SPDX-License-Identifier: GPL-3.0-or-later

// Package resample converts a voice's instantaneous sample rate to the
// device's rate (spec §4.2), grounded on openal-soft's common/bsinc_tables.cpp
// for bsinc kernel generation and on the teacher's phase-accumulator idiom
// (_teacher_ref/audio_chip.go's fixed-rate phaseInc stepping, generalized
// here to an arbitrary fractional step).
package resample

import "math"

// FractionBits is the fixed-point fractional position width (spec: >= 12).
const FractionBits = 12

// FractionOne is 1.0 in FractionBits fixed point.
const FractionOne = 1 << FractionBits

// FractionMask masks the fractional part of a fixed-point position.
const FractionMask = FractionOne - 1

// MaxStepMultiplier bounds the pitch-adjusted step to a sane multiple of the device
// rate, per spec §4.2 ("clamped to a sane max (e.g., 8x sample rate)").
const MaxStepMultiplier = 8

// Kind selects the resampling kernel.
type Kind int

const (
	Point Kind = iota
	Linear
	Cubic
	BSinc12
	BSinc24
	FastBSinc12
	FastBSinc24
)

// Step computes the fixed-point step for a given source/destination rate
// ratio and pitch multiplier, clamped per spec §4.2.
func Step(srcRate, dstRate, pitch float64) uint32 {
	if pitch <= 0 {
		pitch = 1
	}
	ratio := (srcRate / dstRate) * pitch
	step := ratio * FractionOne
	max := float64(MaxStepMultiplier * FractionOne)
	if step > max {
		step = max
	}
	if step < 1 {
		step = 1
	}
	return uint32(step)
}

// History returns how many past input samples a kernel needs before the
// current position (its "prefetch"/history requirement).
func (k Kind) History() int {
	switch k {
	case Point:
		return 0
	case Linear:
		return 1
	case Cubic:
		return 2
	case BSinc12, FastBSinc12:
		return 6
	case BSinc24, FastBSinc24:
		return 12
	default:
		return 1
	}
}

// Lookahead returns how many future input samples a kernel needs beyond the
// current position.
func (k Kind) Lookahead() int {
	switch k {
	case Point:
		return 0
	case Linear:
		return 1
	case Cubic:
		return 2
	case BSinc12, FastBSinc12:
		return 6
	case BSinc24, FastBSinc24:
		return 12
	default:
		return 1
	}
}

// Resample produces `outCount` output samples from `in`, where in[history]
// is the sample at integer position 0 (i.e. `history` samples of left
// context precede the nominal start, per Kind.History()). posFrac is the
// starting fractional position (0..FractionOne-1); step is the fixed-point
// per-output-sample advance. Returns the output buffer, the updated
// fractional position, and the number of whole input samples consumed.
func Resample(kind Kind, in []float32, history int, posFrac uint32, step uint32, outCount int) (out []float32, newPosFrac uint32, consumed int) {
	out = make([]float32, outCount)
	pos := 0
	frac := posFrac

	switch kind {
	case Point:
		for i := 0; i < outCount; i++ {
			out[i] = in[history+pos]
			frac += step
			pos += int(frac >> FractionBits)
			frac &= FractionMask
		}
	case Linear:
		for i := 0; i < outCount; i++ {
			i0 := in[history+pos]
			i1 := in[history+pos+1]
			mu := float32(frac) / float32(FractionOne)
			out[i] = i0 + (i1-i0)*mu
			frac += step
			pos += int(frac >> FractionBits)
			frac &= FractionMask
		}
	case Cubic:
		for i := 0; i < outCount; i++ {
			mu := float32(frac) / float32(FractionOne)
			out[i] = cubicCatmullRom(
				in[history+pos-1], in[history+pos], in[history+pos+1], in[history+pos+2], mu)
			frac += step
			pos += int(frac >> FractionBits)
			frac &= FractionMask
		}
	case BSinc12, FastBSinc12, BSinc24, FastBSinc24:
		tap := kind.History() + kind.Lookahead()
		scale := scaleIndexForStep(step)
		for i := 0; i < outCount; i++ {
			phase := int((frac * phaseCount) >> FractionBits)
			kernel := bsincKernel(kind, scale, phase)
			var acc float32
			base := history + pos - kind.History()
			for t := 0; t < tap; t++ {
				acc += in[base+t] * kernel[t]
			}
			out[i] = acc
			frac += step
			pos += int(frac >> FractionBits)
			frac &= FractionMask
		}
	}
	return out, frac, pos
}

func cubicCatmullRom(p0, p1, p2, p3, mu float32) float32 {
	a0 := -0.5*p0 + 1.5*p1 - 1.5*p2 + 0.5*p3
	a1 := p0 - 2.5*p1 + 2*p2 - 0.5*p3
	a2 := -0.5*p0 + 0.5*p2
	a3 := p1
	mu2 := mu * mu
	return a0*mu*mu2 + a1*mu2 + a2*mu + a3
}

// scaleIndexForStep widens the bsinc kernel for downsampling (step > 1.0),
// per spec §4.2 "for downsampling, a scale index that widens the kernel".
func scaleIndexForStep(step uint32) int {
	ratio := float64(step) / float64(FractionOne)
	if ratio <= 1.0 {
		return 0
	}
	idx := int(math.Log2(ratio))
	if idx > bsincMaxScale {
		idx = bsincMaxScale
	}
	return idx
}
