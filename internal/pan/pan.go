// SPDX-License-Identifier: GPL-3.0-or-later

// Package pan maps a voice's direction and spread onto per-output-channel
// gains (spec §4.5): ambisonic B-format coefficients for the device's dry
// buffer, equal-power angle panning for non-ambisonic stereo sources (§D
// supplement, grounded on openal-soft's ALSource::StereoPan in
// OpenAL32/alSource.cpp), and HRTF impulse-response interpolation for
// headphone-mode devices.
package pan

import "math"

// MaxAmbiCoeffs bounds the first-order-3D B-format channel count (W, Y, Z,
// X order per spec glossary's "ACN order" note).
const MaxAmbiCoeffs = 4

// Normalization selects the ambisonic coefficient scaling convention.
type Normalization int

const (
	N3D Normalization = iota
	SN3D
)

// n3dScale holds the per-channel scale to go from N3D to SN3D normalization
// for first-order ACN ordering (W, Y, Z, X): W unscaled, first-order terms
// scaled by 1/sqrt(3).
var n3dScale = [MaxAmbiCoeffs]float32{1, 1 / float32(math.Sqrt(3)), 1 / float32(math.Sqrt(3)), 1 / float32(math.Sqrt(3))}

// AmbiCoeffs computes the MaxAmbiCoeffs B-format coefficients (ACN order:
// W, Y, Z, X) for a unit direction and angular spread in radians. Spread
// widens the directional lobe by blending toward the omnidirectional (W)
// coefficient, per spec §4.5.
func AmbiCoeffs(x, y, z, spread float32, norm Normalization) [MaxAmbiCoeffs]float32 {
	length := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if length > 1e-6 {
		x /= length
		y /= length
		z /= length
	} else {
		x, y, z = 0, 0, 0
	}

	const sqrt3 = 1.7320508

	var coeffs [MaxAmbiCoeffs]float32
	coeffs[0] = 1.0 // W
	coeffs[1] = float32(sqrt3) * y
	coeffs[2] = float32(sqrt3) * z
	coeffs[3] = float32(sqrt3) * x

	if spread > 0 {
		// Blend the directional lobe toward omni as spread widens; at
		// spread == pi the source is fully omnidirectional.
		omniBlend := spread / float32(math.Pi)
		if omniBlend > 1 {
			omniBlend = 1
		}
		for i := 1; i < MaxAmbiCoeffs; i++ {
			coeffs[i] *= 1 - omniBlend
		}
	}

	if norm == SN3D {
		for i := range coeffs {
			coeffs[i] *= n3dScale[i]
		}
	}
	return coeffs
}

// MixMatrixGains multiplies ambisonic coefficients by a scalar voice gain
// to produce the per-output-channel gain vector mixed into the device's dry
// buffer (spec §4.5 "mixing matrix").
func MixMatrixGains(coeffs [MaxAmbiCoeffs]float32, gain float32) [MaxAmbiCoeffs]float32 {
	var out [MaxAmbiCoeffs]float32
	for i, c := range coeffs {
		out[i] = c * gain
	}
	return out
}

// StereoPanGains computes equal-power left/right gains for a mono source
// panned between two stored stereo angles (radians, 0 = front, positive =
// counter-clockwise), the Go-idiomatic analogue of openal-soft's
// ALSource::StereoPan default [+30deg, -30deg] equal-power law.
func StereoPanGains(angleLeft, angleRight, sourceAngle float32) (left, right float32) {
	span := angleLeft - angleRight
	if span == 0 {
		return 0.70710678, 0.70710678
	}
	frac := (sourceAngle - angleRight) / span
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	theta := frac * float32(math.Pi/2)
	left = float32(math.Sin(float64(theta)))
	right = float32(math.Cos(float64(theta)))
	return left, right
}

// DefaultStereoPan returns openal-soft's default stereo-pan angles in
// radians: +30 degrees left, -30 degrees right.
func DefaultStereoPan() (left, right float32) {
	return float32(30 * math.Pi / 180), float32(-30 * math.Pi / 180)
}
