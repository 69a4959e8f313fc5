// SPDX-License-Identifier: GPL-3.0-or-later

// Package listener implements the Listener data model and the per-voice
// distance/cone/doppler attenuation math of spec §4.9, grounded on the
// formulas spec §4.9 gives directly and cross-checked against
// openal-soft's distance-model naming convention (inverse/linear/exponent
// plus clamped variants).
package listener

import "math"

// DistanceModel selects the per-voice gain falloff curve.
type DistanceModel int

const (
	None DistanceModel = iota
	Inverse
	InverseClamped
	Linear
	LinearClamped
	Exponent
	ExponentClamped
)

// Listener holds the pose and globals a mix period snapshots once (spec
// §3 "Listener"): mutated by the control API, read-only to the mixer via
// a props snapshot taken once per mix period.
type Listener struct {
	PositionX, PositionY, PositionZ float32
	VelocityX, VelocityY, VelocityZ float32
	ForwardX, ForwardY, ForwardZ    float32
	UpX, UpY, UpZ                   float32
	Gain                            float32
	MetersPerUnit                   float32
}

// DopplerFactor and SpeedOfSound are context-global scalars (spec §3
// Context "doppler factor, speed of sound").
type Globals struct {
	DopplerFactor float32
	SpeedOfSound  float32
	DistanceModel DistanceModel
}

// DistanceGain computes the distance-attenuation multiplier for a source
// at distance d from the listener, per spec §4.9's four model formulas
// (plus their *_clamped variants, which clamp d to [ref, max] first).
func DistanceGain(model DistanceModel, d, ref, max, rolloff float32) float32 {
	switch model {
	case None:
		return 1.0
	case Inverse, InverseClamped:
		if model == InverseClamped {
			d = clamp(d, ref, max)
		}
		denom := ref + rolloff*(d-ref)
		if denom <= 0 {
			return 1.0
		}
		return ref / denom
	case Linear, LinearClamped:
		if model == LinearClamped {
			d = clamp(d, ref, max)
		}
		if max <= ref {
			return 1.0
		}
		g := 1 - rolloff*(d-ref)/(max-ref)
		if g < 0 {
			g = 0
		}
		return g
	case Exponent, ExponentClamped:
		if model == ExponentClamped {
			d = clamp(d, ref, max)
		}
		if ref <= 0 || d <= 0 {
			return 1.0
		}
		return float32(math.Pow(float64(d/ref), float64(-rolloff)))
	default:
		return 1.0
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ConeGain computes the cone-attenuation multiplier given the angle (in
// degrees) between the source's facing direction and the vector to the
// listener, the inner/outer cone angles, and the outer-cone gain (spec
// §4.9 "Cone attenuation").
func ConeGain(angle, innerAngle, outerAngle, outerGain float32) float32 {
	half := angle
	if half <= innerAngle/2 {
		return 1.0
	}
	if half >= outerAngle/2 {
		return outerGain
	}
	span := outerAngle/2 - innerAngle/2
	if span <= 0 {
		return outerGain
	}
	frac := (half - innerAngle/2) / span
	return 1.0 + frac*(outerGain-1.0)
}

// ConeAngleDeg returns the angle, in degrees, between a source's facing
// direction and the vector from the source to the listener — the input
// ConeGain expects (spec §4.9 "Cone attenuation"). A zero-length direction
// or target vector returns 0, which callers should treat as "no facing
// direction set" and skip cone attenuation entirely rather than trust a
// degenerate angle.
func ConeAngleDeg(direction, sourceToListener [3]float32) float32 {
	ld := float32(math.Sqrt(float64(dot(direction, direction))))
	lt := float32(math.Sqrt(float64(dot(sourceToListener, sourceToListener))))
	if ld < 1e-6 || lt < 1e-6 {
		return 0
	}
	cosAngle := dot(direction, sourceToListener) / (ld * lt)
	if cosAngle > 1 {
		cosAngle = 1
	} else if cosAngle < -1 {
		cosAngle = -1
	}
	return float32(math.Acos(float64(cosAngle))) * 180 / math.Pi
}

// DopplerPitch computes the doppler-shifted pitch multiplier, per spec
// §4.9: pitch x (c - v_listener.u) / (c - v_source.u), with u the unit
// vector from listener to source and c the speed of sound scaled by the
// doppler factor. Non-positive numerator/denominator clamp pitch to 0 or
// the maximum doppler velocity respectively, per spec.
func DopplerPitch(pitch float32, g Globals, listenerVel, sourceVel, unitToSource [3]float32) float32 {
	c := g.SpeedOfSound * g.DopplerFactor
	if c <= 0 {
		return pitch
	}
	const maxDopplerVelocity = 0.95 // fraction of c, avoids singularity at c

	vl := dot(listenerVel, unitToSource)
	vs := dot(sourceVel, unitToSource)

	num := c - vl
	den := c - vs

	if num <= 0 {
		return 0
	}
	if den <= c*(1-maxDopplerVelocity) {
		den = c * (1 - maxDopplerVelocity)
	}
	return pitch * (num / den)
}

func dot(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// UnitVector returns the normalized vector from `from` to `to`.
func UnitVector(fromX, fromY, fromZ, toX, toY, toZ float32) [3]float32 {
	dx, dy, dz := toX-fromX, toY-fromY, toZ-fromZ
	length := float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
	if length < 1e-6 {
		return [3]float32{0, 0, 0}
	}
	return [3]float32{dx / length, dy / length, dz / length}
}

func normalize3(v [3]float32) [3]float32 {
	length := float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if length < 1e-6 {
		return [3]float32{0, 0, 0}
	}
	return [3]float32{v[0] / length, v[1] / length, v[2] / length}
}

func cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Rotate expresses the world-space direction d in the listener's own
// (right, up, forward) frame, per spec §4.9's requirement that panning
// be computed relative to listener orientation rather than world axes.
// forward/up come straight from Listener.Forward*/Up* (need not be
// orthogonal or unit length); a degenerate forward or up falls back to
// the world axes unrotated. The returned vector uses this package's
// world-axis convention (x = right, y = up, z = -forward), matching
// pan.AmbiCoeffs's expectation that a source straight ahead has z < 0.
func Rotate(forward, up, d [3]float32) [3]float32 {
	fwd := normalize3(forward)
	if fwd == ([3]float32{}) {
		return d
	}
	right := normalize3(cross3(fwd, up))
	if right == ([3]float32{}) {
		return d
	}
	top := cross3(right, fwd)
	return [3]float32{dot(d, right), dot(d, top), -dot(d, fwd)}
}
