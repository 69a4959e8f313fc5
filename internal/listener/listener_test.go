// SPDX-License-Identifier: GPL-3.0-or-later
package listener

import "testing"

func TestDistanceGainInverseAtReferenceIsUnity(t *testing.T) {
	g := DistanceGain(Inverse, 10, 10, 100, 1.0)
	if g < 0.99 || g > 1.01 {
		t.Fatalf("expected unity gain at reference distance, got %v", g)
	}
}

func TestDistanceGainLinearAtMaxIsZero(t *testing.T) {
	g := DistanceGain(Linear, 100, 10, 100, 1.0)
	if g < -0.01 || g > 0.01 {
		t.Fatalf("expected zero gain at max distance for linear model, got %v", g)
	}
}

func TestDistanceGainExponentDecreasesWithDistance(t *testing.T) {
	near := DistanceGain(Exponent, 10, 10, 100, 1.0)
	far := DistanceGain(Exponent, 50, 10, 100, 1.0)
	if far >= near {
		t.Fatalf("expected farther distance to attenuate more: near=%v far=%v", near, far)
	}
}

func TestDistanceGainNoneIsAlwaysUnity(t *testing.T) {
	if g := DistanceGain(None, 1000, 1, 10, 1.0); g != 1.0 {
		t.Fatalf("expected unity gain for None model, got %v", g)
	}
}

func TestDistanceGainClampedVariantsClampDistance(t *testing.T) {
	beyond := DistanceGain(InverseClamped, 1000, 10, 100, 1.0)
	atMax := DistanceGain(InverseClamped, 100, 10, 100, 1.0)
	if beyond != atMax {
		t.Fatalf("expected clamped model to treat beyond-max distance same as max: %v vs %v", beyond, atMax)
	}
}

func TestConeGainInsideInnerIsUnity(t *testing.T) {
	if g := ConeGain(0, 60, 120, 0.2); g != 1.0 {
		t.Fatalf("expected unity gain inside inner cone, got %v", g)
	}
}

func TestConeGainOutsideOuterIsOuterGain(t *testing.T) {
	if g := ConeGain(90, 60, 120, 0.2); g != 0.2 {
		t.Fatalf("expected outer-cone gain outside outer angle, got %v", g)
	}
}

func TestConeGainBetweenAnglesInterpolates(t *testing.T) {
	g := ConeGain(45, 60, 120, 0.0)
	if g <= 0 || g >= 1 {
		t.Fatalf("expected interpolated gain strictly between 0 and 1, got %v", g)
	}
}

func TestDopplerPitchApproachingRaisesPitch(t *testing.T) {
	globals := Globals{DopplerFactor: 1.0, SpeedOfSound: 343.3}
	listenerVel := [3]float32{0, 0, 0}
	sourceVel := [3]float32{-10, 0, 0} // moving toward listener along -x while unit points +x
	unit := [3]float32{1, 0, 0}
	p := DopplerPitch(1.0, globals, listenerVel, sourceVel, unit)
	if p <= 1.0 {
		t.Fatalf("expected pitch raised when source approaches, got %v", p)
	}
}

func TestDopplerPitchZeroSpeedOfSoundIsNoOp(t *testing.T) {
	globals := Globals{DopplerFactor: 1.0, SpeedOfSound: 0}
	p := DopplerPitch(1.0, globals, [3]float32{}, [3]float32{}, [3]float32{1, 0, 0})
	if p != 1.0 {
		t.Fatalf("expected no-op doppler when speed of sound is zero, got %v", p)
	}
}

func TestUnitVectorNormalizes(t *testing.T) {
	u := UnitVector(0, 0, 0, 3, 4, 0)
	length := u[0]*u[0] + u[1]*u[1] + u[2]*u[2]
	if length < 0.99 || length > 1.01 {
		t.Fatalf("expected unit-length vector, got squared length %v", length)
	}
}
