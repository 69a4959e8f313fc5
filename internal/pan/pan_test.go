// SPDX-License-Identifier: GPL-3.0-or-later
package pan

import "testing"

func TestAmbiCoeffsOmniWIsAlwaysUnity(t *testing.T) {
	c := AmbiCoeffs(1, 0, 0, 0, N3D)
	if c[0] != 1.0 {
		t.Fatalf("expected W coefficient 1.0, got %v", c[0])
	}
}

func TestAmbiCoeffsFullSpreadZerosDirectional(t *testing.T) {
	c := AmbiCoeffs(1, 0, 0, 3.2, N3D) // > pi: fully omni
	for i := 1; i < MaxAmbiCoeffs; i++ {
		if c[i] < -1e-5 || c[i] > 1e-5 {
			t.Fatalf("expected directional coeff %d near zero at full spread, got %v", i, c[i])
		}
	}
}

func TestAmbiCoeffsSN3DScalesDownFromN3D(t *testing.T) {
	cN3D := AmbiCoeffs(0, 1, 0, 0, N3D)
	cSN3D := AmbiCoeffs(0, 1, 0, 0, SN3D)
	if cSN3D[1] >= cN3D[1] {
		t.Fatalf("expected SN3D first-order coeff smaller than N3D: %v vs %v", cSN3D[1], cN3D[1])
	}
}

func TestMixMatrixGainsScalesAllChannels(t *testing.T) {
	coeffs := AmbiCoeffs(0, 0, 1, 0, N3D)
	out := MixMatrixGains(coeffs, 0.5)
	for i := range coeffs {
		if diff := out[i] - coeffs[i]*0.5; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("channel %d not scaled correctly: got %v want %v", i, out[i], coeffs[i]*0.5)
		}
	}
}

func TestStereoPanGainsEqualPowerAtCenter(t *testing.T) {
	al, ar := DefaultStereoPan()
	l, r := StereoPanGains(al, ar, 0)
	sumSq := l*l + r*r
	if sumSq < 0.99 || sumSq > 1.01 {
		t.Fatalf("expected equal-power sum of squares ~1.0, got %v", sumSq)
	}
	if l < r-1e-3 || l > r+1e-3 {
		t.Fatalf("expected symmetric gains at center, got l=%v r=%v", l, r)
	}
}

func TestStereoPanGainsFullLeftAtLeftAngle(t *testing.T) {
	al, ar := DefaultStereoPan()
	l, r := StereoPanGains(al, ar, al)
	if l < 0.99 {
		t.Fatalf("expected full left gain at left angle, got %v", l)
	}
	if r > 0.01 {
		t.Fatalf("expected near-zero right gain at left angle, got %v", r)
	}
}

func TestHRTFStateRampsAndPromotesTarget(t *testing.T) {
	var h HRTFState
	from := HRTFIR{Coeffs: []float32{0, 0}, Delay: 0}
	to := HRTFIR{Coeffs: []float32{1, 1}, Delay: 2}
	h.CurLeft, h.CurRight = from, from
	h.SetTarget(to, to)

	var last HRTFIR
	for i := 0; i < HRTFCount; i++ {
		last, _ = h.Step()
	}
	if last.Coeffs[0] < 0.9 {
		t.Fatalf("expected ramp to approach target by end, got %v", last.Coeffs[0])
	}
	if h.CurLeft.Delay != 2 {
		t.Fatalf("expected current IR promoted to target delay after ramp, got %d", h.CurLeft.Delay)
	}
}

func TestApplyIRIdentityKernel(t *testing.T) {
	in := []float32{1, 2, 3, 4}
	dst := make([]float32, len(in))
	ir := HRTFIR{Coeffs: []float32{1}, Delay: 0}
	ApplyIR(dst, in, nil, ir)
	for i := range in {
		if dst[i] != in[i] {
			t.Fatalf("identity kernel should pass through at %d: got %v want %v", i, dst[i], in[i])
		}
	}
}
