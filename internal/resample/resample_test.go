// SPDX-License-Identifier: GPL-3.0-or-later
package resample

import "testing"

func TestStepUnityRatio(t *testing.T) {
	s := Step(44100, 44100, 1.0)
	if s != FractionOne {
		t.Fatalf("unity ratio should give step==FractionOne, got %d", s)
	}
}

func TestStepClampedToMax(t *testing.T) {
	s := Step(44100*100, 44100, 1.0)
	if s != MaxStepMultiplier*FractionOne {
		t.Fatalf("expected clamp to %d, got %d", MaxStepMultiplier*FractionOne, s)
	}
}

func TestStepZeroOrNegativePitchTreatedAsUnityPitch(t *testing.T) {
	s1 := Step(44100, 44100, 0)
	s2 := Step(44100, 44100, 1.0)
	if s1 != s2 {
		t.Fatalf("pitch<=0 should clamp to pitch=1 behavior, got %d vs %d", s1, s2)
	}
}

func TestResamplePointPassesThroughAtUnity(t *testing.T) {
	in := []float32{0, 1, 2, 3, 4, 5, 6, 7}
	out, _, consumed := Resample(Point, in, 0, 0, FractionOne, 4)
	want := []float32{0, 1, 2, 3}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("point resample mismatch at %d: got %v want %v", i, out[i], want[i])
		}
	}
	if consumed != 4 {
		t.Fatalf("expected to consume 4 samples, got %d", consumed)
	}
}

func TestResampleLinearInterpolatesMidpoint(t *testing.T) {
	in := []float32{0, 10}
	// posFrac = FractionOne/2 places the single output sample halfway
	// between in[0] and in[1], so linear interpolation gives the midpoint.
	out, _, _ := Resample(Linear, in, 0, FractionOne/2, FractionOne, 1)
	if out[0] < 4.9 || out[0] > 5.1 {
		t.Fatalf("expected ~5.0 at midpoint, got %v", out[0])
	}
}

func TestBSincKernelNormalizedAndStable(t *testing.T) {
	k1 := bsincKernel(BSinc12, 0, 0)
	k2 := bsincKernel(BSinc12, 0, 0)
	if len(k1) != 12 {
		t.Fatalf("expected 12-tap kernel, got %d", len(k1))
	}
	for i := range k1 {
		if k1[i] != k2[i] {
			t.Fatalf("kernel generation should be memoized/stable at tap %d", i)
		}
	}
	var sum float32
	for _, v := range k1 {
		sum += v
	}
	if sum < 0.9 || sum > 1.1 {
		t.Fatalf("expected kernel taps to sum near 1.0 (DC-normalized), got %v", sum)
	}
}

func TestResampleBSincProducesFiniteOutput(t *testing.T) {
	in := make([]float32, 64)
	for i := range in {
		in[i] = float32(i % 5)
	}
	out, _, _ := Resample(BSinc12, in, BSinc12.History(), 0, FractionOne, 10)
	for i, v := range out {
		if v != v { // NaN check
			t.Fatalf("NaN output at %d", i)
		}
	}
}
