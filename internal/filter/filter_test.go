// SPDX-License-Identifier: GPL-3.0-or-later
package filter

import "testing"

func TestBiquadLowPassDCGainUnity(t *testing.T) {
	var b Biquad
	b.SetParams(LowPass, 1.0, 0.1, 0.7071)
	// A long DC input should settle near unity gain (LP passes DC).
	in := make([]float32, 2000)
	for i := range in {
		in[i] = 1.0
	}
	out := make([]float32, len(in))
	b.Process(out, in)
	last := out[len(out)-1]
	if last < 0.95 || last > 1.05 {
		t.Fatalf("expected DC settle near 1.0, got %v", last)
	}
}

func TestBiquadHighPassDCGainZero(t *testing.T) {
	var b Biquad
	b.SetParams(HighPass, 1.0, 0.1, 0.7071)
	in := make([]float32, 2000)
	for i := range in {
		in[i] = 1.0
	}
	out := make([]float32, len(in))
	b.Process(out, in)
	last := out[len(out)-1]
	if last < -0.05 || last > 0.05 {
		t.Fatalf("expected DC to settle near 0.0, got %v", last)
	}
}

func TestBiquadPeakingUnityGainIsIdentity(t *testing.T) {
	var b Biquad
	b.SetParams(Peaking, 1.0, 0.25, 0.7071)
	in := []float32{0.1, -0.2, 0.3, -0.4, 0.5}
	out := make([]float32, len(in))
	b.Process(out, in)
	for i := range in {
		if diff := out[i] - in[i]; diff > 1e-4 || diff < -1e-4 {
			t.Fatalf("unity-gain peaking filter should be near-identity at %d: %v vs %v", i, out[i], in[i])
		}
	}
}

func TestBandSplitterPreservesAllpass(t *testing.T) {
	in := make([]float32, 256)
	for i := range in {
		in[i] = float32(i%7) - 3
	}

	var split BandSplitter
	split.Init(0.1)
	hp := make([]float32, len(in))
	lp := make([]float32, len(in))
	split.Process(hp, lp, in)

	var ap BandSplitter
	ap.Init(0.1)
	allpass := ap.Allpass(in)

	for i := range in {
		sum := hp[i] + lp[i]
		diff := sum - allpass[i]
		if diff > 1e-3 || diff < -1e-3 {
			t.Fatalf("lp+hp should equal allpass at sample %d: got %v want %v", i, sum, allpass[i])
		}
	}
}

func TestRcpQFromSlopeAndBandwidthPositive(t *testing.T) {
	if v := RcpQFromSlope(2.0, 1.0); v <= 0 {
		t.Fatalf("expected positive rcpQ, got %v", v)
	}
	if v := RcpQFromBandwidth(0.1, 1.0); v <= 0 {
		t.Fatalf("expected positive rcpQ, got %v", v)
	}
}
