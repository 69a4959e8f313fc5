// SPDX-License-Identifier: GPL-3.0-or-later
package effect

import "testing"

func TestSlotSetTargetRejectsSelfCycle(t *testing.T) {
	s := NewSlot(1)
	if err := s.SetTarget(s, 1); err == nil {
		t.Fatal("expected error routing a slot to itself")
	}
}

func TestSlotSetTargetRejectsIndirectCycle(t *testing.T) {
	a := NewSlot(1)
	b := NewSlot(2)
	c := NewSlot(3)
	if err := b.SetTarget(c, 3); err != nil {
		t.Fatal(err)
	}
	if err := c.SetTarget(a, 3); err != nil {
		t.Fatal(err)
	}
	if err := a.SetTarget(b, 3); err == nil {
		t.Fatal("expected error for a 3-cycle a->b->c->a")
	}
}

func TestSlotSetTargetAllowsAcyclicChain(t *testing.T) {
	a := NewSlot(1)
	b := NewSlot(2)
	if err := a.SetTarget(b, 2); err != nil {
		t.Fatalf("expected acyclic chain to succeed: %v", err)
	}
}

func TestSlotRefCountGatesDeletion(t *testing.T) {
	s := NewSlot(1)
	if !s.CanDelete() {
		t.Fatal("fresh slot should be deletable")
	}
	s.Retain()
	if s.CanDelete() {
		t.Fatal("slot with non-zero refcount must not be deletable")
	}
	s.Release()
	if !s.CanDelete() {
		t.Fatal("slot should be deletable again after release")
	}
}

func TestReverbProcessProducesFiniteOutput(t *testing.T) {
	r := NewReverb(ReverbParams{Density: 0.5, DecayTime: 0.5, Wet: 0.3}, 44100)
	in := make([]float32, 512)
	for i := range in {
		in[i] = float32(i%10) / 10
	}
	out := make([]float32, len(in))
	r.Process(in, out)
	for i, v := range out {
		if v != v {
			t.Fatalf("NaN at %d", i)
		}
	}
}

func TestEchoWetZeroIsDryPassthrough(t *testing.T) {
	e := NewEcho(EchoParams{DelaySeconds: 0.01, Feedback: 0, Wet: 0}, 44100)
	in := []float32{0.1, 0.2, 0.3}
	out := make([]float32, len(in))
	e.Process(in, out)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("expected dry passthrough at wet=0, got %v want %v", out[i], in[i])
		}
	}
}

func TestDistortionZeroDriveWetOneIsTanhIdentityNearZero(t *testing.T) {
	d := NewDistortion(DistortionParams{Drive: 0, Wet: 1}, 44100)
	in := []float32{0.001}
	out := make([]float32, 1)
	d.Process(in, out)
	if out[0] < 0 || out[0] > 0.01 {
		t.Fatalf("expected near-identity for tiny input, got %v", out[0])
	}
}

func TestRingModulatorZeroHzIsDCMultiply(t *testing.T) {
	r := NewRingModulator(RingModulatorParams{FrequencyHz: 0, Waveform: RingSine}, 44100)
	in := []float32{1, 1, 1}
	out := make([]float32, 3)
	r.Process(in, out)
	for i := range in {
		if out[i] != 0 { // sin(0) == 0
			t.Fatalf("expected zero output at 0Hz sine carrier, got %v", out[i])
		}
	}
}

func TestNullStateIsSilent(t *testing.T) {
	s := NewSlot(1)
	in := []float32{1, 2, 3}
	out := make([]float32, 3)
	s.State().Process(in, out)
	for _, v := range out {
		if v != 0 {
			t.Fatalf("expected null effect to produce silence, got %v", v)
		}
	}
}
