// SPDX-License-Identifier: GPL-3.0-or-later

// Package effect implements the EffectSlot data model and the tagged-union
// effect states of spec §4.8: reverb/echo/chorus/compressor/eq/distortion/
// flanger/autowah/pitch-shift/freq-shift/ring-mod/dedicated/null, each
// satisfying a pure process(input, output) contract, plus cycle-checked
// target chaining (spec §4.10's "walk target pointers up to N steps").
// The Schroeder-reverb/comb+allpass stage design is carried directly from
// the teacher's applyReverb (_teacher_ref/audio_chip.go), generalized from
// a single hard-wired reverb into the slot's swappable effect-state union.
package effect

import "github.com/nyxfield/sonance/internal/alerr"

// Type enumerates the effect kinds a slot's state object can hold.
type Type int

const (
	Null Type = iota
	Reverb
	Echo
	Chorus
	Compressor
	EQ
	Distortion
	Flanger
	Autowah
	PitchShifter
	FrequencyShifter
	RingModulator
	Dedicated
)

// State is the pure-function effect contract: process reads frameCount
// samples from input and writes frameCount samples to output, as a
// function of its parameter props and internal time-varying state only
// (spec §4.8 "Effect state contract").
type State interface {
	Type() Type
	Process(input, output []float32)
	// DeviceUpdate is called once when attached to a device (for
	// per-rate table builds) and again on sample-rate change.
	DeviceUpdate(sampleRate int)
}

// Slot is the mixer's EffectSlot (spec §3 "Effect slot"): input gain,
// send-auto flag, an optional target slot forming the routing chain, the
// current effect state, a props-clean flag, a ref count, and a stable id.
type Slot struct {
	ID int

	InputGain float32
	SendAuto  bool
	Target    *Slot

	state State

	propsClean bool
	refCount   int32
}

// NewSlot creates a slot holding the null effect (silence), the default
// state before a type is ever set.
func NewSlot(id int) *Slot {
	return &Slot{ID: id, InputGain: 1.0, state: nullState{}}
}

// State returns the slot's current effect state.
func (s *Slot) State() State {
	return s.state
}

// SetTarget installs a target slot, validating the acyclic invariant
// (spec E1): walk `target` pointers up to N = numSlots steps; if `s` is
// reached, reject.
func (s *Slot) SetTarget(target *Slot, numSlots int) error {
	cur := target
	for i := 0; i < numSlots && cur != nil; i++ {
		if cur == s {
			return alerr.New(alerr.InvalidOperation, "effect.SetTarget", "target chain would create a cycle")
		}
		cur = cur.Target
	}
	s.Target = target
	return nil
}

// SetState replaces the slot's effect state. Per invariant E3, the
// outgoing state is only released (here: simply dropped, since Go is
// garbage collected — this call boundary exists so the mixer chooses
// when to observe the swap) after the caller has confirmed the mixer
// observed the new one; callers coordinate that via the normal props
// publish/consume path in internal/props.
func (s *Slot) SetState(st State) {
	s.state = st
}

// Retain/Release implement the slot's reference count (spec E2: "an
// effect slot with non-zero ref count cannot be deleted").
func (s *Slot) Retain() {
	s.refCount++
}

func (s *Slot) Release() int32 {
	s.refCount--
	return s.refCount
}

func (s *Slot) CanDelete() bool {
	return s.refCount == 0
}

func (s *Slot) MarkDirty() {
	s.propsClean = false
}

func (s *Slot) MarkClean() {
	s.propsClean = true
}

func (s *Slot) IsClean() bool {
	return s.propsClean
}

type nullState struct{}

func (nullState) Type() Type                       { return Null }
func (nullState) Process(input, output []float32)  {}
func (nullState) DeviceUpdate(sampleRate int)       {}
