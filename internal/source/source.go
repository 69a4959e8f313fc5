// SPDX-License-Identifier: GPL-3.0-or-later

// Package source implements the Source data model of spec §3 and its
// Initial/Playing/Paused/Stopped state machine of spec §4.7: the
// user-facing playing object holding pose, gain, filter, and send
// properties plus an ordered buffer-list-item queue. Grounded on the
// attribute list spec §3 gives directly and the teacher's enum-driven
// voice-parameter style (_teacher_ref/audio_chip.go's envelope/noise
// mode constants) for the Kind/SpatializeMode enums.
package source

import (
	"github.com/nyxfield/sonance/internal/alerr"
	"github.com/nyxfield/sonance/internal/buffer"
	"github.com/nyxfield/sonance/internal/listener"
)

// State is the source's playback state (spec §4.7).
type State int

const (
	Initial State = iota
	Playing
	Paused
	Stopped
)

// Kind distinguishes static (single pre-set buffer) from streaming
// (queue-buffers-populated) sources, per spec invariant I1.
type Kind int

const (
	Undetermined Kind = iota
	Static
	Streaming
)

// SpatializeMode controls whether a source is panned in 3D or played
// direct-channel.
type SpatializeMode int

const (
	SpatializeAuto SpatializeMode = iota
	SpatializeYes
	SpatializeNo
)

// SendTarget is one auxiliary send: a filter plus the destination effect
// slot id (0 = unset).
type SendTarget struct {
	Gain, GainHF, HFReference float32
	GainLF, LFReference       float32
	AutoApplyHF, AutoApplyLF  bool
	EffectSlotID              int
}

// DirectFilter is the source's direct-path filter (spec §3 "Direct
// filter").
type DirectFilter struct {
	Gain, GainHF, HFReference float32
	GainLF, LFReference       float32
	AutoApplyHF, AutoApplyLF  bool
}

const maxSends = 4

// Source is the full spec §3 Source entity.
type Source struct {
	ID int

	PositionX, PositionY, PositionZ float32
	VelocityX, VelocityY, VelocityZ float32
	DirectionX, DirectionY, DirectionZ float32
	OrientationUpX, OrientationUpY, OrientationUpZ float32
	HeadRelative bool

	DistanceModel listener.DistanceModel

	GainMaster, GainMin, GainMax       float32
	ConeOuterGain, ConeOuterGainHF     float32
	ConeInnerAngle, ConeOuterAngle     float32

	Pitch, Rolloff, ReferenceDistance, MaxDistance float32
	DopplerFactor, Radius                          float32

	StereoPanLeft, StereoPanRight float32
	MetersPerUnit                 float32

	Direct DirectFilter
	Sends  [maxSends]SendTarget

	ResamplerKind   int
	DirectChannels  bool
	Spatialize      SpatializeMode

	Queue     buffer.Queue
	Looping   bool
	Kind      Kind
	state     State

	OffsetValue   float64
	OffsetIsBytes bool
	OffsetIsFrames bool

	propsClean  bool
	voiceIndex  int // lazily validated hint, -1 if unknown
}

// New constructs a Source with spec-documented defaults: master gain 1,
// min gain 0 and max gain 1, cone fully open, unit reference/doppler
// factors, and openal-soft's default +/-30 degree stereo pan.
func New(id int) *Source {
	return &Source{
		ID:                id,
		GainMaster:        1.0,
		GainMax:           1.0,
		ConeOuterGain:     0.0,
		ConeOuterGainHF:   1.0,
		ConeInnerAngle:    360,
		ConeOuterAngle:    360,
		Pitch:             1.0,
		Rolloff:           1.0,
		ReferenceDistance: 1.0,
		MaxDistance:       1e9,
		DopplerFactor:     1.0,
		MetersPerUnit:     1.0,
		StereoPanLeft:     30 * 3.14159265 / 180,
		StereoPanRight:    -30 * 3.14159265 / 180,
		Direct:            DirectFilter{Gain: 1, GainHF: 1, GainLF: 1},
		voiceIndex:        -1,
	}
}

// State returns the source's current playback state.
func (s *Source) State() State {
	return s.state
}

// MarkDirty clears the props_clean flag (spec §4.10): called by control
// threads after mutating user-facing fields, without publishing.
func (s *Source) MarkDirty() {
	s.propsClean = false
}

func (s *Source) IsClean() bool {
	return s.propsClean
}

func (s *Source) MarkClean() {
	s.propsClean = true
}

// QueueBuffers appends an item to the source's queue in any playback
// state and marks the source Streaming; a Static source is rejected with
// InvalidOperation.
func (s *Source) QueueBuffers(it *buffer.Item) error {
	if s.Kind == Static {
		return alerr.New(alerr.InvalidOperation, "source.QueueBuffers", "cannot queue buffers onto a static source")
	}
	s.Queue.Push(it)
	s.Kind = Streaming
	return nil
}

// SetStaticBuffer replaces the queue with a single item, the AL_BUFFER
// single-buffer assignment path (spec invariant I1: "static iff the
// queue is a single item with origin alSourcei(AL_BUFFER)").
func (s *Source) SetStaticBuffer(it *buffer.Item) error {
	if s.state == Playing || s.state == Paused {
		return alerr.New(alerr.InvalidOperation, "source.SetStaticBuffer", "cannot change buffer while playing or paused")
	}
	s.Queue.Clear()
	if it != nil {
		s.Queue.Push(it)
		s.Kind = Static
	} else {
		s.Kind = Undetermined
	}
	return nil
}

// Unqueue pops and returns the head item. It does not check whether the
// item has finished playing, and neither does its caller
// engine.Context.UnqueueBuffers.
func (s *Source) Unqueue() (*buffer.Item, error) {
	if s.Kind == Static {
		return nil, alerr.New(alerr.InvalidOperation, "source.Unqueue", "cannot unqueue from a static source")
	}
	it := s.Queue.Pop()
	if it == nil {
		return nil, alerr.New(alerr.InvalidOperation, "source.Unqueue", "queue is empty")
	}
	return it, nil
}

// ProcessedCount reports how many queued items have fully played,
// honoring invariant I3 ("if looping, processed_count reports 0").
// Tracking of the actual processed boundary lives in the voice/engine
// mixing loop; this getter exists so source.go owns the invariant shape.
func (s *Source) ProcessedCount(rawProcessed int) int {
	if s.Looping {
		return 0
	}
	return rawProcessed
}
