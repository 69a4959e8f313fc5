// SPDX-License-Identifier: GPL-3.0-or-later

// Package voice implements the mixer-private Voice of spec §3 and its
// one-update mixing kernel of spec §4.6: resample, direct/send filtering,
// panning, and gain-ramped accumulation into the device's dry and
// effect-slot input buffers. Buffers arrive to a voice already decoded
// (internal/codec runs at buffer-upload time, not per mix period — see
// DESIGN.md for the rationale), so the per-update "decode" step here is
// reading frames out of already-planar float storage and handling
// item/loop boundaries, not format conversion.
package voice

import (
	"sync/atomic"

	"github.com/nyxfield/sonance/internal/buffer"
	"github.com/nyxfield/sonance/internal/filter"
	"github.com/nyxfield/sonance/internal/pan"
	"github.com/nyxfield/sonance/internal/resample"
)

// MaxOutputChannels bounds the per-send/direct gain arrays (spec §3
// "MAX_OUTPUT_CHANNELS").
const MaxOutputChannels = 8

const maxSends = 4

// Flags are the voice's boolean mode bits (spec §3 "{static, fading,
// HRTF, HAS-NFC}").
type Flags struct {
	Static bool
	Fading bool
	HRTF   bool
	HasNFC bool
}

// Target is one mix destination's ramped gain state (direct, or one of
// the sends), keyed per input channel.
type Target struct {
	CurrentGain [MaxOutputChannels]float32
	TargetGain  [MaxOutputChannels]float32
	LowShelf    filter.Biquad
	HighShelf   filter.Biquad
	Splitter    filter.BandSplitter
}

// Voice is the mixer-private counterpart of a Source (spec §3 "Voice").
type Voice struct {
	SourceID int
	Playing  atomic.Bool

	Item          *buffer.Item
	LoopStartItem *buffer.Item

	Position     int
	PositionFrac uint32

	// History holds kernel left-context samples per input channel, sized
	// to the resampler's History() requirement (see New).
	History [][]float32

	Direct Target
	Sends  [maxSends]Target

	NFC [MaxOutputChannels]filter.Biquad

	HRTF        []pan.HRTFState // one per input channel, only used when Flags.HRTF
	HRTFHistory [][]float32     // one per input channel, left-context for ApplyIR

	NumChannels int
	SampleSize  int
	Step        uint32
	Resampler   resample.Kind

	Flags Flags

	mixCount atomic.Uint32
}

// New allocates a voice with scratch state sized for numChannels input
// channels and the given resampler kind's left-context history
// requirement (the right-context lookahead is satisfied out of each
// update's freshly gathered tail samples, not stored history — see
// Update's requiredInput calculation).
func New(numChannels int, kind resample.Kind) *Voice {
	hist := kind.History()
	history := make([][]float32, numChannels)
	for i := range history {
		history[i] = make([]float32, hist)
	}
	return &Voice{
		NumChannels: numChannels,
		Resampler:   kind,
		History:     history,
	}
}

// BeginMix and EndMix bracket the voice's mutation during one mix period
// (spec invariant V2/V3): the low bit of mixCount is set for the
// duration, and control threads may only read while it is clear.
func (v *Voice) BeginMix() {
	v.mixCount.Add(1)
}

func (v *Voice) EndMix() {
	v.mixCount.Add(1)
}

// MixCount returns the current parity counter, used by control threads
// to spin until a full mix period has elapsed (spec §5).
func (v *Voice) MixCount() uint32 {
	return v.mixCount.Load()
}

// Detach clears ownership (spec §4.7 "on any transition the mixer must
// also detach any owning voice").
func (v *Voice) Detach() {
	v.SourceID = 0
	v.Playing.Store(false)
}
