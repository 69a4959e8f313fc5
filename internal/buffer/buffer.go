// SPDX-License-Identifier: GPL-3.0-or-later

// Package buffer implements the Buffer and buffer-list item data models of
// the spec §3 ("Buffer", "Buffer-list item"): decoded PCM storage, loop
// points, and the buffer-list-item reference-counting chain a source walks
// while playing. Grounded on the teacher's ownership idiom
// (_teacher_ref/audio_chip.go's ring-buffer lifetime handling, generalized
// from a fixed synth ring to arbitrary-length decoded buffers) and
// openal-soft's alBuffer.h layout for the field set.
package buffer

import (
	"sync/atomic"

	"github.com/nyxfield/sonance/internal/alerr"
	"github.com/nyxfield/sonance/internal/codec"
)

// Buffer holds fully decoded sample data plus the metadata needed to report
// user-visible offsets in the buffer's original (pre-decode) units.
type Buffer struct {
	ID int

	Format     codec.Format
	SampleRate int

	// Samples is planar: Samples[channel][frame].
	Samples []([]float32)

	FrameCount int
	LoopStart  int
	LoopEnd    int

	// OriginalFormat and OriginalBlockAlign let callers translate a decoded
	// frame offset back into the byte/sample units of the format the data
	// was uploaded in (spec §4.1 "original (pre-decode) format").
	OriginalFormat     codec.Format
	OriginalBlockAlign int

	refCount int32
}

// New validates and constructs a Buffer from fully decoded planar samples.
// It does not itself decode — decoding happens in internal/codec; New is
// the point where the buffer invariants of spec §3 are enforced.
func New(id int, format codec.Format, sampleRate int, samples [][]float32, frameCount int) (*Buffer, error) {
	if frameCount < 0 {
		return nil, alerr.New(alerr.InvalidValue, "buffer.New", "frame count must be non-negative")
	}
	if !validLayout(format.Layout) {
		return nil, alerr.New(alerr.InvalidEnum, "buffer.New", "unrecognized channel layout")
	}
	return &Buffer{
		ID:         id,
		Format:     format,
		SampleRate: sampleRate,
		Samples:    samples,
		FrameCount: frameCount,
		LoopEnd:    frameCount,
	}, nil
}

func validLayout(l codec.Layout) bool {
	switch l {
	case codec.Mono, codec.Stereo, codec.Rear, codec.Quad,
		codec.Layout51, codec.Layout61, codec.Layout71,
		codec.BFormat2D, codec.BFormat3D:
		return true
	default:
		return false
	}
}

// SetLoopPoints validates and installs loop-start/loop-end, spec invariant
// (3): 0 <= loop-start < loop-end <= sample count.
func (b *Buffer) SetLoopPoints(start, end int) error {
	if start < 0 || end > b.FrameCount || start >= end {
		return alerr.New(alerr.InvalidValue, "buffer.SetLoopPoints", "loop points out of range")
	}
	b.LoopStart, b.LoopEnd = start, end
	return nil
}

// Retain increments the buffer's reference count (spec: "a non-zero
// reference count forbids deletion").
func (b *Buffer) Retain() {
	atomic.AddInt32(&b.refCount, 1)
}

// Release decrements the reference count and reports the count after
// decrementing.
func (b *Buffer) Release() int32 {
	return atomic.AddInt32(&b.refCount, -1)
}

// RefCount reads the current reference count.
func (b *Buffer) RefCount() int32 {
	return atomic.LoadInt32(&b.refCount)
}

// CanDelete reports whether the buffer's reference count is zero, the
// precondition for a user-requested delete (spec §3 invariant 4).
func (b *Buffer) CanDelete() bool {
	return b.RefCount() == 0
}
