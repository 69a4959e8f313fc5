// SPDX-License-Identifier: GPL-3.0-or-later
package buffer

import "github.com/nyxfield/sonance/internal/alerr"

// Item is a node in a source's queue: an ordered, co-indexed list of N >= 1
// buffers ("layers") sharing sample rate, channel layout, and original
// type, plus a cached MaxSamples (the longest of those buffers) and the
// singly-linked Next pointer that makes the queue a list (spec §3
// "Buffer-list item").
type Item struct {
	Buffers    []*Buffer
	MaxSamples int
	Next       *Item
}

// NewItem validates that all buffers share rate/layout/original-format and
// retains each one, per the "every buffer pointer inside the item
// increments the referenced buffer's ref count" invariant.
func NewItem(buffers []*Buffer) (*Item, error) {
	if len(buffers) == 0 {
		return nil, alerr.New(alerr.InvalidValue, "buffer.NewItem", "item requires at least one buffer")
	}
	first := buffers[0]
	max := first.FrameCount
	for _, b := range buffers[1:] {
		if b.SampleRate != first.SampleRate || b.Format.Layout != first.Format.Layout ||
			b.OriginalFormat != first.OriginalFormat {
			return nil, alerr.New(alerr.InvalidValue, "buffer.NewItem",
				"all buffers in an item must share sample rate, layout, and original format")
		}
		if b.FrameCount > max {
			max = b.FrameCount
		}
	}
	for _, b := range buffers {
		b.Retain()
	}
	return &Item{Buffers: buffers, MaxSamples: max}, nil
}

// Release decrements the reference count of every buffer the item holds,
// called when the item is unqueued or its owning source is destroyed.
func (it *Item) Release() {
	for _, b := range it.Buffers {
		b.Release()
	}
}

// IsZeroLength reports whether every buffer in the item is empty, the
// condition spec §4.6 requires voices to skip over while walking the
// queue ("zero-length buffers in the queue are skipped").
func (it *Item) IsZeroLength() bool {
	return it.MaxSamples == 0
}
