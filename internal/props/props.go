// SPDX-License-Identifier: GPL-3.0-or-later

// Package props implements the triple-buffered property-update plumbing of
// spec §4.10: control threads mutate an entity's user-facing fields and
// clear a props_clean flag; the mixer, at mix entry, copies clean entities
// into a pooled record and atomically swaps it into a pending slot, later
// consuming it by exchange-with-nil and returning the record to a freelist.
// Grounded on the rcu-style handoff described in spec §5 and the teacher's
// preference for lock-free atomic state handoff
// (_teacher_ref/audio_chip.go's atomic.Pointer hot-swap of the active
// waveform/register snapshot), generalized here to a generic payload type.
package props

import "sync/atomic"

// Pool is a per-context lock-free freelist of Box[T] records, avoiding
// allocation on the mixer's hot path (spec §5: "it never allocates during
// the hot path").
type Pool[T any] struct {
	free atomic.Pointer[node[T]]
}

type node[T any] struct {
	box  *Box[T]
	next *node[T]
}

// Box is one pooled props record: a payload slot. While it sits on the
// Pool's stack, its free-list link is held by a separate node.
type Box[T any] struct {
	Value T
}

// Get pops a free record from the pool, allocating a new one if the pool
// is empty (allocation only ever happens off the mixer's hot path, e.g.
// the first few mix periods after entities are created).
func (p *Pool[T]) Get() *Box[T] {
	for {
		head := p.free.Load()
		if head == nil {
			return &Box[T]{}
		}
		if p.free.CompareAndSwap(head, head.next) {
			return head.box
		}
	}
}

// Put pushes a record back onto the free list.
func (p *Pool[T]) Put(b *Box[T]) {
	n := &node[T]{box: b}
	for {
		head := p.free.Load()
		n.next = head
		if p.free.CompareAndSwap(head, n) {
			return
		}
	}
}

// Slot is the per-entity atomic handoff point between "pending" (written
// by the mixer from a clean snapshot) and "consumed" (read and cleared by
// the mixer itself, per spec §4.10's swap-then-exchange-with-null
// protocol).
type Slot[T any] struct {
	pending atomic.Pointer[Box[T]]
	clean   atomic.Bool
}

// MarkDirty clears the props_clean flag; called by a control thread under
// the entity's mutex after mutating user-facing fields, without
// publishing.
func (s *Slot[T]) MarkDirty() {
	s.clean.Store(false)
}

// IsClean reports whether the entity has no pending mutation to publish.
func (s *Slot[T]) IsClean() bool {
	return s.clean.Load()
}

// Publish installs a freshly-copied snapshot into the pending slot and
// sets props_clean, called by the mixer at mix entry for any entity whose
// flag was not already clean.
func (s *Slot[T]) Publish(b *Box[T]) {
	s.pending.Store(b)
	s.clean.Store(true)
}

// Consume atomically takes the pending record (if any), leaving the slot
// empty, for the mixer to copy into voice scratch state.
func (s *Slot[T]) Consume() *Box[T] {
	return s.pending.Swap(nil)
}
