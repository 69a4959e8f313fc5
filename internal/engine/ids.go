// SPDX-License-Identifier: GPL-3.0-or-later

// Package engine is the library's external facade (spec §6.1): it
// re-exports handle-style operations operating on 32-bit, 1-origin ids,
// composing internal/source, internal/buffer, internal/effect,
// internal/voice, internal/listener, internal/pan, internal/event, and
// internal/props into the Context/Device model of spec §3.
package engine

import "github.com/nyxfield/sonance/internal/alerr"

// idTable is a 1-origin handle allocator: ids are recycled from a
// freelist so repeated gen/delete cycles don't grow monotonically.
// Spec §3 describes the source list as "paged sublists with 64-wide
// free masks" for cache-friendly bulk scans; this map+freelist version
// is a deliberate simplification (documented in DESIGN.md) since the
// core correctness property — stable ids, O(1) lookup, recycled on
// delete — holds either way and a real paged-bitmask allocator adds
// complexity a software mixer's source counts (hundreds, not millions)
// don't need.
type idTable[T any] struct {
	entries map[uint32]T
	free    []uint32
	next    uint32
}

func newIDTable[T any]() *idTable[T] {
	return &idTable[T]{entries: make(map[uint32]T), next: 1}
}

func (t *idTable[T]) alloc(v T) uint32 {
	var id uint32
	if n := len(t.free); n > 0 {
		id = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		id = t.next
		t.next++
	}
	t.entries[id] = v
	return id
}

func (t *idTable[T]) get(id uint32) (T, bool) {
	v, ok := t.entries[id]
	return v, ok
}

func (t *idTable[T]) delete(id uint32) {
	delete(t.entries, id)
	t.free = append(t.free, id)
}

func (t *idTable[T]) mustGet(id uint32, op string) (T, error) {
	v, ok := t.entries[id]
	if !ok {
		var zero T
		return zero, alerr.New(alerr.InvalidName, op, "unknown handle id")
	}
	return v, nil
}
