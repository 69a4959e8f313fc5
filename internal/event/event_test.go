// SPDX-License-Identifier: GPL-3.0-or-later
package event

import "testing"

func TestPushDrainPreservesOrder(t *testing.T) {
	r := NewRing(4)
	r.Push(Event{Kind: SourceStateChanged, SourceID: 1})
	r.Push(Event{Kind: SourceStateChanged, SourceID: 2})
	r.Push(Event{Kind: Disconnected})

	got := r.Drain()
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].SourceID != 1 || got[1].SourceID != 2 || got[2].Kind != Disconnected {
		t.Fatalf("unexpected order: %+v", got)
	}
	if r.Len() != 0 {
		t.Fatal("expected ring empty after drain")
	}
}

func TestPushOverwritesOldestWhenFull(t *testing.T) {
	r := NewRing(2)
	r.Push(Event{SourceID: 1})
	r.Push(Event{SourceID: 2})
	r.Push(Event{SourceID: 3}) // should overwrite SourceID 1

	got := r.Drain()
	if len(got) != 2 {
		t.Fatalf("expected capacity-bounded 2 events, got %d", len(got))
	}
	if got[0].SourceID != 2 || got[1].SourceID != 3 {
		t.Fatalf("expected oldest event dropped, got %+v", got)
	}
}

func TestDrainOnEmptyRingReturnsNil(t *testing.T) {
	r := NewRing(4)
	if got := r.Drain(); got != nil {
		t.Fatalf("expected nil drain on empty ring, got %+v", got)
	}
}
