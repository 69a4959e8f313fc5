// SPDX-License-Identifier: GPL-3.0-or-later
package props

import "testing"

func TestSlotMarkDirtyClearsClean(t *testing.T) {
	var s Slot[int]
	s.Publish(&Box[int]{Value: 1})
	if !s.IsClean() {
		t.Fatal("expected clean after publish")
	}
	s.MarkDirty()
	if s.IsClean() {
		t.Fatal("expected dirty after MarkDirty")
	}
}

func TestSlotConsumeClearsPending(t *testing.T) {
	var s Slot[int]
	s.Publish(&Box[int]{Value: 42})
	b := s.Consume()
	if b == nil || b.Value != 42 {
		t.Fatalf("expected consumed box with value 42, got %+v", b)
	}
	if again := s.Consume(); again != nil {
		t.Fatal("expected second consume to return nil")
	}
}

func TestPoolGetReturnsFreshWhenEmpty(t *testing.T) {
	var p Pool[string]
	b := p.Get()
	if b == nil {
		t.Fatal("expected non-nil box from empty pool")
	}
}

func TestPoolPutGetRoundTrips(t *testing.T) {
	var p Pool[string]
	b := p.Get()
	b.Value = "hello"
	p.Put(b)

	got := p.Get()
	if got != b {
		t.Fatal("expected to get back the same record just freed")
	}
	if got.Value != "hello" {
		t.Fatalf("expected pooled record to retain its value, got %q", got.Value)
	}
}

func TestPoolMultipleRoundTripsMaintainLIFOOrder(t *testing.T) {
	var p Pool[int]
	a := p.Get()
	a.Value = 1
	b := p.Get()
	b.Value = 2

	p.Put(a)
	p.Put(b)

	first := p.Get()
	if first != b {
		t.Fatal("expected LIFO pop order (stack semantics)")
	}
	second := p.Get()
	if second != a {
		t.Fatal("expected second pop to return the earlier-pushed record")
	}
}
