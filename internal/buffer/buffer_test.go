// SPDX-License-Identifier: GPL-3.0-or-later
package buffer

import (
	"testing"

	"github.com/nyxfield/sonance/internal/codec"
)

func monoFormat() codec.Format {
	return codec.Format{Layout: codec.Mono, SampleType: codec.F32}
}

func TestNewRejectsNegativeFrameCount(t *testing.T) {
	if _, err := New(1, monoFormat(), 44100, nil, -1); err == nil {
		t.Fatal("expected error for negative frame count")
	}
}

func TestSetLoopPointsValidatesRange(t *testing.T) {
	b, err := New(1, monoFormat(), 44100, [][]float32{make([]float32, 100)}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.SetLoopPoints(10, 5); err == nil {
		t.Fatal("expected error when loop-start >= loop-end")
	}
	if err := b.SetLoopPoints(0, 200); err == nil {
		t.Fatal("expected error when loop-end exceeds frame count")
	}
	if err := b.SetLoopPoints(10, 50); err != nil {
		t.Fatalf("expected valid loop points to succeed: %v", err)
	}
}

func TestRefCountGatesDeletion(t *testing.T) {
	b, _ := New(1, monoFormat(), 44100, nil, 0)
	if !b.CanDelete() {
		t.Fatal("fresh buffer with zero refcount should be deletable")
	}
	b.Retain()
	if b.CanDelete() {
		t.Fatal("buffer with non-zero refcount must not be deletable")
	}
	b.Release()
	if !b.CanDelete() {
		t.Fatal("buffer should be deletable again after release")
	}
}

func TestNewItemRejectsMismatchedLayers(t *testing.T) {
	a, _ := New(1, monoFormat(), 44100, nil, 10)
	stereoFmt := codec.Format{Layout: codec.Stereo, SampleType: codec.F32}
	b, _ := New(2, stereoFmt, 44100, nil, 10)
	if _, err := NewItem([]*Buffer{a, b}); err == nil {
		t.Fatal("expected error mixing layouts within one item")
	}
}

func TestNewItemRetainsAndReleaseDecrements(t *testing.T) {
	a, _ := New(1, monoFormat(), 44100, nil, 10)
	it, err := NewItem([]*Buffer{a})
	if err != nil {
		t.Fatal(err)
	}
	if a.RefCount() != 1 {
		t.Fatalf("expected refcount 1 after NewItem, got %d", a.RefCount())
	}
	it.Release()
	if a.RefCount() != 0 {
		t.Fatalf("expected refcount 0 after item release, got %d", a.RefCount())
	}
}

func TestItemIsZeroLength(t *testing.T) {
	a, _ := New(1, monoFormat(), 44100, nil, 0)
	it, _ := NewItem([]*Buffer{a})
	if !it.IsZeroLength() {
		t.Fatal("expected zero-frame buffer item to report zero length")
	}
}

func TestQueuePushPopOrdering(t *testing.T) {
	var q Queue
	a, _ := New(1, monoFormat(), 44100, nil, 10)
	b, _ := New(2, monoFormat(), 44100, nil, 10)
	itA, _ := NewItem([]*Buffer{a})
	itB, _ := NewItem([]*Buffer{b})
	q.Push(itA)
	q.Push(itB)

	if q.Len() != 2 {
		t.Fatalf("expected length 2, got %d", q.Len())
	}
	first := q.Pop()
	if first != itA {
		t.Fatal("expected oldest-first pop order")
	}
	second := q.Pop()
	if second != itB {
		t.Fatal("expected second pop to return itB")
	}
	if !q.Empty() {
		t.Fatal("expected queue empty after popping all items")
	}
}

func TestQueueClearReleasesAll(t *testing.T) {
	var q Queue
	a, _ := New(1, monoFormat(), 44100, nil, 10)
	it, _ := NewItem([]*Buffer{a})
	q.Push(it)
	q.Clear()
	if a.RefCount() != 0 {
		t.Fatalf("expected refcount released on clear, got %d", a.RefCount())
	}
	if !q.Empty() {
		t.Fatal("expected queue empty after clear")
	}
}
