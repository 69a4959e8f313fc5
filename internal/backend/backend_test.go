// SPDX-License-Identifier: GPL-3.0-or-later
package backend

import (
	"errors"
	"testing"

	"github.com/nyxfield/sonance/internal/codec"
	"github.com/nyxfield/sonance/internal/engine"
	"github.com/nyxfield/sonance/internal/event"
	"github.com/nyxfield/sonance/internal/source"
)

func newPlayingContext(t *testing.T) *engine.Context {
	t.Helper()
	ctx := engine.NewContext(4, 16)
	srcIDs := ctx.GenSources(2)
	bufIDs := ctx.GenBuffers(1)
	data := make([]byte, 4096*2)
	format := codec.Format{Layout: codec.Mono, SampleType: codec.I16}
	if err := ctx.BufferData(bufIDs[0], format, 44100, data); err != nil {
		t.Fatalf("BufferData: %v", err)
	}
	for _, id := range srcIDs {
		if err := ctx.QueueBuffers(id, bufIDs); err != nil {
			t.Fatalf("QueueBuffers: %v", err)
		}
	}
	if err := ctx.SourcePlay(srcIDs); err != nil {
		t.Fatalf("SourcePlay: %v", err)
	}
	return ctx
}

func TestHandleDisconnectStopsEverySourceAndPostsEvent(t *testing.T) {
	ctx := newPlayingContext(t)

	HandleDisconnect(ctx, errors.New("device unplugged"))

	events := ctx.Events.Drain()
	found := false
	for _, e := range events {
		if e.Kind == event.Disconnected {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a Disconnected event to be posted")
	}

	for _, id := range ctx.AllSourceIDs() {
		st, err := ctx.SourceGetState(id)
		if err != nil {
			t.Fatalf("source %d should still exist after disconnect: %v", id, err)
		}
		if st != source.Stopped {
			t.Fatalf("source %d: expected Stopped after disconnect, got %v", id, st)
		}
	}
}

// TestHandleDisconnectStopsRemainingSourcesPastAnAlreadyStoppedOne
// guards against a batch helper that aborts the whole id list on the
// first "already stopped" error: with one source already stopped before
// disconnect, every other source must still end up Stopped.
func TestHandleDisconnectStopsRemainingSourcesPastAnAlreadyStoppedOne(t *testing.T) {
	ctx := newPlayingContext(t)
	ids := ctx.AllSourceIDs()
	if err := ctx.SourceStop(ids[:1]); err != nil {
		t.Fatalf("pre-stopping one source: %v", err)
	}

	HandleDisconnect(ctx, errors.New("device unplugged"))

	for _, id := range ids {
		st, err := ctx.SourceGetState(id)
		if err != nil {
			t.Fatalf("source %d should still exist after disconnect: %v", id, err)
		}
		if st != source.Stopped {
			t.Fatalf("source %d: expected Stopped after disconnect, got %v", id, st)
		}
	}
}

func TestHandleDisconnectOnContextWithNoSourcesDoesNotPanic(t *testing.T) {
	ctx := engine.NewContext(4, 16)
	HandleDisconnect(ctx, errors.New("no device"))
	if ctx.Events.Len() != 1 {
		t.Fatalf("expected exactly one posted event, got %d", ctx.Events.Len())
	}
}

func TestWrapDeviceErrorPassesThroughNil(t *testing.T) {
	if err := wrapDeviceError("op", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestWrapDeviceErrorWrapsNonNil(t *testing.T) {
	err := wrapDeviceError("OtoPlayer.Reset", errors.New("boom"))
	if err == nil {
		t.Fatal("expected a wrapped error")
	}
}
