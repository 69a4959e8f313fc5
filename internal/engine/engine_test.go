// SPDX-License-Identifier: GPL-3.0-or-later
package engine

import (
	"testing"

	"github.com/nyxfield/sonance/internal/codec"
)

func monoBufferData(ctx *Context, frames int) uint32 {
	ids := ctx.GenBuffers(1)
	data := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		data[i*2] = 0
		data[i*2+1] = 0
	}
	ctx.BufferData(ids[0], codec.Format{Layout: codec.Mono, SampleType: codec.I16}, 44100, data)
	return ids[0]
}

func TestGenSourcesAssignsStableRecycledIDs(t *testing.T) {
	ctx := NewContext(4, 16)
	ids := ctx.GenSources(3)
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
	if err := ctx.DeleteSources([]uint32{ids[1]}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	again := ctx.GenSources(1)
	if again[0] != ids[1] {
		t.Fatalf("expected recycled id %d, got %d", ids[1], again[0])
	}
}

func TestDeleteSourcesRejectsUnknownID(t *testing.T) {
	ctx := NewContext(4, 16)
	if err := ctx.DeleteSources([]uint32{999}); err == nil {
		t.Fatal("expected error deleting unknown source id")
	}
}

func TestPlayPauseStopStateMachine(t *testing.T) {
	ctx := NewContext(4, 16)
	ids := ctx.GenSources(1)
	if err := ctx.SourcePlay(ids); err != nil {
		t.Fatalf("play: %v", err)
	}
	if err := ctx.SourcePause(ids); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := ctx.SourceStop([]uint32{ids[0]}); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := ctx.SourceStop([]uint32{ids[0]}); err == nil {
		t.Fatal("expected error stopping an already-stopped source")
	}
}

func TestQueueBuffersRejectsUnknownBufferID(t *testing.T) {
	ctx := NewContext(4, 16)
	ids := ctx.GenSources(1)
	if err := ctx.QueueBuffers(ids[0], []uint32{123}); err == nil {
		t.Fatal("expected error queueing an unknown buffer id")
	}
}

func TestQueueBuffersThenUnqueueRoundTrips(t *testing.T) {
	ctx := NewContext(4, 16)
	srcIDs := ctx.GenSources(1)
	bufID := monoBufferData(ctx, 100)

	if err := ctx.QueueBuffers(srcIDs[0], []uint32{bufID}); err != nil {
		t.Fatalf("queue: %v", err)
	}
	got, err := ctx.UnqueueBuffers(srcIDs[0], 1)
	if err != nil {
		t.Fatalf("unqueue: %v", err)
	}
	if len(got) != 1 || got[0] != bufID {
		t.Fatalf("expected unqueue to return [%d], got %v", bufID, got)
	}
}

func TestDeleteBuffersRejectsWhileReferenced(t *testing.T) {
	ctx := NewContext(4, 16)
	srcIDs := ctx.GenSources(1)
	bufID := monoBufferData(ctx, 100)
	if err := ctx.QueueBuffers(srcIDs[0], []uint32{bufID}); err != nil {
		t.Fatalf("queue: %v", err)
	}
	if err := ctx.DeleteBuffers([]uint32{bufID}); err == nil {
		t.Fatal("expected error deleting a buffer still referenced by a queued item")
	}
}

func TestEffectSlotSetTargetRejectsSelfCycleThroughContext(t *testing.T) {
	ctx := NewContext(4, 16)
	ids := ctx.GenEffectSlots(1)
	if err := ctx.EffectSlotSetTarget(ids[0], ids[0]); err == nil {
		t.Fatal("expected cycle rejection")
	}
}

func TestRenderFramesWithNoCurrentContextProducesSilence(t *testing.T) {
	d := NewDevice(44100, codec.Stereo, 64)
	out := d.RenderFrames(64)
	if len(out) != 64*2 {
		t.Fatalf("expected %d samples, got %d", 64*2, len(out))
	}
	for _, v := range out {
		if v != 0 {
			t.Fatal("expected silence with no current context")
		}
	}
}

func TestRenderFramesMixesAPlayingSourceWithoutPanicking(t *testing.T) {
	ctx := NewContext(4, 16)
	srcIDs := ctx.GenSources(1)
	bufID := monoBufferData(ctx, 4096)
	if err := ctx.QueueBuffers(srcIDs[0], []uint32{bufID}); err != nil {
		t.Fatalf("queue: %v", err)
	}
	if err := ctx.SourcePlay(srcIDs); err != nil {
		t.Fatalf("play: %v", err)
	}

	d := NewDevice(44100, codec.Stereo, 256)
	d.MakeCurrent(ctx)
	out := d.RenderFrames(256)
	if len(out) != 256*2 {
		t.Fatalf("expected %d samples, got %d", 256*2, len(out))
	}
}

func TestSetListenerGainRejectsNegative(t *testing.T) {
	ctx := NewContext(4, 16)
	if err := ctx.SetListenerGain(-1); err == nil {
		t.Fatal("expected error for negative listener gain")
	}
}
