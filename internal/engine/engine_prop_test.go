// SPDX-License-Identifier: GPL-3.0-or-later

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/nyxfield/sonance/internal/codec"
)

// TestGenDeleteBufferCountIsInvariant checks spec §3's gen/delete
// symmetry: genning n buffers then deleting all of them always leaves
// the context with zero live buffer ids, for any n a test run happens
// to draw, grounded on the pack's own rapid.Check usage
// (doismellburning-samoyed/src/fx25_send_test.go).
func TestGenDeleteBufferCountIsInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 64).Draw(t, "n")
		ctx := NewContext(4, 16)
		ids := ctx.GenBuffers(n)
		assert.Len(t, ids, n)

		err := ctx.DeleteBuffers(ids)
		assert.NoError(t, err)

		// Every deleted id must now read back as unknown.
		for _, id := range ids {
			assert.Error(t, ctx.BufferData(id, codec.Format{Layout: codec.Mono, SampleType: codec.I16}, 44100, nil))
		}
	})
}

// TestSourceSetGetGainRoundTrips checks the representative source_set/
// source_get pair round-trips any non-negative gain drawn, the
// idempotence property spec §6.1's symmetrical accessor surface implies.
func TestSourceSetGetGainRoundTrips(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gain := rapid.Float32Range(0, 1000).Draw(t, "gain")
		ctx := NewContext(4, 16)
		id := ctx.GenSources(1)[0]

		assert.NoError(t, ctx.SourceSetGain(id, gain))
		got, err := ctx.SourceGetGain(id)
		assert.NoError(t, err)
		assert.Equal(t, gain, got)
	})
}

// TestSourceSetGetPositionRoundTrips mirrors the gain round-trip for the
// 3-float position property.
func TestSourceSetGetPositionRoundTrips(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Float32Range(-1e6, 1e6).Draw(t, "x")
		y := rapid.Float32Range(-1e6, 1e6).Draw(t, "y")
		z := rapid.Float32Range(-1e6, 1e6).Draw(t, "z")
		ctx := NewContext(4, 16)
		id := ctx.GenSources(1)[0]

		assert.NoError(t, ctx.SourceSetPosition(id, x, y, z))
		gx, gy, gz, err := ctx.SourceGetPosition(id)
		assert.NoError(t, err)
		assert.Equal(t, [3]float32{x, y, z}, [3]float32{gx, gy, gz})
	})
}

// TestEffectSlotSetTargetNeverCreatesACycle draws a random chain of
// target assignments among a fixed pool of slots and asserts the walk
// invariant (spec E1) always rejects the one assignment that would
// close a cycle, regardless of how the rest of the chain was built.
func TestEffectSlotSetTargetNeverCreatesACycle(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(t, "n")
		ctx := NewContext(n, 16)
		slots := ctx.GenEffectSlots(n)

		// Build a simple chain slots[0] -> slots[1] -> ... -> slots[n-2].
		for i := 0; i < n-2; i++ {
			assert.NoError(t, ctx.EffectSlotSetTarget(slots[i], slots[i+1]))
		}

		// Closing the chain back onto an earlier member must be rejected.
		closeAt := rapid.IntRange(0, n-2).Draw(t, "closeAt")
		err := ctx.EffectSlotSetTarget(slots[n-2], slots[closeAt])
		assert.Error(t, err)
	})
}

// TestSourceRewindResetsPlaybackToStart checks that after any number of
// render pulls, rewinding a source detaches its voice, so replaying it
// starts a fresh voice at the head of the queue instead of continuing
// from the old render position, and that rewind and replay both succeed
// and leave the looping flag set.
func TestSourceRewindResetsPlaybackToStart(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pulls := rapid.IntRange(1, 5).Draw(t, "pulls")

		ctx := NewContext(4, 16)
		id := ctx.GenSources(1)[0]
		bufID := monoBufferData(ctx, 4096)
		assert.NoError(t, ctx.QueueBuffers(id, []uint32{bufID}))
		assert.NoError(t, ctx.SourceSetLooping(id, true))
		assert.NoError(t, ctx.SourcePlay([]uint32{id}))

		dev := NewDevice(44100, codec.Stereo, 256)
		dev.MakeCurrent(ctx)
		for i := 0; i < pulls; i++ {
			dev.RenderFrames(256)
		}

		assert.NoError(t, ctx.SourceRewind([]uint32{id}))
		e, ok := ctx.sources.get(id)
		assert.True(t, ok)
		assert.Zero(t, e.voiceID)
		assert.NoError(t, ctx.SourcePlay([]uint32{id}))

		looping, err := ctx.SourceGetLooping(id)
		assert.NoError(t, err)
		assert.True(t, looping)
	})
}
