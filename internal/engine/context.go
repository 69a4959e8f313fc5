// SPDX-License-Identifier: GPL-3.0-or-later
package engine

import (
	"sync"

	"github.com/nyxfield/sonance/internal/alerr"
	"github.com/nyxfield/sonance/internal/buffer"
	"github.com/nyxfield/sonance/internal/codec"
	"github.com/nyxfield/sonance/internal/effect"
	"github.com/nyxfield/sonance/internal/event"
	"github.com/nyxfield/sonance/internal/listener"
	"github.com/nyxfield/sonance/internal/props"
	"github.com/nyxfield/sonance/internal/source"
	"github.com/nyxfield/sonance/internal/voice"
)

// sourceEntry pairs a source with its private mixer-facing state: the
// cursor Play/Stop/Rewind operate on and the id of any voice currently
// rendering it (0 == unattached).
type sourceEntry struct {
	src     *source.Source
	cursor  source.Cursor
	voiceID uint32
}

// Context is the control-thread facade of spec §3 Context: owns the
// source/buffer/effect-slot id tables, the listener pose and globals, the
// voice pool, and the async event ring. All mutating methods serialize on
// mu, matching the teacher's single-writer-at-a-time discipline for shared
// synth state (_teacher_ref/machine_bus.go's bus-level lock around register
// writes) generalized from one shared bus to one shared context.
type Context struct {
	mu sync.Mutex

	sources     *idTable[*sourceEntry]
	buffers     *idTable[*buffer.Buffer]
	effectSlots *idTable[*effect.Slot]

	// Listener is the control thread's live, mutable copy; listenerPool/
	// listenerSlot are the lock-free handoff to the render path (spec
	// §4.10), so a render in flight never observes a half-written pose.
	Listener     listener.Listener
	Globals      listener.Globals
	listenerPool props.Pool[listenerSnapshot]
	listenerSlot props.Slot[listenerSnapshot]

	voices   *idTable[*voice.Voice]
	maxSlots int

	Events *event.Ring
}

// listenerSnapshot is the payload internal/props hands off between the
// control thread's listener mutators and the device's render path.
type listenerSnapshot struct {
	Listener listener.Listener
	Globals  listener.Globals
}

// NewContext allocates an empty context with room for maxSlots chained
// effect slots (used by the cycle-check in EffectSlotSetTarget) and an
// eventCapacity-deep async event ring. Per-source props are read directly
// off their owning Source under mu in this single-process implementation
// rather than independently triple-buffered (a documented simplification,
// see DESIGN.md); the listener pose, read every render regardless of
// whether any source changed, does go through the real props handoff.
func NewContext(maxSlots, eventCapacity int) *Context {
	c := &Context{
		sources:     newIDTable[*sourceEntry](),
		buffers:     newIDTable[*buffer.Buffer](),
		effectSlots: newIDTable[*effect.Slot](),
		voices:      newIDTable[*voice.Voice](),
		maxSlots:    maxSlots,
		Events:      event.NewRing(eventCapacity),
		Listener:    listener.Listener{Gain: 1, MetersPerUnit: 1},
		Globals:     listener.Globals{DopplerFactor: 1, SpeedOfSound: 343.3, DistanceModel: listener.InverseClamped},
	}
	c.PublishListener()
	return c
}

// PublishListener copies the control thread's current listener pose and
// globals into a pooled snapshot and publishes it for the next render
// (spec §4.10's "mixer copies clean entities into a pooled record and
// atomically swaps it into a pending slot").
func (c *Context) PublishListener() {
	b := c.listenerPool.Get()
	b.Value = listenerSnapshot{Listener: c.Listener, Globals: c.Globals}
	c.listenerSlot.Publish(b)
}

// consumeListener is the render side: take the latest published snapshot
// if one is pending, otherwise keep using the last one the caller holds.
func (c *Context) consumeListener(last listenerSnapshot) listenerSnapshot {
	if b := c.listenerSlot.Consume(); b != nil {
		last = b.Value
		c.listenerPool.Put(b)
	}
	return last
}

// GenSources creates n fresh sources in Initial state, returning their ids.
func (c *Context) GenSources(n int) []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]uint32, n)
	for i := 0; i < n; i++ {
		ids[i] = c.sources.alloc(&sourceEntry{})
	}
	for _, id := range ids {
		e, _ := c.sources.get(id)
		e.src = source.New(int(id))
	}
	return ids
}

// DeleteSources removes sources, detaching any owning voice first (spec
// §4.7: deletion implies the same voice-detach as any state transition).
func (c *Context) DeleteSources(ids []uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		e, ok := c.sources.get(id)
		if !ok {
			return alerr.New(alerr.InvalidName, "DeleteSources", "unknown source id")
		}
		if e.voiceID != 0 {
			if v, ok := c.voices.get(e.voiceID); ok {
				v.Detach()
			}
			c.voices.delete(e.voiceID)
		}
		e.src.Queue.Clear()
	}
	for _, id := range ids {
		c.sources.delete(id)
	}
	return nil
}

// AllSourceIDs returns every currently live source id, used by the
// backend disconnect path (spec §6.2: "transitions all contexts' sources
// to stopped").
func (c *Context) AllSourceIDs() []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]uint32, 0, len(c.sources.entries))
	for id := range c.sources.entries {
		ids = append(ids, id)
	}
	return ids
}

func (c *Context) sourceByID(id uint32, op string) (*sourceEntry, error) {
	e, ok := c.sources.get(id)
	if !ok {
		return nil, alerr.New(alerr.InvalidName, op, "unknown source id")
	}
	return e, nil
}

// SourcePlay, SourcePause, SourceStop, SourceRewind drive the Initial/
// Playing/Paused/Stopped state machine for each named source (spec §4.7).
func (c *Context) SourcePlay(ids []uint32) error { return c.forEachSource(ids, "SourcePlay", func(e *sourceEntry) error {
	e.src.Play(&e.cursor)
	e.src.MarkDirty()
	c.Events.Push(event.Event{Kind: event.SourceStateChanged, SourceID: int(e.src.ID), State: int(source.Playing)})
	return nil
}) }

func (c *Context) SourcePause(ids []uint32) error { return c.forEachSource(ids, "SourcePause", func(e *sourceEntry) error {
	return e.src.Pause()
}) }

func (c *Context) SourceStop(ids []uint32) error { return c.forEachSource(ids, "SourceStop", func(e *sourceEntry) error {
	if err := e.src.Stop(); err != nil {
		return err
	}
	if e.voiceID != 0 {
		if v, ok := c.voices.get(e.voiceID); ok {
			v.Detach()
		}
		c.voices.delete(e.voiceID)
		e.voiceID = 0
	}
	return nil
}) }

func (c *Context) SourceRewind(ids []uint32) error { return c.forEachSource(ids, "SourceRewind", func(e *sourceEntry) error {
	e.src.Rewind(&e.cursor)
	if e.voiceID != 0 {
		if v, ok := c.voices.get(e.voiceID); ok {
			v.Detach()
		}
		c.voices.delete(e.voiceID)
		e.voiceID = 0
	}
	return nil
}) }

// ForceStopAll transitions every given source to Stopped on a
// best-effort basis: unlike SourceStop, an already-stopped source (or
// an unknown id) is simply skipped rather than aborting the ids that
// follow it. This is what spec §6.2's handle_disconnect needs
// ("transitions all contexts' sources to stopped") — a disconnect must
// not leave later sources in the list untouched just because an
// earlier one had nothing left to stop.
func (c *Context) ForceStopAll(ids []uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		e, ok := c.sources.get(id)
		if !ok {
			continue
		}
		_ = e.src.Stop()
		if e.voiceID != 0 {
			if v, ok := c.voices.get(e.voiceID); ok {
				v.Detach()
			}
			c.voices.delete(e.voiceID)
			e.voiceID = 0
		}
	}
}

func (c *Context) forEachSource(ids []uint32, op string, fn func(*sourceEntry) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		e, err := c.sourceByID(id, op)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// MinPitch floors SourceSetPitch: a smaller pitch, zero and negative
// values included, is raised to MinPitch instead of rejected.
const MinPitch = 1e-3

// SourceSetGain and the setters below all follow the same get-entry/
// mutate/mark-dirty shape (spec §6.1 "source_set(id, prop, value)") over
// every mutable field spec §3's Source models.
func (c *Context) SourceSetGain(id uint32, gain float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetGain")
	if err != nil {
		return err
	}
	if gain < 0 {
		return alerr.New(alerr.InvalidValue, "SourceSetGain", "gain must be non-negative")
	}
	e.src.GainMaster = gain
	e.src.MarkDirty()
	return nil
}

func (c *Context) SourceSetPosition(id uint32, x, y, z float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetPosition")
	if err != nil {
		return err
	}
	e.src.PositionX, e.src.PositionY, e.src.PositionZ = x, y, z
	e.src.MarkDirty()
	return nil
}

func (c *Context) SourceSetLooping(id uint32, looping bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetLooping")
	if err != nil {
		return err
	}
	e.src.Looping = looping
	e.src.MarkDirty()
	return nil
}

func (c *Context) SourceSetVelocity(id uint32, x, y, z float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetVelocity")
	if err != nil {
		return err
	}
	e.src.VelocityX, e.src.VelocityY, e.src.VelocityZ = x, y, z
	e.src.MarkDirty()
	return nil
}

func (c *Context) SourceSetHeadRelative(id uint32, headRelative bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetHeadRelative")
	if err != nil {
		return err
	}
	e.src.HeadRelative = headRelative
	e.src.MarkDirty()
	return nil
}

// SourceSetDirection sets the source's facing direction, consumed by
// spatialize's cone-attenuation pass (spec §4.9). The zero vector means
// "omnidirectional" and is accepted, not rejected: spatialize treats a
// zero-length direction as no facing direction set.
func (c *Context) SourceSetDirection(id uint32, x, y, z float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetDirection")
	if err != nil {
		return err
	}
	e.src.DirectionX, e.src.DirectionY, e.src.DirectionZ = x, y, z
	e.src.MarkDirty()
	return nil
}

func (c *Context) SourceSetOrientationUp(id uint32, x, y, z float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetOrientationUp")
	if err != nil {
		return err
	}
	e.src.OrientationUpX, e.src.OrientationUpY, e.src.OrientationUpZ = x, y, z
	e.src.MarkDirty()
	return nil
}

// SourceSetCone sets the inner/outer cone angles (degrees, full angle not
// half-angle, 360 = omnidirectional) and the gain applied outside the
// outer cone (spec §4.9 "Cone attenuation").
func (c *Context) SourceSetCone(id uint32, innerAngle, outerAngle, outerGain float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetCone")
	if err != nil {
		return err
	}
	if outerGain < 0 || outerGain > 1 {
		return alerr.New(alerr.InvalidValue, "SourceSetCone", "outer cone gain must be in [0, 1]")
	}
	e.src.ConeInnerAngle, e.src.ConeOuterAngle, e.src.ConeOuterGain = innerAngle, outerAngle, outerGain
	e.src.MarkDirty()
	return nil
}

// SourceSetPitch clamps to MinPitch rather than rejecting non-positive
// input, per spec §3's "pitch multiplier" having no documented lower
// rejection boundary distinct from gain's.
func (c *Context) SourceSetPitch(id uint32, pitch float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetPitch")
	if err != nil {
		return err
	}
	if pitch < MinPitch {
		pitch = MinPitch
	}
	e.src.Pitch = pitch
	e.src.MarkDirty()
	return nil
}

func (c *Context) SourceSetRolloff(id uint32, rolloff float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetRolloff")
	if err != nil {
		return err
	}
	if rolloff < 0 {
		return alerr.New(alerr.InvalidValue, "SourceSetRolloff", "rolloff must be non-negative")
	}
	e.src.Rolloff = rolloff
	e.src.MarkDirty()
	return nil
}

func (c *Context) SourceSetDistanceModel(id uint32, model listener.DistanceModel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetDistanceModel")
	if err != nil {
		return err
	}
	e.src.DistanceModel = model
	e.src.MarkDirty()
	return nil
}

func (c *Context) SourceSetReferenceDistance(id uint32, dist float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetReferenceDistance")
	if err != nil {
		return err
	}
	if dist < 0 {
		return alerr.New(alerr.InvalidValue, "SourceSetReferenceDistance", "reference distance must be non-negative")
	}
	e.src.ReferenceDistance = dist
	e.src.MarkDirty()
	return nil
}

func (c *Context) SourceSetMaxDistance(id uint32, dist float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetMaxDistance")
	if err != nil {
		return err
	}
	if dist < 0 {
		return alerr.New(alerr.InvalidValue, "SourceSetMaxDistance", "max distance must be non-negative")
	}
	e.src.MaxDistance = dist
	e.src.MarkDirty()
	return nil
}

func (c *Context) SourceSetDopplerFactor(id uint32, factor float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetDopplerFactor")
	if err != nil {
		return err
	}
	if factor < 0 {
		return alerr.New(alerr.InvalidValue, "SourceSetDopplerFactor", "doppler factor must be non-negative")
	}
	e.src.DopplerFactor = factor
	e.src.MarkDirty()
	return nil
}

func (c *Context) SourceSetRadius(id uint32, radius float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetRadius")
	if err != nil {
		return err
	}
	if radius < 0 {
		return alerr.New(alerr.InvalidValue, "SourceSetRadius", "radius must be non-negative")
	}
	e.src.Radius = radius
	e.src.MarkDirty()
	return nil
}

func (c *Context) SourceSetMetersPerUnit(id uint32, metersPerUnit float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetMetersPerUnit")
	if err != nil {
		return err
	}
	if metersPerUnit <= 0 {
		return alerr.New(alerr.InvalidValue, "SourceSetMetersPerUnit", "meters per unit must be positive")
	}
	e.src.MetersPerUnit = metersPerUnit
	e.src.MarkDirty()
	return nil
}

// SourceSetDirectFilter sets the source's direct-path filter (spec §3
// "Direct filter"): a low/high shelf pair applied ahead of the dry mix.
func (c *Context) SourceSetDirectFilter(id uint32, f source.DirectFilter) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetDirectFilter")
	if err != nil {
		return err
	}
	e.src.Direct = f
	e.src.MarkDirty()
	return nil
}

// SourceSetSendFilter sets one send's filter shape, independent of
// SourceSetSend's gain/slot-routing pair.
func (c *Context) SourceSetSendFilter(id uint32, sendIdx int, f source.SendTarget) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetSendFilter")
	if err != nil {
		return err
	}
	if sendIdx < 0 || sendIdx >= len(e.src.Sends) {
		return alerr.New(alerr.InvalidValue, "SourceSetSendFilter", "send index out of range")
	}
	gain, slot := e.src.Sends[sendIdx].Gain, e.src.Sends[sendIdx].EffectSlotID
	e.src.Sends[sendIdx] = f
	e.src.Sends[sendIdx].Gain, e.src.Sends[sendIdx].EffectSlotID = gain, slot
	e.src.MarkDirty()
	return nil
}

func (c *Context) SourceSetResamplerKind(id uint32, kind int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetResamplerKind")
	if err != nil {
		return err
	}
	e.src.ResamplerKind = kind
	e.src.MarkDirty()
	return nil
}

func (c *Context) SourceSetDirectChannels(id uint32, direct bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetDirectChannels")
	if err != nil {
		return err
	}
	e.src.DirectChannels = direct
	e.src.MarkDirty()
	return nil
}

func (c *Context) SourceSetSpatializeMode(id uint32, mode source.SpatializeMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetSpatializeMode")
	if err != nil {
		return err
	}
	e.src.Spatialize = mode
	e.src.MarkDirty()
	return nil
}

// SourceSetStereoPan sets the two stereo-angle-pan angles (radians, 0 =
// front, positive = counter-clockwise) a stereo-buffer source is split
// across per pan.StereoPanGains (spec §D supplement).
func (c *Context) SourceSetStereoPan(id uint32, angleLeft, angleRight float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceSetStereoPan")
	if err != nil {
		return err
	}
	e.src.StereoPanLeft, e.src.StereoPanRight = angleLeft, angleRight
	e.src.MarkDirty()
	return nil
}

// SourceGetGain and the getters below are the read half of every setter
// above, completing the gen/delete/set/get symmetry spec §6.1 requires of
// the handle API.
func (c *Context) SourceGetGain(id uint32) (float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetGain")
	if err != nil {
		return 0, err
	}
	return e.src.GainMaster, nil
}

func (c *Context) SourceGetPosition(id uint32) (x, y, z float32, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetPosition")
	if err != nil {
		return 0, 0, 0, err
	}
	return e.src.PositionX, e.src.PositionY, e.src.PositionZ, nil
}

func (c *Context) SourceGetLooping(id uint32) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetLooping")
	if err != nil {
		return false, err
	}
	return e.src.Looping, nil
}

func (c *Context) SourceGetVelocity(id uint32) (x, y, z float32, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetVelocity")
	if err != nil {
		return 0, 0, 0, err
	}
	return e.src.VelocityX, e.src.VelocityY, e.src.VelocityZ, nil
}

func (c *Context) SourceGetHeadRelative(id uint32) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetHeadRelative")
	if err != nil {
		return false, err
	}
	return e.src.HeadRelative, nil
}

func (c *Context) SourceGetDirection(id uint32) (x, y, z float32, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetDirection")
	if err != nil {
		return 0, 0, 0, err
	}
	return e.src.DirectionX, e.src.DirectionY, e.src.DirectionZ, nil
}

func (c *Context) SourceGetOrientationUp(id uint32) (x, y, z float32, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetOrientationUp")
	if err != nil {
		return 0, 0, 0, err
	}
	return e.src.OrientationUpX, e.src.OrientationUpY, e.src.OrientationUpZ, nil
}

func (c *Context) SourceGetCone(id uint32) (innerAngle, outerAngle, outerGain float32, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetCone")
	if err != nil {
		return 0, 0, 0, err
	}
	return e.src.ConeInnerAngle, e.src.ConeOuterAngle, e.src.ConeOuterGain, nil
}

func (c *Context) SourceGetPitch(id uint32) (float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetPitch")
	if err != nil {
		return 0, err
	}
	return e.src.Pitch, nil
}

func (c *Context) SourceGetRolloff(id uint32) (float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetRolloff")
	if err != nil {
		return 0, err
	}
	return e.src.Rolloff, nil
}

func (c *Context) SourceGetDistanceModel(id uint32) (listener.DistanceModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetDistanceModel")
	if err != nil {
		return 0, err
	}
	return e.src.DistanceModel, nil
}

func (c *Context) SourceGetReferenceDistance(id uint32) (float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetReferenceDistance")
	if err != nil {
		return 0, err
	}
	return e.src.ReferenceDistance, nil
}

func (c *Context) SourceGetMaxDistance(id uint32) (float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetMaxDistance")
	if err != nil {
		return 0, err
	}
	return e.src.MaxDistance, nil
}

func (c *Context) SourceGetDopplerFactor(id uint32) (float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetDopplerFactor")
	if err != nil {
		return 0, err
	}
	return e.src.DopplerFactor, nil
}

func (c *Context) SourceGetRadius(id uint32) (float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetRadius")
	if err != nil {
		return 0, err
	}
	return e.src.Radius, nil
}

func (c *Context) SourceGetMetersPerUnit(id uint32) (float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetMetersPerUnit")
	if err != nil {
		return 0, err
	}
	return e.src.MetersPerUnit, nil
}

func (c *Context) SourceGetDirectFilter(id uint32) (source.DirectFilter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetDirectFilter")
	if err != nil {
		return source.DirectFilter{}, err
	}
	return e.src.Direct, nil
}

func (c *Context) SourceGetSendFilter(id uint32, sendIdx int) (source.SendTarget, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetSendFilter")
	if err != nil {
		return source.SendTarget{}, err
	}
	if sendIdx < 0 || sendIdx >= len(e.src.Sends) {
		return source.SendTarget{}, alerr.New(alerr.InvalidValue, "SourceGetSendFilter", "send index out of range")
	}
	return e.src.Sends[sendIdx], nil
}

func (c *Context) SourceGetResamplerKind(id uint32) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetResamplerKind")
	if err != nil {
		return 0, err
	}
	return e.src.ResamplerKind, nil
}

func (c *Context) SourceGetDirectChannels(id uint32) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetDirectChannels")
	if err != nil {
		return false, err
	}
	return e.src.DirectChannels, nil
}

func (c *Context) SourceGetSpatializeMode(id uint32) (source.SpatializeMode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetSpatializeMode")
	if err != nil {
		return 0, err
	}
	return e.src.Spatialize, nil
}

func (c *Context) SourceGetStereoPan(id uint32) (angleLeft, angleRight float32, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetStereoPan")
	if err != nil {
		return 0, 0, err
	}
	return e.src.StereoPanLeft, e.src.StereoPanRight, nil
}

// SourceGetState reports the source's current playback state (spec §7:
// "get-state reports stopped" after a disconnect).
func (c *Context) SourceGetState(id uint32) (source.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(id, "SourceGetState")
	if err != nil {
		return 0, err
	}
	return e.src.State(), nil
}

// QueueBuffers appends a list of buffer ids (already gen'd/filled via
// BufferData) as one queue item.
func (c *Context) QueueBuffers(sourceID uint32, bufferIDs []uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(sourceID, "QueueBuffers")
	if err != nil {
		return err
	}
	bufs := make([]*buffer.Buffer, len(bufferIDs))
	for i, bid := range bufferIDs {
		b, ok := c.buffers.get(bid)
		if !ok {
			return alerr.New(alerr.InvalidName, "QueueBuffers", "unknown buffer id")
		}
		if b == nil {
			return alerr.New(alerr.InvalidOperation, "QueueBuffers", "buffer has no data uploaded")
		}
		bufs[i] = b
	}
	it, err := buffer.NewItem(bufs)
	if err != nil {
		return err
	}
	return e.src.QueueBuffers(it)
}

// UnqueueBuffers pops the n oldest queue items and returns their
// constituent buffer ids for each popped item, flattened in queue order.
// It does not check how many items have been processed: any queued item
// is popped, whether or not it has finished playing.
func (c *Context) UnqueueBuffers(sourceID uint32, n int) ([]uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(sourceID, "UnqueueBuffers")
	if err != nil {
		return nil, err
	}
	var out []uint32
	for i := 0; i < n; i++ {
		it, err := e.src.Unqueue()
		if err != nil {
			return nil, err
		}
		for _, b := range it.Buffers {
			out = append(out, uint32(b.ID))
		}
		it.Release()
	}
	return out, nil
}

// GenBuffers allocates n empty buffer ids.
func (c *Context) GenBuffers(n int) []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]uint32, n)
	for i := 0; i < n; i++ {
		ids[i] = c.buffers.alloc(nil)
	}
	return ids
}

// DeleteBuffers removes buffers, rejecting any with a non-zero reference
// count (spec §3 Buffer invariant 4).
func (c *Context) DeleteBuffers(ids []uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		b, ok := c.buffers.get(id)
		if !ok {
			return alerr.New(alerr.InvalidName, "DeleteBuffers", "unknown buffer id")
		}
		if b != nil && !b.CanDelete() {
			return alerr.New(alerr.InvalidOperation, "DeleteBuffers", "buffer still referenced by a queued item")
		}
	}
	for _, id := range ids {
		c.buffers.delete(id)
	}
	return nil
}

// BufferData decodes raw bytes in the given storage format and installs
// the result into a previously gen'd buffer id (spec §6.1
// "buffer_data(id, format, bytes, sample_rate)"). Only the directly
// PCM-decodable formats are handled here; IMA4/MSADPCM block decode is the
// caller's responsibility to pre-expand (see internal/codec/adpcm.go),
// since it requires block-size metadata this entry point doesn't carry.
func (c *Context) BufferData(id uint32, format codec.Format, sampleRate int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.buffers.get(id); !ok {
		return alerr.New(alerr.InvalidName, "BufferData", "unknown buffer id")
	}
	frameBytes := format.FrameBytes()
	if frameBytes == 0 {
		return alerr.New(alerr.InvalidEnum, "BufferData", "block-compressed formats must be pre-decoded")
	}
	frames := len(data) / frameBytes
	samples := codec.DecodePCM(format, data, frames)
	b, err := buffer.New(int(id), format, sampleRate, samples, frames)
	if err != nil {
		return err
	}
	c.buffers.entries[id] = b
	return nil
}

// GenEffectSlots, DeleteEffectSlots, EffectSlotSetEffect, and
// EffectSlotSetTarget cover the effect-slot half of spec §6.1's symmetrical
// gen/delete/set/get surface; SetEffect takes an already-constructed
// effect.State (built via e.g. effect.NewReverb) rather than a (type,
// params) pair, since the tagged-union construction already lives in
// internal/effect and re-deriving it here would duplicate that switch.
func (c *Context) GenEffectSlots(n int) []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]uint32, n)
	for i := 0; i < n; i++ {
		id := c.effectSlots.alloc(nil)
		c.effectSlots.entries[id] = effect.NewSlot(int(id))
		ids[i] = id
	}
	return ids
}

func (c *Context) DeleteEffectSlots(ids []uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		s, ok := c.effectSlots.get(id)
		if !ok {
			return alerr.New(alerr.InvalidName, "DeleteEffectSlots", "unknown effect slot id")
		}
		if !s.CanDelete() {
			return alerr.New(alerr.InvalidOperation, "DeleteEffectSlots", "effect slot still referenced by a send")
		}
	}
	for _, id := range ids {
		c.effectSlots.delete(id)
	}
	return nil
}

func (c *Context) EffectSlotSetEffect(id uint32, st effect.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.effectSlots.get(id)
	if !ok {
		return alerr.New(alerr.InvalidName, "EffectSlotSetEffect", "unknown effect slot id")
	}
	s.SetState(st)
	s.MarkDirty()
	return nil
}

func (c *Context) EffectSlotSetTarget(id, targetID uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.effectSlots.get(id)
	if !ok {
		return alerr.New(alerr.InvalidName, "EffectSlotSetTarget", "unknown effect slot id")
	}
	var target *effect.Slot
	if targetID != 0 {
		t, ok := c.effectSlots.get(targetID)
		if !ok {
			return alerr.New(alerr.InvalidName, "EffectSlotSetTarget", "unknown target slot id")
		}
		target = t
	}
	return s.SetTarget(target, c.maxSlots)
}

// SetListenerPosition, SetListenerVelocity, SetListenerOrientation,
// SetListenerGain, and SetGlobals mutate the listener pose/globals and
// publish a fresh snapshot for the render path (spec §3 Listener, §4.9).
func (c *Context) SetListenerPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Listener.PositionX, c.Listener.PositionY, c.Listener.PositionZ = x, y, z
	c.PublishListener()
}

func (c *Context) SetListenerVelocity(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Listener.VelocityX, c.Listener.VelocityY, c.Listener.VelocityZ = x, y, z
	c.PublishListener()
}

func (c *Context) SetListenerOrientation(fx, fy, fz, ux, uy, uz float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Listener.ForwardX, c.Listener.ForwardY, c.Listener.ForwardZ = fx, fy, fz
	c.Listener.UpX, c.Listener.UpY, c.Listener.UpZ = ux, uy, uz
	c.PublishListener()
}

func (c *Context) SetListenerGain(gain float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gain < 0 {
		return alerr.New(alerr.InvalidValue, "SetListenerGain", "gain must be non-negative")
	}
	c.Listener.Gain = gain
	c.PublishListener()
	return nil
}

func (c *Context) SetGlobals(g listener.Globals) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Globals = g
	c.PublishListener()
}

// SourceSetSend attaches one of the source's auxiliary sends to an effect
// slot id (0 detaches).
func (c *Context) SourceSetSend(sourceID uint32, sendIdx int, slotID uint32, gain float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, err := c.sourceByID(sourceID, "SourceSetSend")
	if err != nil {
		return err
	}
	if sendIdx < 0 || sendIdx >= len(e.src.Sends) {
		return alerr.New(alerr.InvalidValue, "SourceSetSend", "send index out of range")
	}
	if slotID != 0 {
		if _, ok := c.effectSlots.get(slotID); !ok {
			return alerr.New(alerr.InvalidName, "SourceSetSend", "unknown effect slot id")
		}
	}
	e.src.Sends[sendIdx].EffectSlotID = int(slotID)
	e.src.Sends[sendIdx].Gain = gain
	e.src.MarkDirty()
	return nil
}
