// SPDX-License-Identifier: GPL-3.0-or-later

// Package backend implements the spec §6.2 backend interface: platform
// output drivers the core treats as pull-driven collaborators ("render N
// frames now into this byte buffer with this channel layout and sample
// type"), plus the unrecoverable-error-to-disconnect-event path. Grounded
// on the teacher's OtoPlayer/ALSAPlayer/headless triad
// (audio_backend_oto.go, audio_backend_alsa.go, audio_backend_headless.go),
// generalized from a single hard-coded mono SoundChip ring reader to an
// arbitrary-channel engine.Device render source.
package backend

import (
	"fmt"

	"github.com/nyxfield/sonance/internal/alerr"
	"github.com/nyxfield/sonance/internal/engine"
	"github.com/nyxfield/sonance/internal/event"
)

// Source is what a backend pulls frames from: engine.Device satisfies it
// via ReadInto (for callback-style backends) and RenderFrames (for
// loop-owning backends).
type Source interface {
	ReadInto(dst []byte) (int, error)
	RenderFrames(frameCount int) []float32
}

// Player is the playback half of spec §6.2: open/reset/start/stop plus
// clock latency reporting, backed by a concrete output device.
type Player interface {
	Open(name string) error
	Reset(sampleRate, channels, updateFrames int) error
	Start(src Source) error
	Stop() error
	ClockLatency() (clockTimeFrames, latencyFrames int64)
	Close() error
}

// DisconnectHandler is invoked when a backend hits an unrecoverable error
// (spec §6.2: "the backend must call device.handle_disconnect(fmt, …)
// which transitions all contexts' sources to stopped and posts a
// disconnect event"). engine.Context does not implement this directly
// (it has no single notion of "all its sources" beyond its own id table),
// so HandleDisconnect below is the free function wiring a *engine.Context
// into this contract.
type DisconnectHandler func(reason error)

// HandleDisconnect stops every source in ctx and posts a disconnect event,
// the concrete behavior spec §6.2 requires of device.handle_disconnect.
func HandleDisconnect(ctx *engine.Context, reason error) {
	ctx.ForceStopAll(ctx.AllSourceIDs())
	ctx.Events.Push(event.Event{Kind: event.Disconnected})
	_ = reason
}

// wrapDeviceError wraps a backend-boundary failure as an alerr.DeviceError
// carrying the backend's message. It does not tell NoDevice or
// OutOfMemory failures apart: every failure gets the DeviceError code.
func wrapDeviceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return alerr.New(alerr.DeviceError, op, fmt.Sprintf("backend error: %v", err))
}
