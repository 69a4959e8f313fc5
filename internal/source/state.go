// SPDX-License-Identifier: GPL-3.0-or-later
package source

import "github.com/nyxfield/sonance/internal/alerr"

// Cursor is the playback position a Play/Stop/Rewind transition resets
// or preserves, tracked separately from Source so the engine's voice
// detachment step (spec §4.7 "on any transition the mixer must also
// detach any owning voice") can reset it without touching Source's other
// fields.
type Cursor struct {
	FrameOffset int
}

// Play implements the `play` transition of spec §4.7's table: from
// Initial/Streaming-stopped/Static-stopped it starts at cursor 0; from
// Playing it restarts at cursor 0; from Paused it resumes without
// resetting the cursor.
func (s *Source) Play(cursor *Cursor) {
	switch s.state {
	case Paused:
		// resume: cursor unchanged
	default:
		cursor.FrameOffset = 0
	}
	s.state = Playing
}

// Pause implements `pause`: only valid from Playing (a no-op documented
// as an error on other states, matching the table's "—" cells).
func (s *Source) Pause() error {
	if s.state != Playing {
		return alerr.New(alerr.InvalidOperation, "source.Pause", "pause is only valid while playing")
	}
	s.state = Paused
	return nil
}

// Stop implements `stop`: valid from Initial/Playing/Paused, cursor
// unchanged per spec (offset reporting resets to 0 but frame position
// itself does not move until the next Play).
func (s *Source) Stop() error {
	if s.state == Stopped {
		return alerr.New(alerr.InvalidOperation, "source.Stop", "already stopped")
	}
	s.state = Stopped
	s.OffsetValue = 0
	return nil
}

// Rewind implements `rewind`: valid from every state, resets cursor to 0
// and transitions to Initial.
func (s *Source) Rewind(cursor *Cursor) {
	cursor.FrameOffset = 0
	s.state = Initial
}

// FinishQueue implements the "queue finishes (no loop)" transition: only
// meaningful from Playing, moves to Stopped.
func (s *Source) FinishQueue() {
	if s.state == Playing {
		s.state = Stopped
	}
}

// Disconnect implements "device disconnected": Initial/Playing/Paused all
// move to Stopped; an already-Stopped source is unaffected.
func (s *Source) Disconnect() {
	if s.state != Stopped {
		s.state = Stopped
	}
}
