//go:build !headless
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

// OtoPlayer is the real low-latency playback backend: an oto.Player fed
// by this struct's own Read method, which pulls fixed-size chunks from
// the attached Source exactly as the core's Non-goal "the core is
// pull-driven by the backend" requires. Grounded directly on the
// teacher's OtoPlayer (audio_backend_oto.go): same
// atomic.Pointer-guarded hot path. Read keeps no scratch buffer of its
// own; it hands oto's byte slice straight to the Source's ReadInto.
type OtoPlayer struct {
	ctx    *oto.Context
	player *oto.Player

	src atomic.Pointer[Source]

	mu      sync.Mutex
	started bool
	name    string

	sampleRate int
	channels   int
}

// NewOtoPlayer constructs an unopened player; Open/Reset negotiate the
// stream parameters oto needs before Start can begin pulling frames.
func NewOtoPlayer() *OtoPlayer {
	return &OtoPlayer{}
}

func (op *OtoPlayer) Open(name string) error {
	op.mu.Lock()
	defer op.mu.Unlock()
	op.name = name
	return nil
}

func (op *OtoPlayer) Reset(sampleRate, channels, updateFrames int) error {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.ctx != nil {
		return nil
	}
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return wrapDeviceError("OtoPlayer.Reset", err)
	}
	<-ready
	op.ctx = ctx
	op.sampleRate = sampleRate
	op.channels = channels
	return nil
}

// Read implements io.Reader for oto.NewPlayer: it is oto's own real-time
// thread calling back into this backend, which in turn pulls from the
// attached engine.Device — the pull-driven render path spec §6.2
// describes, with oto itself as the "dedicated thread".
func (op *OtoPlayer) Read(p []byte) (int, error) {
	s := op.src.Load()
	if s == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	return (*s).ReadInto(p)
}

func (op *OtoPlayer) Start(src Source) error {
	op.mu.Lock()
	defer op.mu.Unlock()
	op.src.Store(&src)
	if op.player == nil {
		op.player = op.ctx.NewPlayer(op)
	}
	if !op.started {
		op.player.Play()
		op.started = true
	}
	return nil
}

func (op *OtoPlayer) Stop() error {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.started && op.player != nil {
		op.player.Pause()
		op.started = false
	}
	return nil
}

// ClockLatency reports the oto internal buffer's play-position lag in
// frames; oto doesn't expose hardware latency directly, so this reports
// the unplayed-buffered-bytes estimate its BufferedSize gives.
func (op *OtoPlayer) ClockLatency() (clockTimeFrames, latencyFrames int64) {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.player == nil || op.channels == 0 {
		return 0, 0
	}
	buffered := op.player.BufferedSize()
	frameBytes := op.channels * 4
	if frameBytes == 0 {
		return 0, 0
	}
	return 0, int64(buffered / frameBytes)
}

func (op *OtoPlayer) Close() error {
	_ = op.Stop()
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.player != nil {
		op.player.Close()
		op.player = nil
	}
	return nil
}

func init() {
	register("oto", func() Player { return NewOtoPlayer() })
}
