//go:build headless
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

// HeadlessPlayer writes rendered output to a plain WAV file instead of a
// real device, the stdlib-only stand-in the teacher uses under its own
// `headless` build tag (audio_backend_headless.go) for CI/test runs with
// no sound hardware. Unlike the teacher's no-op stub, this one actually
// drains the Source into a file so render correctness is still
// observable without a real backend.
type HeadlessPlayer struct {
	mu      sync.Mutex
	f       *os.File
	started bool
	stop    chan struct{}

	sampleRate, channels, updateFrames int
	dataBytes                          uint32
}

func NewHeadlessPlayer() *HeadlessPlayer {
	return &HeadlessPlayer{}
}

func (h *HeadlessPlayer) Open(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if name == "" {
		name = "sonance-headless.wav"
	}
	f, err := os.Create(name)
	if err != nil {
		return wrapDeviceError("HeadlessPlayer.Open", err)
	}
	h.f = f
	return nil
}

func (h *HeadlessPlayer) Reset(sampleRate, channels, updateFrames int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.f == nil {
		return wrapDeviceError("HeadlessPlayer.Reset", fmt.Errorf("device not open"))
	}
	h.sampleRate, h.channels, h.updateFrames = sampleRate, channels, updateFrames
	return writeWAVHeaderPlaceholder(h.f, sampleRate, channels)
}

func (h *HeadlessPlayer) Start(src Source) error {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return nil
	}
	h.started = true
	h.stop = make(chan struct{})
	stop := h.stop
	h.mu.Unlock()

	go h.pump(src, stop)
	return nil
}

func (h *HeadlessPlayer) pump(src Source, stop chan struct{}) {
	buf := make([]byte, h.updateFrames*h.channels*4)
	for {
		select {
		case <-stop:
			return
		default:
		}
		n, err := src.ReadInto(buf)
		if err != nil {
			return
		}
		h.mu.Lock()
		if h.f != nil {
			h.f.Write(buf[:n])
			h.dataBytes += uint32(n)
		}
		h.mu.Unlock()
	}
}

func (h *HeadlessPlayer) Stop() error {
	h.mu.Lock()
	if !h.started {
		h.mu.Unlock()
		return nil
	}
	h.started = false
	stop := h.stop
	h.mu.Unlock()
	close(stop)
	return nil
}

func (h *HeadlessPlayer) ClockLatency() (clockTimeFrames, latencyFrames int64) {
	return 0, 0
}

func (h *HeadlessPlayer) Close() error {
	_ = h.Stop()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.f == nil {
		return nil
	}
	err := finalizeWAVHeader(h.f, h.dataBytes)
	closeErr := h.f.Close()
	h.f = nil
	if err != nil {
		return err
	}
	return closeErr
}

// writeWAVHeaderPlaceholder writes a 44-byte canonical WAV/PCM-float
// header with zeroed size fields, patched by finalizeWAVHeader once the
// total sample count is known (the file isn't seekable-safe to size
// ahead of time since rendering is open-ended).
func writeWAVHeaderPlaceholder(w io.WriteSeeker, sampleRate, channels int) error {
	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 3) // IEEE float
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(sampleRate))
	byteRate := sampleRate * channels * 4
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(channels*4))
	binary.LittleEndian.PutUint16(hdr[34:36], 32)
	copy(hdr[36:40], "data")
	_, err := w.Write(hdr[:])
	return err
}

func finalizeWAVHeader(w io.WriteSeeker, dataBytes uint32) error {
	if _, err := w.Seek(4, io.SeekStart); err != nil {
		return err
	}
	var sz [4]byte
	binary.LittleEndian.PutUint32(sz[:], dataBytes+36)
	if _, err := w.Write(sz[:]); err != nil {
		return err
	}
	if _, err := w.Seek(40, io.SeekStart); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(sz[:], dataBytes)
	_, err := w.Write(sz[:])
	return err
}

func init() {
	register("headless", func() Player { return NewHeadlessPlayer() })
}
