// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"encoding/binary"
	"math"
)

// synthToneI16 renders a mono sine wave at freqHz for durationMS at
// sampleRate, little-endian signed 16-bit PCM, with a short linear
// fade-in/out to avoid a click at the buffer boundary. Spec's Non-goals
// exclude file-format decoding (WAV/MP3/OGG), so this demo generates its
// own source material rather than parsing one.
func synthToneI16(freqHz float32, durationMS, sampleRate int) []byte {
	frames := durationMS * sampleRate / 1000
	fadeFrames := sampleRate / 50 // 20ms
	out := make([]byte, frames*2)

	for i := 0; i < frames; i++ {
		t := float64(i) / float64(sampleRate)
		sample := math.Sin(2 * math.Pi * float64(freqHz) * t)

		amp := 1.0
		if i < fadeFrames {
			amp = float64(i) / float64(fadeFrames)
		} else if rem := frames - i; rem < fadeFrames {
			amp = float64(rem) / float64(fadeFrames)
		}

		v := int16(sample * amp * 0.8 * float64(math.MaxInt16))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}
