// SPDX-License-Identifier: GPL-3.0-or-later

package main

import "testing"

func TestSynthToneI16ProducesRequestedFrameCount(t *testing.T) {
	sampleRate := 44100
	durationMS := 100
	pcm := synthToneI16(440, durationMS, sampleRate)

	wantFrames := durationMS * sampleRate / 1000
	if len(pcm) != wantFrames*2 {
		t.Fatalf("expected %d bytes, got %d", wantFrames*2, len(pcm))
	}
}

func TestSynthToneI16FadesInFromSilence(t *testing.T) {
	pcm := synthToneI16(440, 100, 44100)
	first := int16(uint16(pcm[0]) | uint16(pcm[1])<<8)
	if first != 0 {
		t.Fatalf("expected the first sample to fade in from silence, got %d", first)
	}
}

func TestLoadSceneWithEmptyPathReturnsDefaults(t *testing.T) {
	scene, err := loadScene("")
	if err != nil {
		t.Fatalf("loadScene(\"\"): %v", err)
	}
	if scene.Source.ToneHz != 440 {
		t.Fatalf("expected default tone 440Hz, got %v", scene.Source.ToneHz)
	}
}
