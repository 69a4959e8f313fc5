// SPDX-License-Identifier: GPL-3.0-or-later
package codec

import "testing"

func TestDecodePCM_U8Midpoint(t *testing.T) {
	f := Format{Layout: Mono, SampleType: U8}
	out := DecodePCM(f, []byte{128}, 1)
	if out[0][0] != 0 {
		t.Fatalf("expected silence at u8 128, got %v", out[0][0])
	}
}

func TestDecodePCM_I16FullScale(t *testing.T) {
	f := Format{Layout: Mono, SampleType: I16}
	// 0x7FFF little-endian
	out := DecodePCM(f, []byte{0xFF, 0x7F}, 1)
	got := out[0][0]
	if got < 0.999 || got > 1.0 {
		t.Fatalf("expected ~1.0, got %v", got)
	}
}

func TestDecodePCM_StereoInterleave(t *testing.T) {
	f := Format{Layout: Stereo, SampleType: U8}
	// frame0: L=0(min), R=255(max); frame1: L=128(mid), R=128(mid)
	out := DecodePCM(f, []byte{0, 255, 128, 128}, 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(out))
	}
	if out[0][0] >= 0 {
		t.Fatalf("expected negative left sample 0, got %v", out[0][0])
	}
	if out[1][0] <= 0 {
		t.Fatalf("expected positive right sample 0, got %v", out[1][0])
	}
}

func TestMuLawALawTablesStayInI16Range(t *testing.T) {
	// 0xFF is the all-ones byte; decoding shouldn't panic and should produce
	// a value within i16 range for every input byte.
	for i := 0; i < 256; i++ {
		if v := muLawToI16[i]; v < -32768 || v > 32767 {
			t.Fatalf("mulaw[%d] out of range: %d", i, v)
		}
		if v := aLawToI16[i]; v < -32768 || v > 32767 {
			t.Fatalf("alaw[%d] out of range: %d", i, v)
		}
	}
}

func TestBlockAlignFrame(t *testing.T) {
	cases := []struct {
		frame, perBlock, wantBlock, wantOff int
	}{
		{0, 505, 0, 0},
		{504, 505, 0, 504},
		{505, 505, 1, 0},
		{1010, 505, 2, 0},
		{1011, 505, 2, 1},
	}
	for _, c := range cases {
		b, o := BlockAlignFrame(c.frame, c.perBlock)
		if b != c.wantBlock || o != c.wantOff {
			t.Errorf("BlockAlignFrame(%d,%d) = (%d,%d), want (%d,%d)",
				c.frame, c.perBlock, b, o, c.wantBlock, c.wantOff)
		}
	}
}

func TestEncodeInterleavedI16RoundTrip(t *testing.T) {
	planar := [][]float32{{0.5, -0.5}}
	dst := make([]byte, 4)
	EncodeInterleaved(I16, dst, planar, 2)
	f := Format{Layout: Mono, SampleType: I16}
	back := DecodePCM(f, dst, 2)
	if back[0][0] < 0.49 || back[0][0] > 0.51 {
		t.Fatalf("round trip mismatch: got %v", back[0][0])
	}
}

func TestIMA4BlockFramesMatchesHeader(t *testing.T) {
	// A typical IMA4 block size of 36 bytes (common WAV block align).
	got := IMA4BlockFrames(36)
	want := 1 + (36-4)*2
	if got != want {
		t.Fatalf("IMA4BlockFrames(36) = %d, want %d", got, want)
	}
}

func TestDecodeIMA4BlockNoPanicAndRange(t *testing.T) {
	block := make([]byte, 36)
	block[2] = 10 // valid step index
	frames := IMA4BlockFrames(len(block))
	out := DecodeIMA4Block(block, frames)
	if len(out) != frames {
		t.Fatalf("expected %d frames, got %d", frames, len(out))
	}
	for _, s := range out {
		if s < -1.0001 || s > 1.0001 {
			t.Fatalf("sample out of range: %v", s)
		}
	}
}

func TestDecodeMSADPCMBlockNoPanicAndRange(t *testing.T) {
	block := make([]byte, 14)
	frames := MSADPCMBlockFrames(len(block))
	out := DecodeMSADPCMBlock(block, frames)
	if len(out) != frames {
		t.Fatalf("expected %d frames, got %d", frames, len(out))
	}
	for _, s := range out {
		if s < -1.0001 || s > 1.0001 {
			t.Fatalf("sample out of range: %v", s)
		}
	}
}
