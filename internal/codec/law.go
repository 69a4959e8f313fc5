// SPDX-License-Identifier: GPL-3.0-or-later
package codec

import "math"

// muLawToI16 and aLawToI16 are standard ITU-T G.711 decode tables, generated
// once at package init rather than hand-transcribed (the teacher generates
// its noise LFSR state at init time too; the shape — compute once, index at
// decode time — is the grounding here, since _teacher_ref/audio_chip.go has
// no native companding need of its own).
var muLawToI16 [256]int16
var aLawToI16 [256]int16

const (
	muLawBias = 0x84
	muLawClip = 8159
)

func init() {
	for i := 0; i < 256; i++ {
		muLawToI16[i] = decodeMuLawSample(byte(i))
		aLawToI16[i] = decodeALawSample(byte(i))
	}
}

func decodeMuLawSample(b byte) int16 {
	b = ^b
	sign := b & 0x80
	exponent := (b >> 4) & 0x07
	mantissa := b & 0x0F
	sample := ((int32(mantissa) << 3) + muLawBias) << uint(exponent)
	sample -= muLawBias
	if sign != 0 {
		sample = -sample
	}
	if sample > 32767 {
		sample = 32767
	} else if sample < -32768 {
		sample = -32768
	}
	return int16(sample)
}

func decodeALawSample(b byte) int16 {
	b ^= 0x55
	sign := b & 0x80
	exponent := (b >> 4) & 0x07
	mantissa := b & 0x0F
	var sample int32
	if exponent == 0 {
		sample = (int32(mantissa) << 4) + 8
	} else {
		sample = ((int32(mantissa) << 4) + 0x108) << uint(exponent-1)
	}
	if sign == 0 {
		sample = -sample
	}
	return int16(sample)
}

// EncodeInterleaved writes planar float32 mixer output back into a storage
// format byte buffer, little-endian, the reverse of DecodePCM for the U8,
// I16 and F32 sample types; for any other sample type dst is left
// untouched. Used by the device's output stage (spec §4.1 "PCM
// output encoding that constitute the mixer's interface to ... the device").
func EncodeInterleaved(st SampleType, dst []byte, planar [][]float32, frames int) {
	nch := len(planar)
	switch st {
	case U8:
		for i := 0; i < frames; i++ {
			for c := 0; c < nch; c++ {
				v := clamp(planar[c][i], -1, 1)
				dst[i*nch+c] = byte(v*127 + 128)
			}
		}
	case I16:
		for i := 0; i < frames; i++ {
			for c := 0; c < nch; c++ {
				v := clamp(planar[c][i], -1, 1)
				s := int16(v * 32767)
				off := (i*nch + c) * 2
				dst[off] = byte(s)
				dst[off+1] = byte(s >> 8)
			}
		}
	case F32:
		for i := 0; i < frames; i++ {
			for c := 0; c < nch; c++ {
				v := planar[c][i]
				off := (i*nch + c) * 4
				putFloat32LE(dst[off:], v)
			}
		}
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func putFloat32LE(b []byte, f float32) {
	bits := math.Float32bits(f)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
}
