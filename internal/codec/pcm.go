// SPDX-License-Identifier: GPL-3.0-or-later
package codec

import (
	"encoding/binary"
	"math"
)

// DecodePCM converts `frames` frames of interleaved storage data starting at
// frame offset 0 of `src` into planar float32, one []float32 per channel.
// src must already be the relevant byte window (callers slice it).
func DecodePCM(f Format, src []byte, frames int) [][]float32 {
	nch := f.Layout.Channels()
	out := make([][]float32, nch)
	for c := range out {
		out[c] = make([]float32, frames)
	}
	switch f.SampleType {
	case U8:
		for i := 0; i < frames; i++ {
			for c := 0; c < nch; c++ {
				s := src[i*nch+c]
				out[c][i] = (float32(s) - 128.0) / 128.0
			}
		}
	case I16:
		for i := 0; i < frames; i++ {
			for c := 0; c < nch; c++ {
				off := (i*nch + c) * 2
				v := int16(binary.LittleEndian.Uint16(src[off:]))
				out[c][i] = float32(v) / 32768.0
			}
		}
	case I32:
		for i := 0; i < frames; i++ {
			for c := 0; c < nch; c++ {
				off := (i*nch + c) * 4
				v := int32(binary.LittleEndian.Uint32(src[off:]))
				out[c][i] = float32(v) / 2147483648.0
			}
		}
	case F32:
		for i := 0; i < frames; i++ {
			for c := 0; c < nch; c++ {
				off := (i*nch + c) * 4
				bits := binary.LittleEndian.Uint32(src[off:])
				out[c][i] = math.Float32frombits(bits)
			}
		}
	case F64:
		for i := 0; i < frames; i++ {
			for c := 0; c < nch; c++ {
				off := (i*nch + c) * 8
				bits := binary.LittleEndian.Uint64(src[off:])
				out[c][i] = float32(math.Float64frombits(bits))
			}
		}
	case MuLaw:
		for i := 0; i < frames; i++ {
			for c := 0; c < nch; c++ {
				out[c][i] = float32(muLawToI16[src[i*nch+c]]) / 32768.0
			}
		}
	case ALaw:
		for i := 0; i < frames; i++ {
			for c := 0; c < nch; c++ {
				out[c][i] = float32(aLawToI16[src[i*nch+c]]) / 32768.0
			}
		}
	}
	return out
}
