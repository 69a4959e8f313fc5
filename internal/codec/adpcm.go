// SPDX-License-Identifier: GPL-3.0-or-later
package codec

// Block-compressed formats (IMA4, MSADPCM) are decoded a whole block at a
// time; spec §4.1 requires the starting frame to be rounded DOWN to a block
// boundary and the decoder to yield a span starting at the intra-block
// offset, so callers can request an arbitrary frame but always get back a
// block-aligned decode plus the offset into it.

var imaStepTable = [89]int{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17, 19, 21, 23, 25, 28, 31, 34, 37, 41, 45,
	50, 55, 60, 66, 73, 80, 88, 97, 107, 118, 130, 143, 157, 173, 190, 209, 230,
	253, 279, 307, 337, 371, 408, 449, 494, 544, 598, 658, 724, 796, 876, 963,
	1060, 1166, 1282, 1411, 1552, 1707, 1878, 2066, 2272, 2499, 2749, 3024,
	3327, 3660, 4026, 4428, 4871, 5358, 5894, 6484, 7132, 7845, 8630, 9493,
	10442, 11487, 12635, 13899, 15289, 16818, 18500, 20350, 22385, 24623,
	27086, 29794, 32767,
}

var imaIndexTable = [16]int{-1, -1, -1, -1, 2, 4, 6, 8, -1, -1, -1, -1, 2, 4, 6, 8}

// IMA4BlockFrames returns the number of sample frames per channel encoded in
// one IMA4 block of the given block size in bytes (4-byte header + 4-bit
// nibbles, 2 per byte, for the remaining bytes).
func IMA4BlockFrames(blockAlign int) int {
	// One header sample (from the 4-byte header) plus two nibbles per
	// remaining byte.
	return 1 + (blockAlign-4)*2
}

// DecodeIMA4Block decodes one channel's IMA4 block (4-byte header followed by
// nibble-packed deltas) into blockFrames float32 samples in [-1,1].
func DecodeIMA4Block(block []byte, blockFrames int) []float32 {
	out := make([]float32, blockFrames)
	predictor := int32(int16(uint16(block[0]) | uint16(block[1])<<8))
	stepIndex := int(block[2])
	if stepIndex > 88 {
		stepIndex = 88
	}
	out[0] = float32(predictor) / 32768.0

	pos := 1
	for i := 4; i < len(block) && pos < blockFrames; i++ {
		b := block[i]
		for _, nibble := range [2]byte{b & 0x0F, b >> 4} {
			if pos >= blockFrames {
				break
			}
			step := imaStepTable[stepIndex]
			diff := step >> 3
			if nibble&1 != 0 {
				diff += step >> 2
			}
			if nibble&2 != 0 {
				diff += step >> 1
			}
			if nibble&4 != 0 {
				diff += step
			}
			if nibble&8 != 0 {
				predictor -= int32(diff)
			} else {
				predictor += int32(diff)
			}
			if predictor > 32767 {
				predictor = 32767
			} else if predictor < -32768 {
				predictor = -32768
			}
			stepIndex += imaIndexTable[nibble]
			if stepIndex < 0 {
				stepIndex = 0
			} else if stepIndex > 88 {
				stepIndex = 88
			}
			out[pos] = float32(predictor) / 32768.0
			pos++
		}
	}
	return out
}

// msAdpcmCoeff1/2 are the standard Microsoft ADPCM predictor coefficient
// tables (indices 0-6 are the mandatory set every encoder must support).
var msAdpcmCoeff1 = [7]int32{256, 512, 0, 192, 240, 460, 392}
var msAdpcmCoeff2 = [7]int32{0, -256, 0, 64, 0, -208, -232}
var msAdpcmAdaptTable = [16]int32{
	230, 230, 230, 230, 307, 409, 512, 614,
	768, 614, 512, 409, 307, 230, 230, 230,
}

// MSADPCMBlockFrames returns frames per block for a 7-byte-per-channel
// header MSADPCM block.
func MSADPCMBlockFrames(blockAlign int) int {
	return 2 + (blockAlign-7)*2
}

// DecodeMSADPCMBlock decodes one channel's MSADPCM block (7-byte header then
// nibble-packed deltas) into blockFrames float32 samples in [-1,1].
func DecodeMSADPCMBlock(block []byte, blockFrames int) []float32 {
	out := make([]float32, blockFrames)
	predictorIdx := int(block[0])
	if predictorIdx > 6 {
		predictorIdx = 0
	}
	coeff1 := msAdpcmCoeff1[predictorIdx]
	coeff2 := msAdpcmCoeff2[predictorIdx]

	delta := int32(int16(uint16(block[1]) | uint16(block[2])<<8))
	sample1 := int32(int16(uint16(block[3]) | uint16(block[4])<<8))
	sample2 := int32(int16(uint16(block[5]) | uint16(block[6])<<8))

	out[0] = float32(sample2) / 32768.0
	out[1] = float32(sample1) / 32768.0

	pos := 2
	for i := 7; i < len(block) && pos < blockFrames; i++ {
		b := block[i]
		for _, nibble := range [2]byte{b >> 4, b & 0x0F} {
			if pos >= blockFrames {
				break
			}
			signed := int32(nibble)
			if signed >= 8 {
				signed -= 16
			}
			predicted := (sample1*coeff1 + sample2*coeff2) >> 8
			predicted += signed * delta
			if predicted > 32767 {
				predicted = 32767
			} else if predicted < -32768 {
				predicted = -32768
			}

			delta = (delta * msAdpcmAdaptTable[nibble]) >> 8
			if delta < 16 {
				delta = 16
			}

			sample2 = sample1
			sample1 = predicted
			out[pos] = float32(predicted) / 32768.0
			pos++
		}
	}
	return out
}

// BlockAlignFrame rounds a requested starting frame down to the nearest
// block boundary and returns (blockIndex, intraBlockOffset) per spec §4.1/§6.
func BlockAlignFrame(requestedFrame, framesPerBlock int) (blockIndex, intraOffset int) {
	blockIndex = requestedFrame / framesPerBlock
	intraOffset = requestedFrame % framesPerBlock
	return
}
