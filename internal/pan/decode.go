// SPDX-License-Identifier: GPL-3.0-or-later
package pan

import (
	"math"

	"github.com/nyxfield/sonance/internal/codec"
)

// speaker is one output channel's nominal direction, azimuth in degrees
// from straight ahead (-Z in the panner's convention), positive toward the
// listener's right (+X), so left-side speakers have negative azimuths.
type speaker struct {
	azimuthDeg, elevationDeg float32
}

// speakerLayouts gives each supported codec.Layout's nominal speaker
// directions, the standard ITU arrangement used by a first-order
// ambisonic decoder's per-speaker sampling matrix.
var speakerLayouts = map[codec.Layout][]speaker{
	codec.Mono:   {{0, 0}},
	codec.Stereo: {{-30, 0}, {30, 0}},
	codec.Rear:   {{-150, 0}, {150, 0}},
	codec.Quad:   {{-45, 0}, {45, 0}, {-135, 0}, {135, 0}},
	codec.Layout51: {
		{0, 0}, {-30, 0}, {30, 0}, {0, 0} /*LFE, omni-ish*/, {-110, 0}, {110, 0},
	},
	codec.Layout61: {
		{0, 0}, {-30, 0}, {30, 0}, {0, 0}, {180, 0}, {-110, 0}, {110, 0},
	},
	codec.Layout71: {
		{0, 0}, {-30, 0}, {30, 0}, {0, 0}, {-150, 0}, {150, 0}, {-110, 0}, {110, 0},
	},
}

// DecodeAmbisonic samples a first-order ambisonic B-format bus (W/Y/Z/X
// order, matching AmbiCoeffs) down to the given output layout's speaker
// feeds. Each speaker sums the omnidirectional W term with an equal-power
// contribution from the left/right (X) and up/down (Y) components resolved
// along its azimuth/elevation — the same sin-weighted projection openal-
// soft's B-format decoder panning matrix uses for horizontal-only speaker
// rings. Front/back (Z) is intentionally not decoded: a speaker ring with
// no rear or height channels (mono, stereo, quad-at-ear-level) cannot
// reproduce depth, so only the components a real layout can render are
// given weight; a full-sphere decoder would add a Z term the same way.
func DecodeAmbisonic(buses [MaxAmbiCoeffs][]float32, layout codec.Layout) [][]float32 {
	speakers, ok := speakerLayouts[layout]
	if !ok {
		speakers = speakerLayouts[codec.Stereo]
	}
	frames := 0
	for _, b := range buses {
		if len(b) > frames {
			frames = len(b)
		}
	}

	const sqrt2 = 1.4142135
	const sqrt3 = 1.7320508
	n := len(speakers)
	wScale := float32(1)
	if n > 0 {
		wScale = 1 / float32(math.Sqrt(float64(n)))
	}

	out := make([][]float32, n)
	for si, sp := range speakers {
		sinAz := float32(math.Sin(float64(sp.azimuthDeg) * math.Pi / 180))
		sinEl := float32(math.Sin(float64(sp.elevationDeg) * math.Pi / 180))
		ch := make([]float32, frames)
		for i := 0; i < frames; i++ {
			var w, x, y float32
			if i < len(buses[0]) {
				w = buses[0][i]
			}
			if i < len(buses[3]) {
				x = buses[3][i] / sqrt3
			}
			if i < len(buses[1]) {
				y = buses[1][i] / sqrt3
			}
			ch[i] = w*wScale + sqrt2*(x*sinAz+y*sinEl)
		}
		out[si] = ch
	}
	return out
}
