// SPDX-License-Identifier: GPL-3.0-or-later
package resample

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/singleflight"
)

// bsinc kernel tables are quantized-phase Kaiser-windowed sinc filters,
// generated offline in openal-soft (common/bsinc_tables.cpp) and here
// generated lazily at first use and memoized — Design Note §9: "generate at
// build time ... otherwise at first device open and memoize."
// golang.org/x/sync/singleflight collapses concurrent first-use generation
// requests from multiple devices opening at once into a single computation.
//
// Simplification vs. openal-soft: the original widens the kernel (more taps)
// per downsampling scale tier. This implementation generates one kernel
// width per Kind (12 or 24 taps) and reuses it across scale tiers — adequate
// stopband rejection for the ratios this mixer targets, but not
// per-scale-optimal. scaleIndexForStep is kept as the seam where a true
// per-scale table set would plug in (bsincKernel's scale argument).

const (
	phaseCount    = 32 // quantized fractional-phase steps per kernel
	bsincMaxScale = 4  // widest downsampling scale tier
	kaiserBeta    = 9.0
	stopbandDB    = 60.0
)

var (
	kernelGroup singleflight.Group
	kernelCache sync.Map // key: cacheKey -> [][]float32 (per scale, flattened [phase][tap])
)

type cacheKey struct {
	kind Kind
	taps int
}

// bsincKernel returns the tap weights for (kind, scale, phase), generating
// and memoizing the whole per-kind table on first access.
func bsincKernel(kind Kind, scale, phase int) []float32 {
	taps := kind.History() + kind.Lookahead()
	key := cacheKey{kind: baseKind(kind), taps: taps}

	tableAny, _, _ := kernelGroup.Do(tableKeyString(key), func() (interface{}, error) {
		if v, ok := kernelCache.Load(key); ok {
			return v, nil
		}
		table := generateBSincTable(taps)
		kernelCache.Store(key, table)
		return table, nil
	})

	table := tableAny.([][]float32)
	_ = scale // scale tiers currently share one kernel width, see package doc
	if phase < 0 {
		phase = 0
	}
	if phase >= phaseCount {
		phase = phaseCount - 1
	}
	return table[phase]
}

func baseKind(k Kind) Kind {
	switch k {
	case FastBSinc12:
		return BSinc12
	case FastBSinc24:
		return BSinc24
	default:
		return k
	}
}

func tableKeyString(k cacheKey) string {
	return fmt.Sprintf("bsinc:%d:%d", k.kind, k.taps)
}

// generateBSincTable builds a phaseCount x taps Kaiser-windowed sinc kernel
// table, one row per quantized fractional phase, per openal-soft's
// bsinc_tables.cpp generation approach (Kaiser window to a target stopband
// rejection, spec §4.2's "60 dB").
func generateBSincTable(taps int) [][]float32 {
	table := make([][]float32, phaseCount)
	half := float64(taps) / 2.0
	beta := kaiserBetaForStopband(stopbandDB)

	for p := 0; p < phaseCount; p++ {
		frac := float64(p) / float64(phaseCount)
		row := make([]float32, taps)
		var sum float64
		for t := 0; t < taps; t++ {
			x := float64(t) - half + 1 - frac
			s := sinc(x)
			w := kaiserWindow(x+half-1, float64(taps), beta)
			v := s * w
			row[t] = float32(v)
			sum += v
		}
		if sum != 0 {
			for t := range row {
				row[t] = float32(float64(row[t]) / sum)
			}
		}
		table[p] = row
	}
	return table
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

func kaiserWindow(n, length, beta float64) float64 {
	alpha := (length - 1) / 2.0
	if alpha == 0 {
		return 1
	}
	r := (n - alpha) / alpha
	arg := 1 - r*r
	if arg < 0 {
		arg = 0
	}
	return besselI0(beta*math.Sqrt(arg)) / besselI0(beta)
}

// kaiserBetaForStopband approximates the Kaiser beta parameter for a target
// stopband attenuation in dB (Kaiser's own empirical formula).
func kaiserBetaForStopband(dB float64) float64 {
	switch {
	case dB > 50:
		return 0.1102 * (dB - 8.7)
	case dB >= 21:
		return 0.5842*math.Pow(dB-21, 0.4) + 0.07886*(dB-21)
	default:
		return 0
	}
}

// besselI0 is the zeroth-order modified Bessel function of the first kind,
// via its standard power series (sufficient precision for window design).
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	halfX := x / 2
	for k := 1; k < 30; k++ {
		term *= (halfX / float64(k)) * (halfX / float64(k))
		sum += term
		if term < 1e-12*sum {
			break
		}
	}
	return sum
}
