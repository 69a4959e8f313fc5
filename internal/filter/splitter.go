// SPDX-License-Identifier: GPL-3.0-or-later
package filter

import "math"

// BandSplitter implements the allpass-preserving two-way crossover of spec
// §4.4: lp + hp == allpass(input) sample-for-sample, grounded directly on
// openal-soft's Alc/filters/splitter.cpp.
type BandSplitter struct {
	coeff          float32
	lpZ1, lpZ2     float32
	apZ1           float32
}

// Init designs the splitter for a normalized crossover frequency (f/sampleRate).
func (s *BandSplitter) Init(f0norm float32) {
	w := f0norm * float32(2*math.Pi)
	cw := float32(math.Cos(float64(w)))
	if cw > 1.1920929e-07 { // float32 epsilon, matches openal-soft's guard
		s.coeff = (float32(math.Sin(float64(w))) - 1.0) / cw
	} else {
		s.coeff = cw * -0.5
	}
	s.lpZ1, s.lpZ2, s.apZ1 = 0, 0, 0
}

// Process splits input into hpout (high-pass) and lpout (low-pass), such
// that hpout[i]+lpout[i] equals the signal run through Allpass() alone.
func (s *BandSplitter) Process(hpout, lpout, input []float32) {
	apCoeff := s.coeff
	lpCoeff := s.coeff*0.5 + 0.5
	lpZ1, lpZ2, apZ1 := s.lpZ1, s.lpZ2, s.apZ1

	for i, in := range input {
		d := (in - lpZ1) * lpCoeff
		lpY := lpZ1 + d
		lpZ1 = lpY + d

		d = (lpY - lpZ2) * lpCoeff
		lpY = lpZ2 + d
		lpZ2 = lpY + d

		lpout[i] = lpY

		apY := in*apCoeff + apZ1
		apZ1 = in - apY*apCoeff

		hpout[i] = apY - lpY
	}
	s.lpZ1, s.lpZ2, s.apZ1 = lpZ1, lpZ2, apZ1
}

// ApplyHFScale scales the high-frequency band by hfscale and recombines with
// the low band in place — used for ambisonic HF shelving (spec §4.4).
func (s *BandSplitter) ApplyHFScale(samples []float32, hfscale float32) {
	apCoeff := s.coeff
	lpCoeff := s.coeff*0.5 + 0.5
	lpZ1, lpZ2, apZ1 := s.lpZ1, s.lpZ2, s.apZ1

	for i, in := range samples {
		d := (in - lpZ1) * lpCoeff
		lpY := lpZ1 + d
		lpZ1 = lpY + d

		d = (lpY - lpZ2) * lpCoeff
		lpY = lpZ2 + d
		lpZ2 = lpY + d

		apY := in*apCoeff + apZ1
		apZ1 = in - apY*apCoeff

		samples[i] = (apY-lpY)*hfscale + lpY
	}
	s.lpZ1, s.lpZ2, s.apZ1 = lpZ1, lpZ2, apZ1
}

// Allpass runs the reference allpass alone (stateless across calls, matching
// openal-soft's const applyAllpass which starts z1 at 0 each call) — used to
// validate lp+hp == allpass(input) in tests.
func (s *BandSplitter) Allpass(samples []float32) []float32 {
	out := make([]float32, len(samples))
	coeff := s.coeff
	var z1 float32
	for i, in := range samples {
		o := in*coeff + z1
		z1 = in - o*coeff
		out[i] = o
	}
	return out
}
