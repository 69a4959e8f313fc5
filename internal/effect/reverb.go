// SPDX-License-Identifier: GPL-3.0-or-later
package effect

// ReverbParams holds the user-settable parameters of the reverb effect.
type ReverbParams struct {
	Density   float32 // 0..1, scales comb delay feedback
	DecayTime float32 // seconds, scales comb decay
	Wet       float32 // wet/dry mix, 0..1
}

type combFilter struct {
	buf   []float32
	pos   int
	decay float32
}

type allpassFilter struct {
	buf   []float32
	pos   int
	coeff float32
}

// reverbState is a classic Schroeder reverberator: pre-delay, four
// parallel prime-length comb filters, two series allpass diffusers,
// directly carried from the teacher's applyReverb (audio_chip.go),
// generalized to the slot's swappable-effect contract and arbitrary
// sample rate (delay lengths scale with sampleRate instead of the
// teacher's fixed constants).
type reverbState struct {
	params ReverbParams

	preDelay    []float32
	preDelayPos int

	combs    [4]combFilter
	allpass  [2]allpassFilter
	sampleRate int
}

// combDelayMS/combDecayBase and allpassDelayMS mirror the teacher's
// prime-length delay choices (1687/1601/2053/2251 samples @ some
// reference rate, 389/307 for allpass), expressed as time so they scale
// with the device's actual sample rate.
var combDelayMS = [4]float32{38.3, 36.3, 46.6, 51.1}
var combDecayBase = [4]float32{0.97, 0.95, 0.93, 0.91}
var allpassDelayMS = [2]float32{8.8, 7.0}

func NewReverb(params ReverbParams, sampleRate int) State {
	r := &reverbState{params: params}
	r.DeviceUpdate(sampleRate)
	return r
}

func (r *reverbState) Type() Type { return Reverb }

func (r *reverbState) DeviceUpdate(sampleRate int) {
	r.sampleRate = sampleRate
	preDelaySamples := samplesFor(8.0, sampleRate)
	r.preDelay = make([]float32, maxInt(preDelaySamples, 1))
	r.preDelayPos = 0

	decayScale := 0.5 + r.params.DecayTime*0.5
	for i := range r.combs {
		n := maxInt(samplesFor(combDelayMS[i], sampleRate), 1)
		r.combs[i] = combFilter{
			buf:   make([]float32, n),
			decay: combDecayBase[i] * decayScale * (0.5 + r.params.Density*0.5),
		}
	}
	for i := range r.allpass {
		n := maxInt(samplesFor(allpassDelayMS[i], sampleRate), 1)
		r.allpass[i] = allpassFilter{buf: make([]float32, n), coeff: 0.5}
	}
}

func (r *reverbState) Process(input, output []float32) {
	for i, in := range input {
		delayed := r.preDelay[r.preDelayPos]
		r.preDelay[r.preDelayPos] = in
		r.preDelayPos = (r.preDelayPos + 1) % len(r.preDelay)

		var out float32
		for c := range r.combs {
			comb := &r.combs[c]
			cDelay := comb.buf[comb.pos]
			comb.buf[comb.pos] = delayed + cDelay*comb.decay
			out += cDelay
			comb.pos = (comb.pos + 1) % len(comb.buf)
		}

		for a := range r.allpass {
			ap := &r.allpass[a]
			aDelay := ap.buf[ap.pos]
			ap.buf[ap.pos] = out + aDelay*ap.coeff
			out = aDelay - out
			ap.pos = (ap.pos + 1) % len(ap.buf)
		}

		output[i] = in*(1-r.params.Wet) + out*r.params.Wet
	}
}

func samplesFor(ms float32, sampleRate int) int {
	return int(ms * float32(sampleRate) / 1000.0)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
