// SPDX-License-Identifier: GPL-3.0-or-later
package effect

import "math"

// RingModulatorParams holds the carrier frequency and waveform shape for
// amplitude modulation by a sine/sawtooth/square carrier.
type RingModulatorParams struct {
	FrequencyHz float32
	HighpassCut float32
	Waveform    RingWaveform
}

type RingWaveform int

const (
	RingSine RingWaveform = iota
	RingSaw
	RingSquare
)

type ringModState struct {
	params     RingModulatorParams
	phase      float64
	sampleRate int
}

func NewRingModulator(params RingModulatorParams, sampleRate int) State {
	r := &ringModState{params: params}
	r.DeviceUpdate(sampleRate)
	return r
}

func (r *ringModState) Type() Type { return RingModulator }

func (r *ringModState) DeviceUpdate(sampleRate int) {
	r.sampleRate = sampleRate
}

func (r *ringModState) Process(input, output []float32) {
	phaseInc := 2 * math.Pi * float64(r.params.FrequencyHz) / float64(r.sampleRate)
	for i, in := range input {
		var carrier float32
		switch r.params.Waveform {
		case RingSaw:
			carrier = float32(2*(r.phase/(2*math.Pi)) - 1)
		case RingSquare:
			if math.Sin(r.phase) >= 0 {
				carrier = 1
			} else {
				carrier = -1
			}
		default:
			carrier = float32(math.Sin(r.phase))
		}
		output[i] = in * carrier

		r.phase += phaseInc
		if r.phase > 2*math.Pi {
			r.phase -= 2 * math.Pi
		}
	}
}
