// SPDX-License-Identifier: GPL-3.0-or-later
package effect

import "math"

// FlangerParams holds the user-settable flanger parameters — the same
// modulated short-delay shape as chorus, but with a much shorter base
// delay and higher feedback for the characteristic comb-filter sweep.
type FlangerParams struct {
	RateHz    float32
	DepthMS   float32
	BaseDelay float32 // ms, typically < 10
	Feedback  float32
	Wet       float32
}

type flangerState struct {
	params     FlangerParams
	line       delayLine
	sampleRate int
	phase      float64
}

func NewFlanger(params FlangerParams, sampleRate int) State {
	f := &flangerState{params: params}
	f.DeviceUpdate(sampleRate)
	return f
}

func (f *flangerState) Type() Type { return Flanger }

func (f *flangerState) DeviceUpdate(sampleRate int) {
	f.sampleRate = sampleRate
	maxDelayMS := f.params.BaseDelay + f.params.DepthMS + 1
	f.line = newDelayLine(samplesFor(maxDelayMS, sampleRate))
}

func (f *flangerState) Process(input, output []float32) {
	phaseInc := 2 * math.Pi * float64(f.params.RateHz) / float64(f.sampleRate)
	for i, in := range input {
		lfo := float32(math.Sin(f.phase))
		delayMS := f.params.BaseDelay + (lfo+1)/2*f.params.DepthMS
		offset := samplesFor(delayMS, f.sampleRate)
		if offset >= len(f.line.buf) {
			offset = len(f.line.buf) - 1
		}
		if offset < 0 {
			offset = 0
		}
		tapped := f.line.Tap(offset)
		f.line.Write(in + tapped*f.params.Feedback)
		output[i] = in*(1-f.params.Wet) + tapped*f.params.Wet

		f.phase += phaseInc
		if f.phase > 2*math.Pi {
			f.phase -= 2 * math.Pi
		}
	}
}
