// SPDX-License-Identifier: GPL-3.0-or-later
package effect

import "github.com/nyxfield/sonance/internal/filter"

// EQParams holds a three-band parametric EQ: low shelf, mid peaking, high
// shelf, reusing internal/filter's biquad designs (spec §4.3).
type EQParams struct {
	LowGain, LowFreq   float32
	MidGain, MidFreq, MidRcpQ float32
	HighGain, HighFreq float32
}

type eqState struct {
	params     EQParams
	low, mid, high filter.Biquad
	sampleRate int
}

func NewEQ(params EQParams, sampleRate int) State {
	e := &eqState{params: params}
	e.DeviceUpdate(sampleRate)
	return e
}

func (e *eqState) Type() Type { return EQ }

func (e *eqState) DeviceUpdate(sampleRate int) {
	e.sampleRate = sampleRate
	e.low.SetParams(filter.LowShelf, e.params.LowGain, e.params.LowFreq/float32(sampleRate), 0.7071)
	e.mid.SetParams(filter.Peaking, e.params.MidGain, e.params.MidFreq/float32(sampleRate), e.params.MidRcpQ)
	e.high.SetParams(filter.HighShelf, e.params.HighGain, e.params.HighFreq/float32(sampleRate), 0.7071)
}

func (e *eqState) Process(input, output []float32) {
	e.low.Process(output, input)
	e.mid.Process(output, output)
	e.high.Process(output, output)
}
