// SPDX-License-Identifier: GPL-3.0-or-later
package effect

import (
	"math"

	"github.com/nyxfield/sonance/internal/filter"
)

// AutowahParams holds the envelope-follower-driven band-pass sweep
// parameters.
type AutowahParams struct {
	Sensitivity float32
	AttackMS    float32
	ReleaseMS   float32
	BaseFreq    float32
	SweepRange  float32 // Hz added at full envelope
	RcpQ        float32
}

type autowahState struct {
	params      AutowahParams
	bp          filter.Biquad
	envelope    float32
	attackCoeff, releaseCoeff float32
	sampleRate  int
}

func NewAutowah(params AutowahParams, sampleRate int) State {
	a := &autowahState{params: params}
	a.DeviceUpdate(sampleRate)
	return a
}

func (a *autowahState) Type() Type { return Autowah }

func (a *autowahState) DeviceUpdate(sampleRate int) {
	a.sampleRate = sampleRate
	a.attackCoeff = timeConstant(a.params.AttackMS, sampleRate)
	a.releaseCoeff = timeConstant(a.params.ReleaseMS, sampleRate)
}

func (a *autowahState) Process(input, output []float32) {
	for i, in := range input {
		level := float32(math.Abs(float64(in)))
		if level > a.envelope {
			a.envelope = a.attackCoeff*a.envelope + (1-a.attackCoeff)*level
		} else {
			a.envelope = a.releaseCoeff*a.envelope + (1-a.releaseCoeff)*level
		}
		freq := a.params.BaseFreq + a.envelope*a.params.Sensitivity*a.params.SweepRange
		if freq <= 0 {
			freq = 1
		}
		a.bp.SetParams(filter.BandPass, 1.0, freq/float32(a.sampleRate), a.params.RcpQ)
		var tmp [1]float32
		a.bp.Process(tmp[:], []float32{in})
		output[i] = tmp[0]
	}
}
