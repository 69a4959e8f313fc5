// SPDX-License-Identifier: GPL-3.0-or-later
package effect

import "math"

// ChorusParams holds the user-settable chorus parameters.
type ChorusParams struct {
	RateHz     float32
	DepthMS    float32
	BaseDelay  float32 // ms
	Feedback   float32
	Wet        float32
}

type chorusState struct {
	params     ChorusParams
	line       delayLine
	sampleRate int
	phase      float64
}

func NewChorus(params ChorusParams, sampleRate int) State {
	c := &chorusState{params: params}
	c.DeviceUpdate(sampleRate)
	return c
}

func (c *chorusState) Type() Type { return Chorus }

func (c *chorusState) DeviceUpdate(sampleRate int) {
	c.sampleRate = sampleRate
	maxDelayMS := c.params.BaseDelay + c.params.DepthMS + 1
	n := samplesFor(maxDelayMS, sampleRate)
	c.line = newDelayLine(n)
}

func (c *chorusState) Process(input, output []float32) {
	phaseInc := 2 * math.Pi * float64(c.params.RateHz) / float64(c.sampleRate)
	for i, in := range input {
		lfo := float32(math.Sin(c.phase))
		delayMS := c.params.BaseDelay + lfo*c.params.DepthMS
		offset := int(delayMS * float32(c.sampleRate) / 1000.0)
		if offset >= len(c.line.buf) {
			offset = len(c.line.buf) - 1
		}
		if offset < 0 {
			offset = 0
		}
		tapped := c.line.Tap(offset)
		c.line.Write(in + tapped*c.params.Feedback)
		output[i] = in*(1-c.params.Wet) + tapped*c.params.Wet

		c.phase += phaseInc
		if c.phase > 2*math.Pi {
			c.phase -= 2 * math.Pi
		}
	}
}
