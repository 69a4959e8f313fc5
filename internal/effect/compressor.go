// SPDX-License-Identifier: GPL-3.0-or-later
package effect

import "math"

// CompressorParams holds the user-settable dynamics parameters.
type CompressorParams struct {
	ThresholdDB float32
	Ratio       float32 // e.g. 4.0 means 4:1
	AttackMS    float32
	ReleaseMS   float32
}

type compressorState struct {
	params     CompressorParams
	envelope   float32
	sampleRate int
	attackCoeff, releaseCoeff float32
}

func NewCompressor(params CompressorParams, sampleRate int) State {
	c := &compressorState{params: params}
	c.DeviceUpdate(sampleRate)
	return c
}

func (c *compressorState) Type() Type { return Compressor }

func (c *compressorState) DeviceUpdate(sampleRate int) {
	c.sampleRate = sampleRate
	c.attackCoeff = timeConstant(c.params.AttackMS, sampleRate)
	c.releaseCoeff = timeConstant(c.params.ReleaseMS, sampleRate)
}

func timeConstant(ms float32, sampleRate int) float32 {
	if ms <= 0 {
		return 0
	}
	return float32(math.Exp(-1.0 / (float64(ms) / 1000.0 * float64(sampleRate))))
}

func (c *compressorState) Process(input, output []float32) {
	for i, in := range input {
		level := float32(math.Abs(float64(in)))
		if level > c.envelope {
			c.envelope = c.attackCoeff*c.envelope + (1-c.attackCoeff)*level
		} else {
			c.envelope = c.releaseCoeff*c.envelope + (1-c.releaseCoeff)*level
		}

		levelDB := linearToDB(c.envelope)
		var gainDB float32
		if levelDB > c.params.ThresholdDB {
			over := levelDB - c.params.ThresholdDB
			gainDB = -over * (1 - 1/c.params.Ratio)
		}
		gain := dbToLinear(gainDB)
		output[i] = in * gain
	}
}

func linearToDB(v float32) float32 {
	if v <= 1e-9 {
		return -180
	}
	return float32(20 * math.Log10(float64(v)))
}

func dbToLinear(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}
