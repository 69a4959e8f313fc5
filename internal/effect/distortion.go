// SPDX-License-Identifier: GPL-3.0-or-later
package effect

import "math"

// DistortionParams holds the user-settable drive/mix for tanh
// waveshaping, the same soft-clip the teacher applies to its driven
// signal (audio_chip.go: `sample = float32(math.Tanh(float64(driven)))`).
type DistortionParams struct {
	Drive float32
	Wet   float32
}

type distortionState struct {
	params DistortionParams
}

func NewDistortion(params DistortionParams, sampleRate int) State {
	return &distortionState{params: params}
}

func (d *distortionState) Type() Type { return Distortion }

func (d *distortionState) DeviceUpdate(sampleRate int) {}

func (d *distortionState) Process(input, output []float32) {
	drive := d.params.Drive
	if drive <= 0 {
		drive = 1
	}
	for i, in := range input {
		driven := in * drive
		shaped := float32(math.Tanh(float64(driven)))
		output[i] = in*(1-d.params.Wet) + shaped*d.params.Wet
	}
}
