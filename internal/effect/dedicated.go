// SPDX-License-Identifier: GPL-3.0-or-later
package effect

// DedicatedParams holds the gain the slot applies to its input. The
// slot's output is mixed like every other effect slot's; it is not
// routed to a separate device channel and does not bypass the ambisonic
// dry mix.
type DedicatedParams struct {
	Gain float32
}

type dedicatedState struct {
	params DedicatedParams
}

func NewDedicated(params DedicatedParams) State {
	return &dedicatedState{params: params}
}

func (d *dedicatedState) Type() Type { return Dedicated }

func (d *dedicatedState) DeviceUpdate(sampleRate int) {}

func (d *dedicatedState) Process(input, output []float32) {
	for i, in := range input {
		output[i] = in * d.params.Gain
	}
}
