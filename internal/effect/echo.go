// SPDX-License-Identifier: GPL-3.0-or-later
package effect

// EchoParams holds the user-settable echo parameters.
type EchoParams struct {
	DelaySeconds float32
	Feedback     float32 // 0..1
	Wet          float32 // 0..1
}

type echoState struct {
	params EchoParams
	line   delayLine
}

func NewEcho(params EchoParams, sampleRate int) State {
	e := &echoState{params: params}
	e.DeviceUpdate(sampleRate)
	return e
}

func (e *echoState) Type() Type { return Echo }

func (e *echoState) DeviceUpdate(sampleRate int) {
	n := int(e.params.DelaySeconds * float32(sampleRate))
	e.line = newDelayLine(n)
}

func (e *echoState) Process(input, output []float32) {
	n := len(e.line.buf)
	for i, in := range input {
		tapped := e.line.Tap(n - 1)
		fed := in + tapped*e.params.Feedback
		e.line.Write(fed)
		output[i] = in*(1-e.params.Wet) + tapped*e.params.Wet
	}
}
