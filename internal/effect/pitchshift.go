// SPDX-License-Identifier: GPL-3.0-or-later
package effect

// PitchShifterParams holds the pitch ratio (1.0 = unchanged, 2.0 = octave
// up, 0.5 = octave down).
type PitchShifterParams struct {
	Ratio float32
}

// pitchShiftState implements a classic two-tap crossfaded delay-line
// pitch shifter: a single write head and two read heads advancing at
// `ratio` speed, `windowSamples` apart, crossfaded with a triangular
// window to hide the seam each time a head wraps. This is the standard
// lightweight alternative to a full phase vocoder and is the documented
// reduced-fidelity choice for this effect (see DESIGN.md).
type pitchShiftState struct {
	params        PitchShifterParams
	buf           []float32
	writePos      int
	readPos       [2]float64
	windowSamples int
}

func NewPitchShifter(params PitchShifterParams, sampleRate int) State {
	p := &pitchShiftState{params: params}
	p.DeviceUpdate(sampleRate)
	return p
}

func (p *pitchShiftState) Type() Type { return PitchShifter }

func (p *pitchShiftState) DeviceUpdate(sampleRate int) {
	p.windowSamples = samplesFor(50, sampleRate) // 50ms grain
	p.buf = make([]float32, maxInt(p.windowSamples*4, 4))
	p.readPos[0] = 0
	p.readPos[1] = float64(p.windowSamples)
}

func (p *pitchShiftState) Process(input, output []float32) {
	n := len(p.buf)
	for i, in := range input {
		p.buf[p.writePos] = in
		p.writePos = (p.writePos + 1) % n

		var sum float32
		for h := 0; h < 2; h++ {
			idx := int(p.readPos[h]) % n
			if idx < 0 {
				idx += n
			}
			frac := p.windowSamples - (idx % p.windowSamples)
			weight := triangularWindow(frac, p.windowSamples)
			sum += p.buf[idx] * weight

			p.readPos[h] += float64(p.params.Ratio)
			if p.readPos[h] >= float64(n) {
				p.readPos[h] -= float64(n)
			}
		}
		output[i] = sum
	}
}

func triangularWindow(pos, window int) float32 {
	if window <= 0 {
		return 1
	}
	half := float32(window) / 2
	d := float32(pos)
	if d > half {
		d = float32(window) - d
	}
	return d / half
}
