// SPDX-License-Identifier: GPL-3.0-or-later
package voice

import (
	"github.com/nyxfield/sonance/internal/buffer"
	"github.com/nyxfield/sonance/internal/filter"
	"github.com/nyxfield/sonance/internal/pan"
	"github.com/nyxfield/sonance/internal/resample"
)

// UpdateInput bundles the per-update parameters the mixer supplies to a
// voice (spec §4.6 steps 1-3): current pitch/doppler-adjusted ratio,
// whether the source loops, and the device's target output frame count.
type UpdateInput struct {
	Pitch        float32
	Doppler      float32
	SourceRate   int
	DeviceRate   int
	OutputFrames int
	Looping      bool
	// DirectHFScale is the direct filter's combined HF/LF shelf factor
	// (spec §4.6 step 5's "direct low-pass/high-pass shelf pair"),
	// computed by the engine from the source's DirectFilter gains.
	DirectHFScale float32
}

// UpdateOutput is what the one-update pipeline produces: the resampled,
// direct-filtered per-channel frames ready for panning/mixing, plus
// whether the voice ran out of buffered input and should stop.
type UpdateOutput struct {
	Resampled []([]float32) // per channel, len == OutputFrames (silence past the end of the queue)
	Stopped   bool
}

// Update runs one full mixing-kernel pass (spec §4.6 steps 2-6): compute
// step, gather required input honoring loop/item boundaries, apply the
// direct low/high shelf pair, then resample to the device rate. Gain
// ramping and send mixing (step 7) are the caller's responsibility via
// MixInto, since they depend on the destination accumulation buffers the
// voice itself does not own.
func (v *Voice) Update(in UpdateInput) UpdateOutput {
	pitch := in.Pitch
	if in.Doppler > 0 {
		pitch *= in.Doppler
	}
	v.Step = resample.Step(float64(in.SourceRate), float64(in.DeviceRate), float64(pitch))

	prefetch := v.Resampler.History() + v.Resampler.Lookahead()
	requiredInput := int((uint64(in.OutputFrames)*uint64(v.Step)+uint64(v.PositionFrac))>>resample.FractionBits) + prefetch

	gathered, stopped := v.gatherFrames(requiredInput, in.Looping)
	for ch := range gathered {
		// Past the end of a non-looping queue the kernel reads silence.
		if short := requiredInput - len(gathered[ch]); short > 0 {
			gathered[ch] = append(gathered[ch], make([]float32, short)...)
		}
	}

	hfScale := in.DirectHFScale
	if hfScale == 0 {
		hfScale = 1.0
	}

	resampled := make([][]float32, v.NumChannels)
	for ch := 0; ch < v.NumChannels && ch < len(gathered); ch++ {
		withHistory := append(append([]float32{}, v.History[ch]...), gathered[ch]...)

		filtered := append([]float32{}, withHistory...)
		v.Direct.Splitter.ApplyHFScale(filtered, hfScale)

		out, newFrac, consumed := resample.Resample(v.Resampler, filtered, v.Resampler.History(), v.PositionFrac, v.Step, in.OutputFrames)
		resampled[ch] = out

		histLen := v.Resampler.History()
		if histLen > 0 && len(gathered[ch]) >= histLen {
			histStart := len(gathered[ch]) - histLen
			copy(v.History[ch], gathered[ch][histStart:])
		}
		_ = consumed
		v.PositionFrac = newFrac
	}

	return UpdateOutput{Resampled: resampled, Stopped: stopped}
}

// gatherFrames reads up to count frames starting at the voice's current
// item/position, walking item.Next on boundary, wrapping to the loop
// start item when Looping is set and the loop end is reached, and
// skipping zero-length items (spec §4.6 edge case). Returns per-channel
// planar frames (possibly fewer than count if the queue ran out) and
// whether the voice hit end-of-queue without looping.
func (v *Voice) gatherFrames(count int, looping bool) ([][]float32, bool) {
	out := make([][]float32, v.NumChannels)
	for i := range out {
		out[i] = make([]float32, 0, count)
	}

	item := v.Item
	pos := v.Position
	stopped := false

	for len(out) > 0 && len(out[0]) < count {
		if item == nil {
			stopped = true
			break
		}
		if item.IsZeroLength() {
			item = item.Next
			pos = 0
			continue
		}

		remaining := item.MaxSamples - pos
		if remaining <= 0 {
			if looping && v.LoopStartItem != nil {
				item = v.LoopStartItem
				pos = 0
				continue
			}
			item = item.Next
			pos = 0
			continue
		}

		need := count - len(out[0])
		take := remaining
		if take > need {
			take = need
		}

		ch := 0
		for _, buf := range item.Buffers {
			for c := range buf.Samples {
				if ch >= len(out) {
					break
				}
				end := pos + take
				if end > len(buf.Samples[c]) {
					end = len(buf.Samples[c])
				}
				if pos < end {
					out[ch] = append(out[ch], buf.Samples[c][pos:end]...)
				}
				ch++
			}
		}
		pos += take

		if pos >= item.MaxSamples {
			if looping && v.LoopStartItem != nil {
				item = v.LoopStartItem
			} else {
				item = item.Next
			}
			pos = 0
		}
	}

	v.Item = item
	v.Position = pos
	return out, stopped
}

// MixHRTF convolves each input channel with the voice's per-channel HRTF
// state toward targetLeft/targetRight (spec §4.5's headphone-mode path)
// and accumulates the result into the stereo destination buffers. The IR
// target is re-set every call, so direction changes ramp at block rate
// (one HRTFState.Step per update) rather than sample-accurate — a
// documented coarsening of spec §4.5's per-sample ramp, acceptable at
// typical device update sizes.
func (v *Voice) MixHRTF(dstL, dstR []float32, src [][]float32, targetLeft, targetRight pan.HRTFIR, gain float32) {
	if len(v.HRTF) < len(src) {
		grown := make([]pan.HRTFState, len(src))
		copy(grown, v.HRTF)
		v.HRTF = grown
	}
	if len(v.HRTFHistory) < len(src) {
		grown := make([][]float32, len(src))
		copy(grown, v.HRTFHistory)
		for i := range grown {
			if grown[i] == nil {
				grown[i] = make([]float32, pan.MaxHRTFDelay)
			}
		}
		v.HRTFHistory = grown
	}

	for ch, inCh := range src {
		v.HRTF[ch].SetTarget(targetLeft, targetRight)
		left, right := v.HRTF[ch].Step()

		outL := make([]float32, len(inCh))
		outR := make([]float32, len(inCh))
		pan.ApplyIR(outL, inCh, v.HRTFHistory[ch], left)
		pan.ApplyIR(outR, inCh, v.HRTFHistory[ch], right)

		for i := range inCh {
			if i < len(dstL) {
				dstL[i] += outL[i] * gain
			}
			if i < len(dstR) {
				dstR[i] += outR[i] * gain
			}
		}

		v.HRTFHistory[ch] = appendHistory(v.HRTFHistory[ch], inCh)
	}
}

// appendHistory keeps the trailing len(hist) samples of the concatenation
// of hist and in, for carrying ApplyIR's left context across update blocks.
func appendHistory(hist, in []float32) []float32 {
	n := len(hist)
	if n == 0 {
		return hist
	}
	if len(in) >= n {
		return append([]float32{}, in[len(in)-n:]...)
	}
	keep := n - len(in)
	out := append([]float32{}, hist[len(hist)-keep:]...)
	return append(out, in...)
}

// MixInto computes the ambisonic gain vector for a target (direct or a
// send) from the panner's coefficients, linearly ramps from the target's
// stored current gain to the new target gain over one update (spec §4.6
// step 7b), and accumulates the ramped, filtered signal into dst. nfc, if
// non-nil, is the voice's per-channel near-field-compensation filter bank
// (spec §4.9 "near-field compensation"): it is applied to the first-order
// directional channels only (index 1..3 — Y, Z, X), never to the
// omnidirectional W channel, since NFC models the extra bass boost of a
// source close enough that its wavefront curvature matters, which has no
// direction-independent component.
func MixInto(dst [][]float32, src []([]float32), t *Target, coeffs [pan.MaxAmbiCoeffs]float32, gain float32, nfc *[MaxOutputChannels]filter.Biquad) {
	newTargets := pan.MixMatrixGains(coeffs, gain)
	frames := 0
	if len(src) > 0 {
		frames = len(src[0])
	}

	// Step 7c: apply per-send low/high shelves before mixing into the
	// target's input, in place on a scratch copy of each input channel.
	shelved := make([][]float32, len(src))
	for i, inCh := range src {
		shelved[i] = append([]float32{}, inCh...)
		t.LowShelf.Process(shelved[i], shelved[i])
		t.HighShelf.Process(shelved[i], shelved[i])
	}
	src = shelved

	for ch := 0; ch < pan.MaxAmbiCoeffs && ch < len(dst); ch++ {
		t.TargetGain[ch] = newTargets[ch]
		cur := t.CurrentGain[ch]
		target := t.TargetGain[ch]
		step := float32(0)
		if frames > 0 {
			step = (target - cur) / float32(frames)
		}
		contrib := make([]float32, frames)
		for i := 0; i < frames && i < len(dst[ch]); i++ {
			g := cur + step*float32(i)
			var sum float32
			for _, inCh := range src {
				if i < len(inCh) {
					sum += inCh[i]
				}
			}
			contrib[i] = sum * g
		}
		if nfc != nil && ch >= 1 && ch < len(nfc) {
			nfc[ch].Process(contrib, contrib)
		}
		for i := 0; i < frames && i < len(dst[ch]); i++ {
			dst[ch][i] += contrib[i]
		}
		t.CurrentGain[ch] = target
	}
}
