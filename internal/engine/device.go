// SPDX-License-Identifier: GPL-3.0-or-later
package engine

import (
	"math"
	"sync/atomic"

	"github.com/nyxfield/sonance/internal/codec"
	"github.com/nyxfield/sonance/internal/effect"
	"github.com/nyxfield/sonance/internal/event"
	"github.com/nyxfield/sonance/internal/filter"
	"github.com/nyxfield/sonance/internal/listener"
	"github.com/nyxfield/sonance/internal/pan"
	"github.com/nyxfield/sonance/internal/resample"
	"github.com/nyxfield/sonance/internal/source"
	"github.com/nyxfield/sonance/internal/voice"
)

// Sink is the minimal surface internal/backend implementations satisfy:
// accept a device-rate, interleaved float32 render for output, and close
// down cleanly. Defined here rather than in internal/backend so backend
// implementations can depend on engine's Device without a dependency
// cycle (spec §6.2's playback device contract, narrowed to Write and
// Close; Device.Pump itself only calls Write).
type Sink interface {
	Write(samples []float32) (int, error)
	Close() error
}

// Device is the render entry point of spec §6.2: it owns the output
// sample rate and channel layout, a single "current" Context (spec
// §6.1's make_current — this implementation supports one live context
// per device rather than an arbitrary set, a documented simplification),
// and pumps fixed-size updates through render into a Sink.
type Device struct {
	ctx atomic.Pointer[Context]

	SampleRate   int
	Layout       codec.Layout
	UpdateFrames int

	// Headphones selects HRTF binaural rendering over ambisonic decode for
	// spatialized sources (spec §4.5's headphone-mode path). Only takes
	// effect when Layout is stereo.
	Headphones bool

	sink Sink

	lastListener listenerSnapshot
}

// NewDevice configures a device for the given output rate/layout/update
// size but does not yet open a backend sink (see SetSink).
func NewDevice(sampleRate int, layout codec.Layout, updateFrames int) *Device {
	return &Device{SampleRate: sampleRate, Layout: layout, UpdateFrames: updateFrames}
}

// MakeCurrent installs ctx (or nil) as the device's active context.
func (d *Device) MakeCurrent(ctx *Context) { d.ctx.Store(ctx) }

// SetSink attaches (or replaces) the backend output sink.
func (d *Device) SetSink(s Sink) { d.sink = s }

// ReadInto renders enough frames to fill dst (a LE float32 byte buffer at
// the device's channel count) and encodes them in place, for pull-driven
// backends whose output API is itself a callback (spec §6.2/Non-goals:
// "the core is pull-driven by the backend", the same shape as an
// io.Reader.Read or oto.Player's Read(p []byte)). Returns len(dst), nil;
// a short or ragged dst (not a whole number of frames) renders the floor
// frame count and zero-fills the remainder.
func (d *Device) ReadInto(dst []byte) (int, error) {
	nch := d.Layout.Channels()
	frameBytes := nch * 4
	if frameBytes == 0 {
		return 0, nil
	}
	frameCount := len(dst) / frameBytes
	samples := d.RenderFrames(frameCount)
	n := encodeFloat32LE(dst, samples)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return len(dst), nil
}

func encodeFloat32LE(dst []byte, samples []float32) int {
	n := 0
	for _, s := range samples {
		if n+4 > len(dst) {
			break
		}
		bits := math.Float32bits(s)
		dst[n] = byte(bits)
		dst[n+1] = byte(bits >> 8)
		dst[n+2] = byte(bits >> 16)
		dst[n+3] = byte(bits >> 24)
		n += 4
	}
	return n
}

// Pump renders and writes fixed-size updates to the attached sink until
// stop is closed — a backend-owned pull loop (the backend's Start()
// spins this up on a dedicated goroutine, matching spec §6.2's "start()
// must eventually begin calling the core's render_samples from a
// dedicated thread"). Returns the first write error encountered, if any,
// so the caller can post a disconnect.
func (d *Device) Pump(stop <-chan struct{}) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}
		samples := d.RenderFrames(d.UpdateFrames)
		if d.sink == nil {
			continue
		}
		if _, err := d.sink.Write(samples); err != nil {
			return err
		}
	}
}

// RenderFrames mixes frameCount frames of the current context's active
// voices into interleaved output samples at the device's channel count,
// per the spec §4.6/§4.9/§4.10 pipeline: per-voice distance/cone/doppler
// attenuation and panning coefficients, resample + direct/send filtering
// + gain-ramped accumulation into an ambisonic dry bus and per-effect-slot
// wet buses (voice.MixInto), effect processing on each wet bus's omni
// channel, a wet-into-dry fold-back, and a final ambisonic decode to the
// device's speaker layout (pan.DecodeAmbisonic).
func (d *Device) RenderFrames(frameCount int) []float32 {
	ctx := d.ctx.Load()
	nch := d.Layout.Channels()
	if ctx == nil {
		return make([]float32, frameCount*nch)
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	d.lastListener = ctx.consumeListener(d.lastListener)

	var dryBus [pan.MaxAmbiCoeffs][]float32
	for i := range dryBus {
		dryBus[i] = make([]float32, frameCount)
	}

	var stereoL, stereoR []float32
	if nch >= 2 {
		stereoL = make([]float32, frameCount)
		stereoR = make([]float32, frameCount)
	}

	wetBuses := make(map[uint32]*[pan.MaxAmbiCoeffs][]float32)
	for id := range ctx.effectSlots.entries {
		bus := &[pan.MaxAmbiCoeffs][]float32{}
		for i := range bus {
			bus[i] = make([]float32, frameCount)
		}
		wetBuses[id] = bus
	}

	for id, e := range ctx.sources.entries {
		if e.src.State() != source.Playing {
			continue
		}
		d.mixOneSource(ctx, id, e, frameCount, &dryBus, wetBuses, stereoL, stereoR)
	}

	for id, slot := range ctx.effectSlots.entries {
		bus := wetBuses[id]
		if bus == nil {
			continue
		}
		st := slot.State()
		if st == nil || st.Type() == effect.Null {
			continue
		}
		wetOut := make([]float32, frameCount)
		st.Process(bus[0], wetOut)
		for i := 0; i < frameCount; i++ {
			dryBus[0][i] += wetOut[i] * slot.InputGain
		}
	}

	decoded := pan.DecodeAmbisonic(dryBus, d.Layout)
	out := make([]float32, frameCount*nch)
	gain := d.lastListener.Listener.Gain
	for ch := 0; ch < nch && ch < len(decoded); ch++ {
		for i := 0; i < frameCount; i++ {
			out[i*nch+ch] = decoded[ch][i] * gain
		}
	}
	if stereoL != nil {
		for i := 0; i < frameCount; i++ {
			out[i*nch+0] += stereoL[i] * gain
			out[i*nch+1] += stereoR[i] * gain
		}
	}
	return out
}

// mixOneSource runs one source's full per-update pipeline: it assigns a
// voice on first play, computes distance/cone/doppler attenuation and
// panning coefficients from the listener pose, runs the voice's resample
// kernel, and mixes the result into the dry bus (or the stereo buses, for
// headphone-mode HRTF and stereo-buffer sources) and any configured
// effect-slot sends.
func (d *Device) mixOneSource(ctx *Context, id uint32, e *sourceEntry, frameCount int, dryBus *[pan.MaxAmbiCoeffs][]float32, wetBuses map[uint32]*[pan.MaxAmbiCoeffs][]float32, stereoL, stereoR []float32) {
	v := ctx.ensureVoice(e)
	if v == nil {
		return
	}
	v.BeginMix()
	defer v.EndMix()

	if v.Item == nil {
		it := e.src.Queue.Head
		v.Item = it
		if e.src.Looping {
			v.LoopStartItem = it
		}
	}

	srcRate := d.SampleRate
	if v.Item != nil && len(v.Item.Buffers) > 0 {
		srcRate = v.Item.Buffers[0].SampleRate
	}

	res := d.spatialize(e.src)

	out := v.Update(voice.UpdateInput{
		Pitch:         e.src.Pitch,
		Doppler:       res.dopplerPitch,
		SourceRate:    srcRate,
		DeviceRate:    d.SampleRate,
		OutputFrames:  frameCount,
		Looping:       e.src.Looping,
		DirectHFScale: e.src.Direct.GainHF,
	})

	gain := clampGain(e.src.GainMaster, e.src.GainMin, e.src.GainMax)

	switch {
	case len(out.Resampled) == 2 && stereoL != nil:
		// A genuinely stereo buffer is not spatialized per-channel through
		// the ambisonic bus; its two channels are split across the output
		// L/R pair by the source's stored stereo-pan angles instead (spec
		// §D's equal-power angle panning for non-ambisonic stereo sources).
		left, right := pan.StereoPanGains(e.src.StereoPanLeft, e.src.StereoPanRight, 0)
		g := gain * res.distGain * res.coneGain * e.src.Direct.Gain
		for i := 0; i < frameCount; i++ {
			if i < len(out.Resampled[0]) {
				stereoL[i] += out.Resampled[0][i] * g * left
			}
			if i < len(out.Resampled[1]) {
				stereoR[i] += out.Resampled[1][i] * g * right
			}
		}
	case d.Headphones && stereoL != nil && !(e.src.DirectChannels || e.src.Spatialize == source.SpatializeNo):
		left, right := pan.SyntheticIR(res.azimuth, res.elevation, d.SampleRate)
		g := gain * res.distGain * res.coneGain * e.src.Direct.Gain
		v.MixHRTF(stereoL, stereoR, out.Resampled, left, right, g)
	default:
		d.setNFC(v, e.src, res)
		voice.MixInto(dryBus[:], out.Resampled, &v.Direct, res.coeffs, gain*e.src.Direct.Gain, &v.NFC)

		for i, send := range e.src.Sends {
			if send.EffectSlotID == 0 {
				continue
			}
			bus := wetBuses[uint32(send.EffectSlotID)]
			if bus == nil {
				continue
			}
			voice.MixInto(bus[:], out.Resampled, &v.Sends[i], res.coeffs, gain*send.Gain, &v.NFC)
		}
	}

	if out.Stopped {
		e.src.FinishQueue()
		ctx.Events.Push(event.Event{Kind: event.SourceStateChanged, SourceID: e.src.ID, State: int(source.Stopped)})
		v.Detach()
		ctx.voices.delete(e.voiceID)
		e.voiceID = 0
	}
}

// setNFC designs the voice's near-field-compensation high-pass (spec §4.9
// "near-field compensation") from the source's current distance: closer
// sources get a lower cutoff (less bass rolled off), modeling the bass
// boost a real nearby sound source's wavefront curvature produces. Applied
// to the first-order directional ambisonic channels only, never W — see
// voice.MixInto.
func (d *Device) setNFC(v *voice.Voice, s *source.Source, res spatialResult) {
	metersPerUnit := s.MetersPerUnit
	if metersPerUnit <= 0 {
		metersPerUnit = 1
	}
	speedOfSound := d.lastListener.Globals.SpeedOfSound
	if speedOfSound <= 0 {
		speedOfSound = 343.3
	}
	nearDist := res.dist*metersPerUnit - s.Radius*metersPerUnit
	if nearDist < 0.1 {
		nearDist = 0.1
	}
	cutoffHz := speedOfSound / (2 * math.Pi * float64(nearDist))
	f0norm := float32(cutoffHz) / float32(d.SampleRate)
	if f0norm < 1e-4 {
		f0norm = 1e-4
	}
	if f0norm > 0.49 {
		f0norm = 0.49
	}
	for ch := 1; ch <= 3; ch++ {
		v.NFC[ch].SetParams(filter.HighPass, 1.0, f0norm, 1.0)
	}
	v.Flags.HasNFC = true
}

// spatialResult bundles everything spatialize derives from the listener
// and source pose for one update: the ambisonic panning coefficients
// (already distance- and cone-attenuated), the doppler pitch multiplier,
// and the raw distance/cone/direction terms the stereo-pan, HRTF, and NFC
// paths need independently of the ambisonic bus.
type spatialResult struct {
	coeffs       [pan.MaxAmbiCoeffs]float32
	dopplerPitch float32
	distGain     float32
	coneGain     float32
	dist         float32
	azimuth      float32
	elevation    float32
}

// spatialize computes the ambisonic panning coefficients and the
// doppler-adjusted pitch multiplier for a source against the listener's
// current pose (spec §4.9). Non-spatialized (direct-channel) sources get
// an omni coefficient vector and unity doppler/distance/cone terms.
func (d *Device) spatialize(s *source.Source) spatialResult {
	if s.DirectChannels || s.Spatialize == source.SpatializeNo {
		return spatialResult{coeffs: [pan.MaxAmbiCoeffs]float32{1, 0, 0, 0}, dopplerPitch: 1.0, distGain: 1, coneGain: 1}
	}

	lp := d.lastListener.Listener
	globals := d.lastListener.Globals
	lx, ly, lz := lp.PositionX, lp.PositionY, lp.PositionZ
	sx, sy, sz := s.PositionX, s.PositionY, s.PositionZ
	if s.HeadRelative {
		sx, sy, sz = sx+lx, sy+ly, sz+lz
	}

	dx, dy, dz := sx-lx, sy-ly, sz-lz
	dist := float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))

	model := s.DistanceModel
	if model == listener.None && globals.DistanceModel != listener.None {
		model = globals.DistanceModel
	}
	distGain := listener.DistanceGain(model, dist, s.ReferenceDistance, s.MaxDistance, s.Rolloff)

	coneGain := float32(1)
	dirLenSq := s.DirectionX*s.DirectionX + s.DirectionY*s.DirectionY + s.DirectionZ*s.DirectionZ
	if dirLenSq > 1e-12 {
		angle := listener.ConeAngleDeg(
			[3]float32{s.DirectionX, s.DirectionY, s.DirectionZ},
			[3]float32{-dx, -dy, -dz},
		)
		coneGain = listener.ConeGain(angle, s.ConeInnerAngle, s.ConeOuterAngle, s.ConeOuterGain)
	}

	unit := listener.UnitVector(lx, ly, lz, sx, sy, sz)
	local := listener.Rotate(
		[3]float32{lp.ForwardX, lp.ForwardY, lp.ForwardZ},
		[3]float32{lp.UpX, lp.UpY, lp.UpZ},
		unit,
	)

	coeffs := pan.AmbiCoeffs(local[0], local[1], local[2], 0, pan.N3D)
	for i := range coeffs {
		coeffs[i] *= distGain * coneGain
	}

	azimuth := float32(math.Atan2(float64(local[0]), float64(-local[2])))
	el := local[1]
	if el > 1 {
		el = 1
	} else if el < -1 {
		el = -1
	}
	elevation := float32(math.Asin(float64(el)))

	dopplerPitch := listener.DopplerPitch(1.0, globals,
		[3]float32{lp.VelocityX, lp.VelocityY, lp.VelocityZ},
		[3]float32{s.VelocityX, s.VelocityY, s.VelocityZ}, unit)

	return spatialResult{
		coeffs:       coeffs,
		dopplerPitch: dopplerPitch * s.DopplerFactor,
		distGain:     distGain,
		coneGain:     coneGain,
		dist:         dist,
		azimuth:      azimuth,
		elevation:    elevation,
	}
}

func clampGain(gain, min, max float32) float32 {
	if max > 0 && gain > max {
		gain = max
	}
	if gain < min {
		gain = min
	}
	return gain
}

// ensureVoice lazily assigns a mixer voice the first time a source is
// found playing, sized to the queue's channel count and the source's
// chosen resampler kind.
func (c *Context) ensureVoice(e *sourceEntry) *voice.Voice {
	if e.voiceID != 0 {
		if v, ok := c.voices.get(e.voiceID); ok {
			return v
		}
	}
	nch := 1
	if e.src.Queue.Head != nil && len(e.src.Queue.Head.Buffers) > 0 {
		nch = e.src.Queue.Head.Buffers[0].Format.Layout.Channels()
	}
	v := voice.New(nch, resample.Kind(e.src.ResamplerKind))
	v.SourceID = e.src.ID
	v.Playing.Store(true)
	e.voiceID = c.voices.alloc(v)
	return v
}
