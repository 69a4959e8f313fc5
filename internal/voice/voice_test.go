// SPDX-License-Identifier: GPL-3.0-or-later
package voice

import (
	"testing"

	"github.com/nyxfield/sonance/internal/buffer"
	"github.com/nyxfield/sonance/internal/codec"
	"github.com/nyxfield/sonance/internal/pan"
	"github.com/nyxfield/sonance/internal/resample"
)

func monoFormat() codec.Format {
	return codec.Format{Layout: codec.Mono, SampleType: codec.F32}
}

func makeBuffer(t *testing.T, id int, samples []float32) *buffer.Buffer {
	t.Helper()
	b, err := buffer.New(id, monoFormat(), 44100, [][]float32{samples}, len(samples))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestGatherFramesSkipsZeroLengthItems(t *testing.T) {
	empty := makeBuffer(t, 1, nil)
	full := makeBuffer(t, 2, []float32{1, 2, 3, 4})

	itEmpty, _ := buffer.NewItem([]*buffer.Buffer{empty})
	itFull, _ := buffer.NewItem([]*buffer.Buffer{full})
	itEmpty.Next = itFull

	v := New(1, resample.Point)
	v.Item = itEmpty

	out, stopped := v.gatherFrames(4, false)
	if stopped {
		t.Fatal("did not expect to run out with a full item available")
	}
	if len(out[0]) != 4 {
		t.Fatalf("expected 4 frames gathered, got %d", len(out[0]))
	}
	for i, want := range []float32{1, 2, 3, 4} {
		if out[0][i] != want {
			t.Fatalf("frame %d: got %v want %v", i, out[0][i], want)
		}
	}
}

func TestGatherFramesWithoutLoopReportsStopped(t *testing.T) {
	b := makeBuffer(t, 1, []float32{1, 2})
	it, _ := buffer.NewItem([]*buffer.Buffer{b})

	v := New(1, resample.Point)
	v.Item = it

	out, stopped := v.gatherFrames(10, false)
	if !stopped {
		t.Fatal("expected stopped when queue runs out without looping")
	}
	if len(out[0]) != 2 {
		t.Fatalf("expected only 2 frames available, got %d", len(out[0]))
	}
}

func TestGatherFramesLoopsToLoopStartItem(t *testing.T) {
	b := makeBuffer(t, 1, []float32{1, 2})
	it, _ := buffer.NewItem([]*buffer.Buffer{b})

	v := New(1, resample.Point)
	v.Item = it
	v.LoopStartItem = it

	out, stopped := v.gatherFrames(5, true)
	if stopped {
		t.Fatal("looping voice should not report stopped")
	}
	want := []float32{1, 2, 1, 2, 1}
	for i := range want {
		if out[0][i] != want[i] {
			t.Fatalf("frame %d: got %v want %v", i, out[0][i], want[i])
		}
	}
}

func TestMixIntoRampsGainLinearly(t *testing.T) {
	var target Target
	src := [][]float32{{1, 1, 1, 1}}
	dst := make([][]float32, pan.MaxAmbiCoeffs)
	for i := range dst {
		dst[i] = make([]float32, 4)
	}
	coeffs := [pan.MaxAmbiCoeffs]float32{1, 0, 0, 0}
	MixInto(dst, src, &target, coeffs, 1.0, nil)

	if dst[0][0] != 0 {
		t.Fatalf("expected ramp to start at 0 gain, got %v", dst[0][0])
	}
	if dst[0][3] <= dst[0][0] {
		t.Fatalf("expected gain to increase across the ramp: %v vs %v", dst[0][0], dst[0][3])
	}
	if target.CurrentGain[0] != 1.0 {
		t.Fatalf("expected current gain to land on target after ramp, got %v", target.CurrentGain[0])
	}
}

func TestUpdateProducesRequestedFrameCount(t *testing.T) {
	samples := make([]float32, 256)
	for i := range samples {
		samples[i] = float32(i%7) / 7
	}
	b := makeBuffer(t, 1, samples)
	it, _ := buffer.NewItem([]*buffer.Buffer{b})

	v := New(1, resample.Linear)
	v.Item = it

	out := v.Update(UpdateInput{
		Pitch:         1.0,
		SourceRate:    44100,
		DeviceRate:    44100,
		OutputFrames:  64,
		DirectHFScale: 1.0,
	})
	if len(out.Resampled[0]) != 64 {
		t.Fatalf("expected 64 output frames, got %d", len(out.Resampled[0]))
	}
}
