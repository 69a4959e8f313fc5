// SPDX-License-Identifier: GPL-3.0-or-later

// Command sonance-play is a demo consumer of internal/engine +
// internal/backend: it synthesizes a short tone (the library has no
// file-format decoding — WAV/MP3/OGG parsing is an explicit Non-goal),
// places it in a small 3D scene, and plays it through a chosen backend,
// either for a fixed duration or under interactive raw-mode keyboard
// transport control.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/nyxfield/sonance/internal/backend"
	"github.com/nyxfield/sonance/internal/codec"
	"github.com/nyxfield/sonance/internal/effect"
	"github.com/nyxfield/sonance/internal/engine"
	"github.com/nyxfield/sonance/internal/event"
)

type cli struct {
	Backend     string `short:"b" help:"Playback backend to use." default:"headless" enum:"oto,alsa,headless"`
	Output      string `short:"o" help:"Backend-specific output name (device name for oto/alsa, file path for headless)."`
	Rate        int    `help:"Output sample rate in Hz." default:"44100"`
	Layout      string `help:"Output speaker layout." default:"stereo" enum:"mono,stereo,rear,quad,5.1,6.1,7.1"`
	UpdateMS    int    `help:"Render update size in milliseconds." default:"20" name:"update-ms"`
	Config      string `help:"Optional YAML scene file (listener pose, source, reverb send)."`
	Interactive bool   `short:"i" help:"Enable raw-mode keyboard transport control (space=play/pause, s=stop, r=rewind, q=quit)."`
	Seconds     int    `help:"Non-interactive playback duration in seconds (ignored with --interactive)." default:"4"`
	Debug       bool   `help:"Enable debug-level logging."`
}

func parseLayout(s string) codec.Layout {
	switch s {
	case "mono":
		return codec.Mono
	case "rear":
		return codec.Rear
	case "quad":
		return codec.Quad
	case "5.1":
		return codec.Layout51
	case "6.1":
		return codec.Layout61
	case "7.1":
		return codec.Layout71
	default:
		return codec.Stereo
	}
}

func main() {
	var args cli
	kong.Parse(&args,
		kong.Name("sonance-play"),
		kong.Description("Demo player for the sonance 3D audio mixing core."),
		kong.UsageOnError(),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "sonance-play",
	})
	if args.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	if err := run(args, logger); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(args cli, logger *log.Logger) error {
	scene, err := loadScene(args.Config)
	if err != nil {
		return fmt.Errorf("loading scene config: %w", err)
	}

	layout := parseLayout(args.Layout)
	updateFrames := args.Rate * args.UpdateMS / 1000

	ctx := engine.NewContext(8, 64)
	dev := engine.NewDevice(args.Rate, layout, updateFrames)
	dev.MakeCurrent(ctx)

	ctx.SetListenerPosition(scene.Listener.Position[0], scene.Listener.Position[1], scene.Listener.Position[2])
	ctx.SetListenerOrientation(
		scene.Listener.Forward[0], scene.Listener.Forward[1], scene.Listener.Forward[2],
		scene.Listener.Up[0], scene.Listener.Up[1], scene.Listener.Up[2],
	)
	if scene.Listener.Gain > 0 {
		if err := ctx.SetListenerGain(scene.Listener.Gain); err != nil {
			return err
		}
	}

	srcIDs := ctx.GenSources(1)
	srcID := srcIDs[0]
	if err := ctx.SourceSetGain(srcID, orDefault(scene.Source.Gain, 1)); err != nil {
		return err
	}
	if err := ctx.SourceSetPosition(srcID, scene.Source.Position[0], scene.Source.Position[1], scene.Source.Position[2]); err != nil {
		return err
	}
	if err := ctx.SourceSetLooping(srcID, scene.Source.Loop); err != nil {
		return err
	}

	toneHz := orDefault(scene.Source.ToneHz, 440)
	durationMS := scene.Source.DurationMS
	if durationMS == 0 {
		durationMS = 4000
	}
	pcm := synthToneI16(toneHz, durationMS, args.Rate)

	bufIDs := ctx.GenBuffers(1)
	format := codec.Format{Layout: codec.Mono, SampleType: codec.I16}
	if err := ctx.BufferData(bufIDs[0], format, args.Rate, pcm); err != nil {
		return fmt.Errorf("uploading tone buffer: %w", err)
	}
	if err := ctx.QueueBuffers(srcID, bufIDs); err != nil {
		return fmt.Errorf("queueing tone buffer: %w", err)
	}

	if scene.Reverb != nil {
		slotIDs := ctx.GenEffectSlots(1)
		slotID := slotIDs[0]
		st := effect.NewReverb(effect.ReverbParams{
			Density:   orDefault(scene.Reverb.Density, 0.5),
			DecayTime: orDefault(scene.Reverb.DecayTime, 1.5),
			Wet:       orDefault(scene.Reverb.Wet, 0.3),
		}, args.Rate)
		if err := ctx.EffectSlotSetEffect(slotID, st); err != nil {
			return err
		}
		if err := ctx.SourceSetSend(srcID, 0, slotID, orDefault(scene.Reverb.SendGain, 0.4)); err != nil {
			return err
		}
		logger.Info("reverb send attached", "slot", slotID)
	}

	player, err := backend.New(args.Backend)
	if err != nil {
		return err
	}
	if err := player.Open(args.Output); err != nil {
		return fmt.Errorf("opening backend %q: %w", args.Backend, err)
	}
	defer player.Close()
	if err := player.Reset(args.Rate, layout.Channels(), updateFrames); err != nil {
		return fmt.Errorf("configuring backend %q: %w", args.Backend, err)
	}

	logger.Info("starting playback", "backend", args.Backend, "rate", args.Rate, "layout", args.Layout)
	if err := player.Start(dev); err != nil {
		return fmt.Errorf("starting backend %q: %w", args.Backend, err)
	}
	defer player.Stop()

	if err := ctx.SourcePlay(srcIDs); err != nil {
		return err
	}

	if args.Interactive {
		return runInteractive(ctx, srcIDs, logger)
	}
	return runTimed(ctx, time.Duration(args.Seconds)*time.Second, logger)
}

func orDefault(v, def float32) float32 {
	if v == 0 {
		return def
	}
	return v
}

// runTimed drains posted events for the fixed duration, then returns.
func runTimed(ctx *engine.Context, duration time.Duration, logger *log.Logger) error {
	deadline := time.After(duration)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-deadline:
			return nil
		case <-tick.C:
			drainEvents(ctx, logger)
		}
	}
}

// runInteractive drives transport control from raw-mode keypresses,
// grounded on the teacher's terminal_host.go keyboard routing idiom:
// space toggles play/pause, s stops, r rewinds, q/ctrl-c quits.
func runInteractive(ctx *engine.Context, srcIDs []uint32, logger *log.Logger) error {
	kr := newKeyReader()
	if err := kr.Start(); err != nil {
		return fmt.Errorf("starting interactive keyboard control: %w", err)
	}
	defer kr.Stop()

	logger.Info("interactive mode: space=play/pause  s=stop  r=rewind  q=quit")

	playing := true
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case b := <-kr.Keys:
			switch b {
			case ' ':
				if playing {
					if err := ctx.SourcePause(srcIDs); err != nil {
						logger.Error("pause", "err", err)
					}
				} else {
					if err := ctx.SourcePlay(srcIDs); err != nil {
						logger.Error("play", "err", err)
					}
				}
				playing = !playing
			case 's':
				if err := ctx.SourceStop(srcIDs); err != nil {
					logger.Error("stop", "err", err)
				}
				playing = false
			case 'r':
				if err := ctx.SourceRewind(srcIDs); err != nil {
					logger.Error("rewind", "err", err)
				}
			case 'q', 3: // 3 == ctrl-c under raw mode
				return nil
			}
		case <-tick.C:
			drainEvents(ctx, logger)
		}
	}
}

func drainEvents(ctx *engine.Context, logger *log.Logger) {
	for _, e := range ctx.Events.Drain() {
		switch e.Kind {
		case event.SourceStateChanged:
			logger.Debug("source state changed", "source", e.SourceID, "state", e.State)
		case event.Disconnected:
			logger.Warn("backend disconnected")
		}
	}
}
