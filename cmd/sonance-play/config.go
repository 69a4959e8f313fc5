// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// sceneConfig is the optional YAML scene description this demo consumer
// loads instead of a synth-only default: listener pose, one tone source
// at a fixed position, and an optional reverb send. Grounded on the pack's own
// yaml.v3-backed settings file (doismellburning-samoyed/src/deviceid.go)
// for the load-into-struct idiom.
type sceneConfig struct {
	Listener struct {
		Position [3]float32 `yaml:"position"`
		Forward  [3]float32 `yaml:"forward"`
		Up       [3]float32 `yaml:"up"`
		Gain     float32    `yaml:"gain"`
	} `yaml:"listener"`

	Source struct {
		Position   [3]float32 `yaml:"position"`
		Gain       float32    `yaml:"gain"`
		Loop       bool       `yaml:"loop"`
		ToneHz     float32    `yaml:"tone_hz"`
		DurationMS int        `yaml:"duration_ms"`
	} `yaml:"source"`

	Reverb *struct {
		SendGain  float32 `yaml:"send_gain"`
		Density   float32 `yaml:"density"`
		DecayTime float32 `yaml:"decay_time"`
		Wet       float32 `yaml:"wet"`
	} `yaml:"reverb"`
}

// defaultScene is used when no --config file is given: a single tone
// source a few metres in front-right of the listener, dry.
func defaultScene() sceneConfig {
	var s sceneConfig
	s.Listener.Forward = [3]float32{0, 0, -1}
	s.Listener.Up = [3]float32{0, 1, 0}
	s.Listener.Gain = 1
	s.Source.Position = [3]float32{2, 0, -3}
	s.Source.Gain = 1
	s.Source.ToneHz = 440
	s.Source.DurationMS = 4000
	return s
}

func loadScene(path string) (sceneConfig, error) {
	scene := defaultScene()
	if path == "" {
		return scene, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return scene, err
	}
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return scene, err
	}
	return scene, nil
}
