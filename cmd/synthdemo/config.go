package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ccMapping is one entry of the config file's MIDI CC map, binding a
// Control-Change index to a named synth parameter with a target range.
type ccMapping struct {
	Name  string  `yaml:"name"`
	Index int     `yaml:"index"`
	Lo    float64 `yaml:"lo"`
	Hi    float64 `yaml:"hi"`
	Def   float64 `yaml:"default"`
}

// config is the demo's loaded configuration: sample rate, block size, voice
// count, and the MIDI CC map, loaded from YAML with flags able to override
// individual fields (see main.go's flag wiring).
type config struct {
	SampleRate int         `yaml:"sample_rate"`
	BlockSize  int         `yaml:"block_size"`
	Voices     int         `yaml:"voices"`
	UpdateHz   float64     `yaml:"update_hz"`
	CCMap      []ccMapping `yaml:"cc_map"`
}

func defaultConfig() config {
	return config{
		SampleRate: 48000,
		BlockSize:  256,
		Voices:     8,
		UpdateHz:   60,
		CCMap: []ccMapping{
			{Name: "cutoff", Index: 74, Lo: 80, Hi: 12000, Def: 4000},
			{Name: "resonance", Index: 71, Lo: 0, Hi: 1, Def: 0},
		},
	}
}

// loadConfig reads path as YAML into cfg, defaulting fields a zero-length
// document leaves unset. A missing file is not an error; the caller runs on
// defaultConfig() alone.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
