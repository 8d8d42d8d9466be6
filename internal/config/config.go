// Package config loads engine tuning from an optional YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the reconstruction knobs. Zero values are replaced by
// Default() field by field after load, so a partial file is fine.
type Tuning struct {
	SecondsLimit float64 `yaml:"seconds_limit"`
	SampleHz     int     `yaml:"sample_hz"`
	MaxSamples   int     `yaml:"max_samples"`
	Downsample   *bool   `yaml:"downsample"`
	Median       *bool   `yaml:"median"`
	MapDataDir   string  `yaml:"map_data_dir"`
}

// Default returns the stock tuning: a 5 second trailing window, 30 Hz
// downsampling with median smoothing, and a 2000 sample cap per round.
func Default() Tuning {
	on := true
	return Tuning{
		SecondsLimit: 5.0,
		SampleHz:     30,
		MaxSamples:   2000,
		Downsample:   &on,
		Median:       &on,
		MapDataDir:   "MapData",
	}
}

// Load reads a tuning file and fills unset fields from Default. A missing
// path returns the defaults.
func Load(path string) (Tuning, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, err
	}
	var file Tuning
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	if file.SecondsLimit > 0 {
		t.SecondsLimit = file.SecondsLimit
	}
	if file.SampleHz > 0 {
		t.SampleHz = file.SampleHz
	}
	if file.MaxSamples > 0 {
		t.MaxSamples = file.MaxSamples
	}
	if file.Downsample != nil {
		t.Downsample = file.Downsample
	}
	if file.Median != nil {
		t.Median = file.Median
	}
	if file.MapDataDir != "" {
		t.MapDataDir = file.MapDataDir
	}
	return t, nil
}
