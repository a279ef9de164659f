package config

import (
	"math"
	"sort"
)

var Presets = map[string]*Config{
	"ninety": {
		Sequence: "hard", Steps: 500, Dt: 0.01, Workers: 1, LogLevel: DefaultLogLevel,
		Spins:  SpinsConfig{Count: 1, T1: 1000, T2: 100},
		Init:   InitConfig{Z: 1},
		Params: map[string]float64{"flip_angle": 90, "duration": 0.5},
	},
	"inversion": {
		Sequence: "hard", Steps: 3000, Dt: 1, Workers: 1, LogLevel: DefaultLogLevel,
		Spins:  SpinsConfig{Count: 1, T1: 800, T2: 80},
		Init:   InitConfig{Z: 1},
		Params: map[string]float64{"flip_angle": 180, "duration": 1},
	},
	"fid": {
		Sequence: "fid", Steps: 1024, Dt: 0.05, Workers: 1, LogLevel: DefaultLogLevel,
		Spins: SpinsConfig{Count: 1, Offset: 0.2, T1: 1000, T2: 20},
		Init:  InitConfig{X: 1},
	},
	"dephasing": {
		Sequence: "fid", Steps: 2000, Dt: 0.01, Workers: 4, LogLevel: DefaultLogLevel,
		Spins: SpinsConfig{Count: 256, OffsetSpan: 0.5, T1: math.Inf(1), T2: math.Inf(1)},
		Init:  InitConfig{X: 1},
	},
	"slice": {
		Sequence: "sinc", Steps: 600, Dt: 0.01, Workers: 4, LogLevel: DefaultLogLevel,
		Spins:  SpinsConfig{Count: 128, OffsetSpan: 8, T1: 1000, T2: 100},
		Init:   InitConfig{Z: 1},
		Params: map[string]float64{"flip_angle": 90, "duration": 3, "lobes": 3},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
