package config

import (
	"maps"
	"math"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment variables that override file values.
// Nested keys use a double underscore: BLOCHSIM_SPINS__T2=40.
const EnvPrefix = "BLOCHSIM_"

const (
	DefaultSequence = "hard"
	DefaultSteps    = 1000
	DefaultDt       = 0.01
	DefaultSpins    = 1
	DefaultT1       = 1000.0
	DefaultT2       = 100.0
	DefaultLogLevel = "info"
)

type Config struct {
	Sequence string             `yaml:"sequence" koanf:"sequence"`
	Steps    int                `yaml:"steps" koanf:"steps"`
	Dt       float64            `yaml:"dt" koanf:"dt"`
	Workers  int                `yaml:"workers" koanf:"workers"`
	LogLevel string             `yaml:"log_level" koanf:"log_level"`
	Spins    SpinsConfig        `yaml:"spins" koanf:"spins"`
	Init     InitConfig         `yaml:"init" koanf:"init"`
	Params   map[string]float64 `yaml:"params,omitempty" koanf:"params"`
}

type SpinsConfig struct {
	Count      int     `yaml:"count" koanf:"count"`
	Offset     float64 `yaml:"offset" koanf:"offset"`
	OffsetSpan float64 `yaml:"offset_span" koanf:"offset_span"`
	T1         float64 `yaml:"t1" koanf:"t1"`
	T2         float64 `yaml:"t2" koanf:"t2"`
}

// InitConfig is the initial magnetization shared by every spin.
type InitConfig struct {
	X float64 `yaml:"x" koanf:"x"`
	Y float64 `yaml:"y" koanf:"y"`
	Z float64 `yaml:"z" koanf:"z"`
}

func DefaultConfig() *Config {
	return &Config{
		Sequence: DefaultSequence,
		Steps:    DefaultSteps,
		Dt:       DefaultDt,
		Workers:  1,
		LogLevel: DefaultLogLevel,
		Spins: SpinsConfig{
			Count: DefaultSpins,
			T1:    DefaultT1,
			T2:    DefaultT2,
		},
		Init: InitConfig{Z: 1},
	}
}

// Load layers defaults, the YAML file at path (skipped when path is empty)
// and BLOCHSIM_ environment variables, then validates the result.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver is Load with base in place of the defaults, so a preset can sit
// under the file and the environment. base is not modified.
func LoadOver(base *Config, path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "load config %s", path)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Wrap(err, "load environment")
	}

	cfg := base.Clone()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Sequence == "" {
		return errors.New("sequence must be set")
	}
	if c.Steps < 2 {
		return errors.Errorf("steps must be at least 2, got %d", c.Steps)
	}
	if c.Dt <= 0 || math.IsInf(c.Dt, 0) || math.IsNaN(c.Dt) {
		return errors.Errorf("dt must be positive and finite, got %f", c.Dt)
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Spins.Count < 1 {
		return errors.Errorf("spin count must be positive, got %d", c.Spins.Count)
	}
	if !(c.Spins.T1 > 0 && c.Spins.T2 > 0) {
		return errors.Errorf("t1 and t2 must be positive, got %f and %f", c.Spins.T1, c.Spins.T2)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Params = maps.Clone(c.Params)
	return &cp
}
