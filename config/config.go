// Package config loads runtime tuning from YAML: the handful of
// numeric and pattern knobs a Runtime Context exposes — max call stack
// depth, default timeout, iteration limit, and auto-exception
// patterns.
package config

import (
	"os"

	"github.com/rill-lang/rill/runtime"
	"gopkg.in/yaml.v3"
)

// Config is the top-level `rill.yaml` shape a host application may
// load to construct a runtime.Context without hand-writing options.
type Config struct {
	MaxCallStackDepth int      `yaml:"maxCallStackDepth,omitempty"`
	DefaultTimeoutMs  int      `yaml:"defaultTimeoutMs,omitempty"`
	IterationLimit    int      `yaml:"iterationLimit,omitempty"`
	AutoExceptions    []string `yaml:"autoExceptions,omitempty"`
}

// Defaults returns a 10,000-iteration loop limit and conservative call
// stack/timeout bounds a host can override.
func Defaults() Config {
	return Config{
		MaxCallStackDepth: 256,
		DefaultTimeoutMs:  0, // 0 == no default timeout
		IterationLimit:    10000,
	}
}

// Load reads and parses a YAML config file, applying Defaults() for
// any field the file omits.
func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.MaxCallStackDepth == 0 {
		cfg.MaxCallStackDepth = Defaults().MaxCallStackDepth
	}
	if cfg.IterationLimit == 0 {
		cfg.IterationLimit = Defaults().IterationLimit
	}
	return cfg, nil
}

// Options converts Config into runtime.Option values ready to pass to
// runtime.New.
func (c Config) Options() []runtime.Option {
	opts := []runtime.Option{
		runtime.WithMaxCallStackDepth(c.MaxCallStackDepth),
		runtime.WithIterationLimit(c.IterationLimit),
	}
	if c.DefaultTimeoutMs > 0 {
		opts = append(opts, runtime.WithDefaultTimeoutMs(c.DefaultTimeoutMs))
	}
	if len(c.AutoExceptions) > 0 {
		opts = append(opts, runtime.WithAutoExceptions(c.AutoExceptions))
	}
	return opts
}
