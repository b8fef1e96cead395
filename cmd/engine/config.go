package main

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"pipelined.dev/engine/processor"
	"pipelined.dev/engine/thread"
)

var errConfig = errors.New("invalid config")

// config describes a render session.
type config struct {
	Period          int                  `yaml:"period"`
	Workers         int                  `yaml:"workers"`
	BitDepth        int                  `yaml:"bit_depth"`
	Gain            float64              `yaml:"gain"`
	Automation      []point              `yaml:"automation"`
	LevelWindow     time.Duration        `yaml:"level_window"`
	MetricsInterval time.Duration        `yaml:"metrics_interval"`
	Thread          thread.Configuration `yaml:"thread"`
	WorkerThread    thread.Configuration `yaml:"worker_thread"`
}

// point sets gain at the time from the start.
type point struct {
	At   time.Duration `yaml:"at"`
	Gain float64       `yaml:"gain"`
}

func defaultConfig() config {
	return config{
		Period:          256,
		BitDepth:        16,
		Gain:            1,
		LevelWindow:     processor.DefaultLevelWindow,
		MetricsInterval: 100 * time.Millisecond,
		Thread:          thread.Configuration{Name: "engine"},
		WorkerThread:    thread.Configuration{Name: "engine-worker"},
	}
}

// loadConfig reads config file over defaults. Empty path yields defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *config) validate() error {
	if cfg.Period <= 0 {
		return fmt.Errorf("period %d: %w", cfg.Period, errConfig)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers %d: %w", cfg.Workers, errConfig)
	}
	if cfg.MetricsInterval <= 0 {
		return fmt.Errorf("metrics interval %v: %w", cfg.MetricsInterval, errConfig)
	}
	slices.SortStableFunc(cfg.Automation, func(a, b point) int {
		return cmp.Compare(a.At, b.At)
	})
	return nil
}
