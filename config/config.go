// File: config/config.go
// Author: momentics <momentics@gmail.com>
//
// YAML configuration for the hub and the timer reactor.

// Package config loads and validates statemux runtime settings.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"braces.dev/errtrace"
	"gopkg.in/yaml.v3"

	"github.com/momentics/statemux/hub"
	"github.com/momentics/statemux/internal/log"
	"github.com/momentics/statemux/reactor"
)

// Hub holds dispatch settings.
type Hub struct {
	// Workers is the number of dispatch threads.
	Workers int `yaml:"workers"`
	// Priority is the SCHED_FIFO priority of the dispatch threads.
	Priority int `yaml:"priority"`
}

// Reactor holds timer reactor settings.
type Reactor struct {
	// MaxEvents bounds readiness events reported per wait; the kernel ceiling
	// varies by platform.
	MaxEvents int `yaml:"max_events"`
	// Priority is the SCHED_FIFO priority of the service thread. Must be
	// strictly below Hub.Priority.
	Priority int `yaml:"priority"`
}

// Log holds logging settings.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is one of console, dev, off.
	Format string `yaml:"format"`
}

// Config is the full runtime configuration.
type Config struct {
	Hub     Hub     `yaml:"hub"`
	Reactor Reactor `yaml:"reactor"`
	Log     Log     `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Hub: Hub{
			Workers:  2,
			Priority: hub.DefaultPriority,
		},
		Reactor: Reactor{
			MaxEvents: reactor.DefaultMaxEvents,
			Priority:  reactor.DefaultPriority,
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// Parse unmarshals data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errtrace.Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errtrace.Wrap(err)
	}
	return cfg, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errtrace.Wrap(err)
	}
	return errtrace.Wrap2(Parse(data))
}

// Validate checks field ranges and the priority ordering between the hub's
// dispatch threads and the reactor's service thread.
func (c Config) Validate() error {
	if c.Hub.Workers <= 0 {
		return errtrace.Wrap(fmt.Errorf("config: hub workers must be positive, got %d", c.Hub.Workers))
	}
	if c.Reactor.MaxEvents <= 0 {
		return errtrace.Wrap(fmt.Errorf("config: reactor max_events must be positive, got %d", c.Reactor.MaxEvents))
	}
	if c.Reactor.Priority <= 0 {
		return errtrace.Wrap(fmt.Errorf("config: reactor priority must be above default scheduling, got %d", c.Reactor.Priority))
	}
	if c.Reactor.Priority >= c.Hub.Priority {
		return errtrace.Wrap(fmt.Errorf("config: reactor priority %d must be strictly below hub priority %d",
			c.Reactor.Priority, c.Hub.Priority))
	}
	return nil
}

// NewLogger builds a logger from the Log section.
func (c Config) NewLogger() *slog.Logger {
	return log.New(c.Log.Level, c.Log.Format)
}
