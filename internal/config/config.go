// Package config loads the bench daemon configuration from FBW_* environment
// variables. Command-line flags in main override whatever is loaded here.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ErrInvalid is wrapped by Validate for values the daemon cannot run with.
var ErrInvalid = errors.New("invalid config")

// Config is the bench daemon configuration.
type Config struct {
	// Frame is the fixed simulation step and loop period.
	Frame     time.Duration `env:"FBW_FRAME" envDefault:"20ms"`
	Broker    string        `env:"FBW_BROKER" envDefault:"tcp://127.0.0.1:1883"`
	ClientID  string        `env:"FBW_CLIENT_ID" envDefault:"fbw-bench"`
	HTTPAddr  string        `env:"FBW_HTTP_ADDR" envDefault:":8080"`
	Heartbeat time.Duration `env:"FBW_HEARTBEAT" envDefault:"1m"`
	Debounce  time.Duration `env:"FBW_DEBOUNCE" envDefault:"50ms"`
	// Scenario is a YAML scenario file; empty runs the nominal environment.
	Scenario string `env:"FBW_SCENARIO"`
	// GPIOChip empty disables the hardware panel.
	GPIOChip  string         `env:"FBW_GPIO_CHIP"`
	PanelPins map[string]int `env:"FBW_PANEL_PINS" envDefault:"capt_takeover:17,fo_takeover:27"`
	// BusEvery publishes packed bus frames every n frames; 0 disables.
	BusEvery int `env:"FBW_BUS_EVERY" envDefault:"10"`
	// HostInput subscribes to the host input topic for axis and button events.
	HostInput bool `env:"FBW_HOST_INPUT" envDefault:"false"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot check by type alone.
func (c Config) Validate() error {
	if c.Frame <= 0 {
		return fmt.Errorf("frame %v: %w", c.Frame, ErrInvalid)
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("heartbeat %v: %w", c.Heartbeat, ErrInvalid)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce %v: %w", c.Debounce, ErrInvalid)
	}
	if c.BusEvery < 0 {
		return fmt.Errorf("bus every %d: %w", c.BusEvery, ErrInvalid)
	}
	for name, pin := range c.PanelPins {
		if pin < 0 {
			return fmt.Errorf("panel pin %s=%d: %w", name, pin, ErrInvalid)
		}
	}
	return nil
}
