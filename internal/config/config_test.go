package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Frame != 20*time.Millisecond {
		t.Errorf("expected frame 20ms, got %v", cfg.Frame)
	}
	if cfg.BusEvery != 10 {
		t.Errorf("expected bus every 10, got %d", cfg.BusEvery)
	}
	if cfg.PanelPins["capt_takeover"] != 17 || cfg.PanelPins["fo_takeover"] != 27 {
		t.Errorf("unexpected default panel pins %v", cfg.PanelPins)
	}
	if cfg.GPIOChip != "" {
		t.Errorf("expected panel disabled by default, got chip %q", cfg.GPIOChip)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FBW_FRAME", "10ms")
	t.Setenv("FBW_BROKER", "tcp://bench:1883")
	t.Setenv("FBW_PANEL_PINS", "elac1_pb:5,autopilot:6")
	t.Setenv("FBW_HOST_INPUT", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Frame != 10*time.Millisecond {
		t.Errorf("expected frame 10ms, got %v", cfg.Frame)
	}
	if cfg.Broker != "tcp://bench:1883" {
		t.Errorf("expected broker override, got %q", cfg.Broker)
	}
	if len(cfg.PanelPins) != 2 || cfg.PanelPins["elac1_pb"] != 5 {
		t.Errorf("unexpected panel pins %v", cfg.PanelPins)
	}
	if !cfg.HostInput {
		t.Error("expected host input enabled")
	}
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("FBW_FRAME", "fast")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"zero frame", func(c *Config) { c.Frame = 0 }},
		{"negative heartbeat", func(c *Config) { c.Heartbeat = -time.Second }},
		{"negative debounce", func(c *Config) { c.Debounce = -time.Millisecond }},
		{"negative bus every", func(c *Config) { c.BusEvery = -1 }},
		{"negative pin", func(c *Config) { c.PanelPins = map[string]int{"capt_takeover": -1} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Frame: 20 * time.Millisecond}
			tt.edit(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}

	if err := (Config{Frame: time.Millisecond}).Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("FBW_BUS_EVERY", "-3")
	if _, err := Load(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
