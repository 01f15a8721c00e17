package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leafo/midimatrix/internal/routing"
)

// Config holds startup settings. It is only read; the router never writes
// its state back.
type Config struct {
	// Driver selects the MIDI backend: "rtmidi" or "portmidi".
	Driver string `yaml:"driver"`

	// QueueSize is how many inbound messages may wait for the router.
	QueueSize int `yaml:"queue_size"`

	// MaxDevices caps how many ports per direction are used.
	MaxDevices int `yaml:"max_devices"`

	// Quiet suppresses the per-message route log.
	Quiet bool `yaml:"quiet"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Connections are made at startup, matched by device name.
	Connections []ConnectionPreset `yaml:"connections"`

	// Channels restrict outputs at startup.
	Channels []ChannelPreset `yaml:"channels"`
}

// ConnectionPreset names an input and an output to connect.
type ConnectionPreset struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// ChannelPreset lists the channels (1-16) an output passes. All others are
// disabled.
type ChannelPreset struct {
	Output  string `yaml:"output"`
	Enabled []int  `yaml:"enabled"`
}

func defaultConfig() *Config {
	return &Config{
		Driver:     "rtmidi",
		QueueSize:  routing.DefaultQueueSize,
		MaxDevices: routing.DefaultMaxDevices,
		LogLevel:   "info",
	}
}

// loadConfig reads a YAML config over the defaults.
func loadConfig(filename string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// validateConfig checks values that do not depend on the devices present.
func validateConfig(config *Config) error {
	switch config.Driver {
	case "rtmidi", "portmidi":
	default:
		return fmt.Errorf("unknown driver %q (must be rtmidi or portmidi)", config.Driver)
	}
	if config.QueueSize < 1 {
		return fmt.Errorf("invalid queue size: %d", config.QueueSize)
	}
	if config.MaxDevices < 1 {
		return fmt.Errorf("invalid max devices: %d", config.MaxDevices)
	}
	if _, err := parseLogLevel(config.LogLevel); err != nil {
		return err
	}

	for i, conn := range config.Connections {
		if conn.Input == "" || conn.Output == "" {
			return fmt.Errorf("connection %d needs both input and output", i+1)
		}
	}
	for i, preset := range config.Channels {
		if preset.Output == "" {
			return fmt.Errorf("channel preset %d has no output", i+1)
		}
		for _, ch := range preset.Enabled {
			if ch < 1 || ch > routing.NumChannels {
				return fmt.Errorf("channel preset %d has invalid channel: %d (must be 1-16)", i+1, ch)
			}
		}
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// findDevice resolves a configured name to an index. An exact match wins;
// otherwise a unique case-insensitive substring match is accepted.
func findDevice(devices []routing.Device, name string) (int, error) {
	for _, d := range devices {
		if d.Name == name {
			return d.Index, nil
		}
	}

	found := -1
	needle := strings.ToLower(name)
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), needle) {
			if found >= 0 {
				return -1, fmt.Errorf("device name %q is ambiguous", name)
			}
			found = d.Index
		}
	}
	if found < 0 {
		return -1, fmt.Errorf("device not found: %s\nAvailable devices: %v", name, deviceNames(devices))
	}
	return found, nil
}

func deviceNames(devices []routing.Device) []string {
	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = d.Name
	}
	return names
}

// maskFromChannels builds a mask from one-based channel numbers.
func maskFromChannels(channels []int) routing.ChannelMask {
	var mask routing.ChannelMask
	for _, ch := range channels {
		if ch >= 1 && ch <= routing.NumChannels {
			mask[ch-1] = true
		}
	}
	return mask
}
