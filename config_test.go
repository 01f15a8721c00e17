package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leafo/midimatrix/internal/routing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "router.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
driver: portmidi
queue_size: 64
quiet: true
connections:
  - input: Keystation
    output: Synth
channels:
  - output: Synth
    enabled: [1, 10]
`)

	config, err := loadConfig(path)
	require.NoError(t, err)
	require.NoError(t, validateConfig(config))

	require.Equal(t, "portmidi", config.Driver)
	require.Equal(t, 64, config.QueueSize)
	require.Equal(t, routing.DefaultMaxDevices, config.MaxDevices)
	require.Equal(t, "info", config.LogLevel)
	require.True(t, config.Quiet)
	require.Equal(t, []ConnectionPreset{{Input: "Keystation", Output: "Synth"}}, config.Connections)
	require.Equal(t, []int{1, 10}, config.Channels[0].Enabled)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read config file")

	_, err = loadConfig(writeConfig(t, "driver: [unclosed"))
	require.ErrorContains(t, err, "failed to parse config file")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"unknown driver", func(c *Config) { c.Driver = "alsa" }, "unknown driver"},
		{"zero queue", func(c *Config) { c.QueueSize = 0 }, "invalid queue size"},
		{"zero devices", func(c *Config) { c.MaxDevices = 0 }, "invalid max devices"},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }, "invalid log level"},
		{"half connection", func(c *Config) {
			c.Connections = []ConnectionPreset{{Input: "a"}}
		}, "needs both input and output"},
		{"preset without output", func(c *Config) {
			c.Channels = []ChannelPreset{{Enabled: []int{1}}}
		}, "has no output"},
		{"channel out of range", func(c *Config) {
			c.Channels = []ChannelPreset{{Output: "a", Enabled: []int{17}}}
		}, "invalid channel: 17"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := defaultConfig()
			tt.modify(config)
			require.ErrorContains(t, validateConfig(config), tt.errMsg)
		})
	}

	require.NoError(t, validateConfig(defaultConfig()))
}

func TestFindDevice(t *testing.T) {
	devices := []routing.Device{
		{Index: 0, Name: "Keystation 49"},
		{Index: 1, Name: "Synth Port 1"},
		{Index: 2, Name: "Synth Port 2"},
		{Index: 3, Name: "Synth"},
	}

	idx, err := findDevice(devices, "Synth")
	require.NoError(t, err)
	require.Equal(t, 3, idx)

	idx, err = findDevice(devices, "keystation")
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	_, err = findDevice(devices, "port")
	require.ErrorContains(t, err, "ambiguous")

	_, err = findDevice(devices, "Launchpad")
	require.ErrorContains(t, err, "device not found: Launchpad")
}

func TestMaskFromChannels(t *testing.T) {
	mask := maskFromChannels([]int{1, 10, 16, 0, 99})
	require.Equal(t, []int{0, 9, 15}, mask.Enabled())
}
