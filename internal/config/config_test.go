// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vanestat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	m, err := cfg.Mapper()
	require.NoError(t, err)
	assert.Equal(t, mitsubishi.DefaultMapper(), m)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
codec:
  fan_low: 1
  fan_high: 4
  horizontal_default: split
  vertical_default: down
mqtt:
  broker: tcp://localhost:1883
  topic: home/ac/bedroom
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, uint8(1), cfg.Codec.FanLow)
	assert.Equal(t, uint8(3), cfg.Codec.FanMedium, "unset field keeps default")
	assert.Equal(t, uint8(4), cfg.Codec.FanHigh)
	assert.Equal(t, uint32(25), cfg.Receiver.TolerancePercent)
	assert.Equal(t, "home/ac/bedroom", cfg.MQTT.Topic)
	assert.Equal(t, ":8080", cfg.HTTP.Listen)

	m, err := cfg.Mapper()
	require.NoError(t, err)
	assert.Equal(t, mitsubishi.HorizontalSplit, m.HorizontalDefault)
	assert.Equal(t, mitsubishi.VerticalDown, m.VerticalDefault)
	assert.Equal(t, mitsubishi.FanCode(4), m.FanHigh)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "codec: [not, a, map]"))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"fan code zero", func(c *Config) { c.Codec.FanLow = 0 }, "codec.fan_low"},
		{"fan code too high", func(c *Config) { c.Codec.FanHigh = 6 }, "codec.fan_high"},
		{"fan codes out of order", func(c *Config) { c.Codec.FanLow = 4 }, "fan_low <= fan_medium <= fan_high"},
		{"unknown horizontal", func(c *Config) { c.Codec.HorizontalDefault = "up" }, "codec.horizontal_default"},
		{"unknown vertical", func(c *Config) { c.Codec.VerticalDefault = "split" }, "codec.vertical_default"},
		{"zero tolerance", func(c *Config) { c.Receiver.TolerancePercent = 0 }, "receiver.tolerance_percent"},
		{"broker without scheme", func(c *Config) { c.MQTT.Broker = "localhost:1883" }, "mqtt.broker"},
		{"wildcard topic", func(c *Config) { c.MQTT.Broker = "tcp://h:1883"; c.MQTT.Topic = "ac/#" }, "wildcards"},
		{"empty topic", func(c *Config) { c.MQTT.Broker = "tcp://h:1883"; c.MQTT.Topic = "" }, "mqtt.topic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMQTTPassword(t *testing.T) {
	cfg := Default()
	t.Setenv("VANESTAT_MQTT_PASSWORD", "hunter2")
	assert.Equal(t, "hunter2", cfg.MQTTPassword())

	cfg.MQTT.PasswordEnv = ""
	assert.Empty(t, cfg.MQTTPassword())
}
