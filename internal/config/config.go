// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the vanestat YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document
type Config struct {
	Codec    CodecConfig    `yaml:"codec"`
	Receiver ReceiverConfig `yaml:"receiver"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// CodecConfig holds the per-unit fan and vane settings
type CodecConfig struct {
	FanLow            uint8  `yaml:"fan_low"`
	FanMedium         uint8  `yaml:"fan_medium"`
	FanHigh           uint8  `yaml:"fan_high"`
	HorizontalDefault string `yaml:"horizontal_default"`
	VerticalDefault   string `yaml:"vertical_default"`
}

// ReceiverConfig tunes pulse matching
type ReceiverConfig struct {
	TolerancePercent uint32 `yaml:"tolerance_percent"`
}

// MQTTConfig enables state publishing. An empty broker disables MQTT.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	Topic       string `yaml:"topic"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env"`
}

// HTTPConfig configures the HTTP API. An empty listen address disables it.
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Codec: CodecConfig{
			FanLow:            2,
			FanMedium:         3,
			FanHigh:           5,
			HorizontalDefault: "middle",
			VerticalDefault:   "middle",
		},
		Receiver: ReceiverConfig{TolerancePercent: 25},
		MQTT: MQTTConfig{
			Topic:       "vanestat",
			ClientID:    "vanestat",
			PasswordEnv: "VANESTAT_MQTT_PASSWORD",
		},
		HTTP: HTTPConfig{Listen: ":8080"},
	}
}

// Load reads path over the defaults. Fields absent from the file keep their default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// MQTTPassword resolves the broker password from the configured environment variable
func (c *Config) MQTTPassword() string {
	if c.MQTT.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(c.MQTT.PasswordEnv)
}
