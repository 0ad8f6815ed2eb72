// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
)

// Validate checks the configuration and reports every problem found
func Validate(cfg *Config) error {
	var errs []error

	c := cfg.Codec
	for name, v := range map[string]uint8{"fan_low": c.FanLow, "fan_medium": c.FanMedium, "fan_high": c.FanHigh} {
		if v < 1 || v > 5 {
			errs = append(errs, fmt.Errorf("codec.%s: %d out of range 1-5", name, v))
		}
	}
	if c.FanLow > c.FanMedium || c.FanMedium > c.FanHigh {
		errs = append(errs, fmt.Errorf("codec: fan codes must satisfy fan_low <= fan_medium <= fan_high (got %d/%d/%d)",
			c.FanLow, c.FanMedium, c.FanHigh))
	}
	if _, err := mitsubishi.ParseHorizontalDirection(c.HorizontalDefault); err != nil {
		errs = append(errs, fmt.Errorf("codec.horizontal_default: %w", err))
	}
	if _, err := mitsubishi.ParseVerticalDirection(c.VerticalDefault); err != nil {
		errs = append(errs, fmt.Errorf("codec.vertical_default: %w", err))
	}

	if t := cfg.Receiver.TolerancePercent; t < 1 || t > 100 {
		errs = append(errs, fmt.Errorf("receiver.tolerance_percent: %d out of range 1-100", t))
	}

	if cfg.MQTT.Broker != "" {
		if !strings.Contains(cfg.MQTT.Broker, "://") {
			errs = append(errs, fmt.Errorf("mqtt.broker: %q must include a scheme (tcp://, ssl://, ws://)", cfg.MQTT.Broker))
		}
		if strings.TrimSpace(cfg.MQTT.Topic) == "" {
			errs = append(errs, errors.New("mqtt.topic: required when broker is set"))
		}
		if strings.ContainsAny(cfg.MQTT.Topic, "#+") {
			errs = append(errs, fmt.Errorf("mqtt.topic: %q must not contain wildcards", cfg.MQTT.Topic))
		}
	}

	return errors.Join(errs...)
}

// Mapper builds the field mapper for the codec settings. Call Validate first.
func (c *Config) Mapper() (mitsubishi.Mapper, error) {
	h, err := mitsubishi.ParseHorizontalDirection(c.Codec.HorizontalDefault)
	if err != nil {
		return mitsubishi.Mapper{}, err
	}
	v, err := mitsubishi.ParseVerticalDirection(c.Codec.VerticalDefault)
	if err != nil {
		return mitsubishi.Mapper{}, err
	}
	return mitsubishi.Mapper{
		FanLow:            mitsubishi.FanCode(c.Codec.FanLow),
		FanMedium:         mitsubishi.FanCode(c.Codec.FanMedium),
		FanHigh:           mitsubishi.FanCode(c.Codec.FanHigh),
		HorizontalDefault: h,
		VerticalDefault:   v,
	}, nil
}
