// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mitsubishi

import (
	"fmt"
	"strings"
)

// Mode is the climate operating mode
type Mode int

// Mode values
const (
	ModeOff Mode = iota
	ModeHeat
	ModeDry
	ModeCool
	ModeHeatCool
)

var modeNames = []string{"off", "heat", "dry", "cool", "heat_cool"}

// FanSpeed is the requested fan speed
type FanSpeed int

// Fan speed values
const (
	FanAuto FanSpeed = iota
	FanLow
	FanMedium
	FanHigh
)

var fanNames = []string{"auto", "low", "medium", "high"}

// SwingMode selects which vanes oscillate
type SwingMode int

// Swing mode values
const (
	SwingOff SwingMode = iota
	SwingHorizontal
	SwingVertical
	SwingBoth
)

var swingNames = []string{"off", "horizontal", "vertical", "both"}

// State is the abstract climate control state carried by a frame
type State struct {
	Mode              Mode      `json:"mode" yaml:"mode"`
	TargetTemperature float64   `json:"target_temperature" yaml:"target_temperature"`
	FanSpeed          FanSpeed  `json:"fan_speed" yaml:"fan_speed"`
	SwingMode         SwingMode `json:"swing_mode" yaml:"swing_mode"`
}

// DefaultState is the state a fresh controller starts from
func DefaultState() State {
	return State{Mode: ModeOff, TargetTemperature: 24, FanSpeed: FanAuto, SwingMode: SwingOff}
}

// Climate is the climate state collaborator the codec reads from and publishes to
type Climate interface {
	State() State
	SetState(State)
	Publish()
}

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return "unknown"
	}
	return names[v]
}

func parseEnum(kind string, names []string, s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	for i, name := range names {
		if s == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q (valid: %s)", kind, s, strings.Join(names, ", "))
}

// String returns the mode name
func (m Mode) String() string { return enumName(modeNames, int(m)) }

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMode parses a mode name. "auto" is accepted as an alias for heat_cool.
func ParseMode(s string) (Mode, error) {
	if strings.EqualFold(strings.TrimSpace(s), "auto") {
		return ModeHeatCool, nil
	}
	v, err := parseEnum("mode", modeNames, s)
	return Mode(v), err
}

// String returns the fan speed name
func (f FanSpeed) String() string { return enumName(fanNames, int(f)) }

// MarshalText implements encoding.TextMarshaler
func (f FanSpeed) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (f *FanSpeed) UnmarshalText(text []byte) error {
	v, err := ParseFanSpeed(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ParseFanSpeed parses a fan speed name
func ParseFanSpeed(s string) (FanSpeed, error) {
	v, err := parseEnum("fan speed", fanNames, s)
	return FanSpeed(v), err
}

// String returns the swing mode name
func (s SwingMode) String() string { return enumName(swingNames, int(s)) }

// MarshalText implements encoding.TextMarshaler
func (s SwingMode) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (s *SwingMode) UnmarshalText(text []byte) error {
	v, err := ParseSwingMode(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSwingMode parses a swing mode name
func ParseSwingMode(s string) (SwingMode, error) {
	v, err := parseEnum("swing mode", swingNames, s)
	return SwingMode(v), err
}

// Modes lists all modes in protocol order
func Modes() []Mode { return []Mode{ModeOff, ModeHeat, ModeDry, ModeCool, ModeHeatCool} }

// FanSpeeds lists all fan speeds
func FanSpeeds() []FanSpeed { return []FanSpeed{FanAuto, FanLow, FanMedium, FanHigh} }

// SwingModes lists all swing modes
func SwingModes() []SwingMode {
	return []SwingMode{SwingOff, SwingHorizontal, SwingVertical, SwingBoth}
}
