// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mitsubishi

import (
	"fmt"
	"math"
	"strings"
)

// FanCode is a raw fan speed value for byte 9 bits 0-2
type FanCode byte

// Fan codes supported by the units
const (
	Fan1 FanCode = 0x01
	Fan2 FanCode = 0x02
	Fan3 FanCode = 0x03
	Fan4 FanCode = 0x04
	Fan5 FanCode = 0x05
)

// HorizontalDirection is the wide vane position used when horizontal swing is off
type HorizontalDirection byte

// Horizontal directions (byte 8 high nibble)
const (
	HorizontalLeft   HorizontalDirection = 0x10
	HorizontalMLeft  HorizontalDirection = 0x20
	HorizontalMiddle HorizontalDirection = 0x30
	HorizontalMRight HorizontalDirection = 0x40
	HorizontalRight  HorizontalDirection = 0x50
	HorizontalSplit  HorizontalDirection = 0x80
)

var horizontalNames = map[HorizontalDirection]string{
	HorizontalLeft:   "left",
	HorizontalMLeft:  "middle_left",
	HorizontalMiddle: "middle",
	HorizontalMRight: "middle_right",
	HorizontalRight:  "right",
	HorizontalSplit:  "split",
}

// VerticalDirection is the vertical vane position used when vertical swing is off
type VerticalDirection byte

// Vertical directions (byte 9 bits 3-5)
const (
	VerticalAuto   VerticalDirection = 0x00
	VerticalUp     VerticalDirection = 0x08
	VerticalMUp    VerticalDirection = 0x10
	VerticalMiddle VerticalDirection = 0x18
	VerticalMDown  VerticalDirection = 0x20
	VerticalDown   VerticalDirection = 0x28
)

var verticalNames = map[VerticalDirection]string{
	VerticalAuto:   "auto",
	VerticalUp:     "up",
	VerticalMUp:    "middle_up",
	VerticalMiddle: "middle",
	VerticalMDown:  "middle_down",
	VerticalDown:   "down",
}

// String returns the direction name
func (d HorizontalDirection) String() string {
	if name, ok := horizontalNames[d]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", byte(d))
}

// ParseHorizontalDirection parses a horizontal direction name
func ParseHorizontalDirection(s string) (HorizontalDirection, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for d, name := range horizontalNames {
		if name == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown horizontal direction %q", s)
}

// String returns the direction name
func (d VerticalDirection) String() string {
	if name, ok := verticalNames[d]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", byte(d))
}

// ParseVerticalDirection parses a vertical direction name
func ParseVerticalDirection(s string) (VerticalDirection, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for d, name := range verticalNames {
		if name == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown vertical direction %q", s)
}

// modeCodes holds the primary (byte 6) and secondary (byte 8) code for each mode.
// Auto shares its secondary code with cool.
var modeCodes = map[Mode]struct{ primary, secondary byte }{
	ModeHeat:     {ModeCodeHeat, ModeACodeHeat},
	ModeDry:      {ModeCodeDry, ModeACodeDry},
	ModeCool:     {ModeCodeCool, ModeACodeCool},
	ModeHeatCool: {ModeCodeAuto, ModeACodeAuto},
}

// Mapper translates between climate state and frame bytes.
// FanLow, FanMedium and FanHigh are the codes sent for each speed and the
// thresholds used to classify received fan codes.
type Mapper struct {
	FanLow            FanCode
	FanMedium         FanCode
	FanHigh           FanCode
	HorizontalDefault HorizontalDirection
	VerticalDefault   VerticalDirection
}

// DefaultMapper returns a mapper for three-speed units with centered vanes
func DefaultMapper() Mapper {
	return Mapper{
		FanLow:            Fan2,
		FanMedium:         Fan3,
		FanHigh:           Fan5,
		HorizontalDefault: HorizontalMiddle,
		VerticalDefault:   VerticalMiddle,
	}
}

// Encode builds a complete frame, checksum included, for the given state
func (m Mapper) Encode(s State) Frame {
	f := NewFrame()

	// Power and mode
	if codes, ok := modeCodes[s.Mode]; ok && s.Mode != ModeOff {
		f[IdxPower] = PowerOn
		f[IdxMode] = codes.primary
		f[IdxModeVane] = codes.secondary
	} else {
		f[IdxPower] = PowerOff
	}

	// Temperature
	if s.Mode == ModeDry {
		f[IdxTemperature] = TempDry - TempMin
	} else {
		f[IdxTemperature] = byte(math.Round(ClampTemperature(s.TargetTemperature)) - TempMin)
	}

	// Wide vane
	switch s.SwingMode {
	case SwingHorizontal, SwingBoth:
		f[IdxModeVane] |= WideVaneSwing
	default:
		f[IdxModeVane] |= byte(m.HorizontalDefault)
	}

	// Fan
	switch s.FanSpeed {
	case FanLow:
		f[IdxFanVane] = byte(m.FanLow)
	case FanMedium:
		f[IdxFanVane] = byte(m.FanMedium)
	case FanHigh:
		f[IdxFanVane] = byte(m.FanHigh)
	default:
		f[IdxFanVane] = FanCodeAuto
	}

	// Vertical vane
	switch s.SwingMode {
	case SwingVertical, SwingBoth:
		f[IdxFanVane] |= VerticalVaneSwing | Otherwise
	default:
		f[IdxFanVane] |= byte(m.VerticalDefault) | Otherwise
	}

	f.SetChecksum()
	return f
}

// Decode extracts climate state from a frame that passed fixed byte validation.
// prev supplies the mode when byte 6 holds an unknown code.
func (m Mapper) Decode(f Frame, prev State) State {
	s := prev

	if f[IdxPower] == PowerOff {
		s.Mode = ModeOff
	} else {
		switch f[IdxMode] {
		case ModeCodeHeat:
			s.Mode = ModeHeat
		case ModeCodeDry:
			s.Mode = ModeDry
		case ModeCodeCool:
			s.Mode = ModeCool
		case ModeCodeAuto:
			s.Mode = ModeHeatCool
		}
	}

	s.TargetTemperature = float64(f[IdxTemperature]) + TempMin
	s.FanSpeed = m.ClassifyFan(f[IdxFanVane] & FanMask)

	if f[IdxModeVane]&WideVaneMask == WideVaneSwing {
		s.SwingMode = SwingHorizontal
	} else {
		s.SwingMode = SwingOff
	}

	if f[IdxFanVane]&VerticalVaneMask == VerticalVaneSwing {
		if s.SwingMode == SwingHorizontal {
			s.SwingMode = SwingBoth
		} else {
			s.SwingMode = SwingVertical
		}
	}

	return s
}

// ClassifyFan buckets a raw fan code against the low and high thresholds.
// Only the bucket survives a round trip, not the raw code.
func (m Mapper) ClassifyFan(code byte) FanSpeed {
	switch {
	case code == FanCodeAuto:
		return FanAuto
	case code <= byte(m.FanLow):
		return FanLow
	case code < byte(m.FanHigh):
		return FanMedium
	default:
		return FanHigh
	}
}

// ClampTemperature limits t to the range the protocol can carry
func ClampTemperature(t float64) float64 {
	if math.IsNaN(t) {
		return TempMin
	}
	return math.Max(TempMin, math.Min(TempMax, t))
}
