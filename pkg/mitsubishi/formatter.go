// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mitsubishi

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// FormatFrame formats a frame as space separated hex bytes
func FormatFrame(f Frame) string {
	parts := make([]string, len(f))
	for i, b := range f {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

// FormatFrameDetail breaks a frame down field by field
func FormatFrameDetail(f Frame, m Mapper) string {
	var s strings.Builder

	s.WriteString(fmt.Sprintf("  Marker:      %s\n", FormatFrame(f)[:14]))
	power := "OFF"
	if f[IdxPower] != PowerOff {
		power = "ON"
	}
	s.WriteString(fmt.Sprintf("  Power:       %s (0x%02X)\n", power, f[IdxPower]))
	s.WriteString(fmt.Sprintf("  Mode:        %s (0x%02X / 0x%02X)\n",
		formatModeCode(f[IdxMode]), f[IdxMode], f[IdxModeVane]&^WideVaneMask))
	s.WriteString(fmt.Sprintf("  Temperature: %d°C (0x%02X)\n", int(f[IdxTemperature])+TempMin, f[IdxTemperature]))

	fan := f[IdxFanVane] & FanMask
	s.WriteString(fmt.Sprintf("  Fan:         %s (code %d)\n", m.ClassifyFan(fan), fan))

	wide := f[IdxModeVane] & WideVaneMask
	if wide == WideVaneSwing {
		s.WriteString(fmt.Sprintf("  Wide vane:   SWING (0x%02X)\n", wide))
	} else {
		s.WriteString(fmt.Sprintf("  Wide vane:   %s (0x%02X)\n", HorizontalDirection(wide), wide))
	}

	vertical := f[IdxFanVane] & VerticalVaneMask
	if vertical == VerticalVaneSwing {
		s.WriteString(fmt.Sprintf("  Vert vane:   SWING (0x%02X)\n", vertical))
	} else {
		s.WriteString(fmt.Sprintf("  Vert vane:   %s (0x%02X)\n", VerticalDirection(vertical), vertical))
	}

	checksum := "OK"
	if !f.ChecksumValid() {
		checksum = fmt.Sprintf("MISMATCH (calculated 0x%02X)", CalculateChecksum(f))
	}
	s.WriteString(fmt.Sprintf("  Checksum:    0x%02X %s\n", f[IdxChecksum], checksum))

	return s.String()
}

func formatModeCode(code byte) string {
	switch code {
	case ModeCodeHeat:
		return "HEAT"
	case ModeCodeDry:
		return "DRY"
	case ModeCodeCool:
		return "COOL"
	case ModeCodeAuto:
		return "AUTO"
	default:
		return "UNKNOWN"
	}
}

// FormatState formats a climate state on one line
func FormatState(s State) string {
	return fmt.Sprintf("mode=%s target=%.1f°C fan=%s swing=%s",
		s.Mode, s.TargetTemperature, s.FanSpeed, s.SwingMode)
}

// ParseFrameHex parses 18 hex bytes. Spaces, commas, colons and 0x prefixes are ignored.
func ParseFrameHex(text string) (Frame, error) {
	clean := strings.NewReplacer("0x", "", "0X", "", " ", "", ",", "", ":", "", "\n", "", "\t", "").Replace(text)

	data, err := hex.DecodeString(clean)
	if err != nil {
		return Frame{}, fmt.Errorf("invalid hex frame: %w", err)
	}
	if len(data) != FrameSize {
		return Frame{}, fmt.Errorf("frame must be %d bytes, got %d", FrameSize, len(data))
	}

	var f Frame
	copy(f[:], data)
	return f, nil
}
