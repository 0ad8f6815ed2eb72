// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mitsubishi

// StatePatch is a partial state update. Nil fields are left unchanged.
type StatePatch struct {
	Mode              *Mode      `json:"mode,omitempty" yaml:"mode,omitempty"`
	TargetTemperature *float64   `json:"target_temperature,omitempty" yaml:"target_temperature,omitempty"`
	FanSpeed          *FanSpeed  `json:"fan_speed,omitempty" yaml:"fan_speed,omitempty"`
	SwingMode         *SwingMode `json:"swing_mode,omitempty" yaml:"swing_mode,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p StatePatch) Empty() bool {
	return p.Mode == nil && p.TargetTemperature == nil && p.FanSpeed == nil && p.SwingMode == nil
}

// Apply merges the patch into s. The temperature is clamped to the carried range.
func (p StatePatch) Apply(s *State) {
	if p.Mode != nil {
		s.Mode = *p.Mode
	}
	if p.TargetTemperature != nil {
		s.TargetTemperature = ClampTemperature(*p.TargetTemperature)
	}
	if p.FanSpeed != nil {
		s.FanSpeed = *p.FanSpeed
	}
	if p.SwingMode != nil {
		s.SwingMode = *p.SwingMode
	}
}
