// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package mitsubishi implements the Mitsubishi air conditioner infrared remote protocol.
//
// The protocol carries one 18-byte frame per command, sent twice per button press.
// This package maps climate state onto frame bytes (Mapper), modulates frames
// into mark/space timings and demodulates captured timings back into frames
// (EncodePulses / DecodePulses), and ties both directions together behind the
// Controller interface.
package mitsubishi

// Frame size
const FrameSize = 18

// Frame byte indices
const (
	IdxMarker0     = 0
	IdxMarker1     = 1
	IdxMarker2     = 2
	IdxMarker3     = 3
	IdxMarker4     = 4
	IdxPower       = 5
	IdxMode        = 6
	IdxTemperature = 7
	IdxModeVane    = 8 // secondary mode (low bits) | wide vane (high nibble)
	IdxFanVane     = 9 // fan (bits 0-2) | vertical vane (bits 3-5) | 0x40
	IdxClock       = 10
	IdxEndClock    = 11
	IdxStartClock  = 12
	IdxMarker13    = 13
	IdxExtension1  = 14
	IdxExtension2  = 15
	IdxMarker16    = 16
	IdxChecksum    = 17
)

// Marker bytes
const (
	Byte00 = 0x23
	Byte01 = 0xCB
	Byte02 = 0x26
	Byte03 = 0x01
	Byte04 = 0x00
	Byte13 = 0x00
	Byte16 = 0x00
)

// fixedBytes lists the frame positions that must hold a constant value
var fixedBytes = map[int]byte{
	IdxMarker0:  Byte00,
	IdxMarker1:  Byte01,
	IdxMarker2:  Byte02,
	IdxMarker3:  Byte03,
	IdxMarker4:  Byte04,
	IdxMarker13: Byte13,
	IdxMarker16: Byte16,
}

// Power byte
const (
	PowerOff = 0x00
	PowerOn  = 0x20
)

// Primary mode codes (byte 6)
const (
	ModeCodeHeat = 0x08
	ModeCodeDry  = 0x10
	ModeCodeCool = 0x18
	ModeCodeAuto = 0x20
)

// Secondary mode codes (byte 8, low bits)
const (
	ModeACodeHeat = 0x00
	ModeACodeDry  = 0x02
	ModeACodeCool = 0x06
	ModeACodeAuto = 0x06 // same as cool
)

// Vane and fan bits
const (
	WideVaneSwing     = 0xC0
	WideVaneMask      = 0xF0
	VerticalVaneSwing = 0x38
	VerticalVaneMask  = 0x38
	FanMask           = 0x07
	FanCodeAuto       = 0x00
	Otherwise         = 0x40
)

// Temperature range in Celsius
const (
	TempMin = 16
	TempMax = 31

	// Dry mode always reports this temperature to the unit
	TempDry = 24
)

// Pulse timings in microseconds
const (
	BitMark     = 430
	OneSpace    = 1250
	ZeroSpace   = 390
	HeaderMark  = 3500
	HeaderSpace = 1700
	MinGap      = 17500
)

// CarrierFrequency is the IR modulation frequency in Hz
const CarrierFrequency = 38000

// Repeats is the number of times a frame is sent per command
const Repeats = 2
