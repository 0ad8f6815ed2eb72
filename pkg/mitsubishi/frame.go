// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mitsubishi

// Frame is one complete remote command. See the Idx* constants for the byte layout.
type Frame [FrameSize]byte

// NewFrame returns a frame with the marker bytes set and every other byte zero
func NewFrame() Frame {
	var f Frame
	for idx, want := range fixedBytes {
		f[idx] = want
	}
	return f
}

// CalculateChecksum returns the 8-bit wraparound sum of bytes 0-16
func CalculateChecksum(f Frame) byte {
	var sum byte
	for _, b := range f[:IdxChecksum] {
		sum += b
	}
	return sum
}

// SetChecksum stores the checksum of bytes 0-16 in byte 17
func (f *Frame) SetChecksum() {
	f[IdxChecksum] = CalculateChecksum(*f)
}

// ChecksumValid reports whether byte 17 matches bytes 0-16.
// The decoder does not enforce this; it is informational only.
func (f Frame) ChecksumValid() bool {
	return f[IdxChecksum] == CalculateChecksum(f)
}

// FixedByte returns the required value at idx and whether idx is a fixed position
func FixedByte(idx int) (byte, bool) {
	want, ok := fixedBytes[idx]
	return want, ok
}

// CheckFixedBytes returns a *DecodeError for the first fixed byte that does not hold its constant
func (f Frame) CheckFixedBytes() error {
	for idx := range f {
		if err := checkFixedByte(idx, f[idx]); err != nil {
			return err
		}
	}
	return nil
}

func checkFixedByte(idx int, b byte) error {
	want, ok := fixedBytes[idx]
	if !ok || b == want {
		return nil
	}
	return &DecodeError{Kind: KindFixedByte, Byte: idx, Bit: -1, Got: b, Want: want}
}
