// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mitsubishi

// Receiver exposes a captured pulse train one mark/space pair at a time.
// ExpectItem consumes the next pair only when both durations match within the
// receiver's tolerance.
type Receiver interface {
	ExpectItem(mark, space uint32) bool
}

// DecodePulses reads one frame from rx.
// Decoding stops at the first header, bit or fixed byte mismatch and returns a
// *DecodeError; no partial frame is returned. The checksum byte is read but
// not verified.
func DecodePulses(rx Receiver) (Frame, error) {
	var f Frame

	if !rx.ExpectItem(HeaderMark, HeaderSpace) {
		return Frame{}, &DecodeError{Kind: KindHeader, Byte: -1, Bit: -1}
	}

	for pos := 0; pos < FrameSize; pos++ {
		var b byte
		for bit := 0; bit < 8; bit++ {
			if rx.ExpectItem(BitMark, OneSpace) {
				b |= 1 << bit
			} else if !rx.ExpectItem(BitMark, ZeroSpace) {
				return Frame{}, &DecodeError{Kind: KindBitTiming, Byte: pos, Bit: bit}
			}
		}
		f[pos] = b

		if err := checkFixedByte(pos, b); err != nil {
			return Frame{}, err
		}
	}

	return f, nil
}
