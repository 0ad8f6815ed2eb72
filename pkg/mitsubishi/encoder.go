// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mitsubishi

// Transmitter accepts a modulated pulse train, durations in microseconds.
// Perform sends what was queued; it is the only call that may block or fail.
type Transmitter interface {
	SetCarrierFrequency(hz uint32)
	Mark(us uint32)
	Space(us uint32)
	Perform() error
}

// EncodePulses queues the pulse train for f on tx.
// The frame is sent twice: the first copy is followed by a bit mark and the
// minimum gap, the second by a single closing bit mark.
func EncodePulses(f Frame, tx Transmitter) {
	tx.SetCarrierFrequency(CarrierFrequency)

	for r := 0; r < Repeats; r++ {
		// Header
		tx.Mark(HeaderMark)
		tx.Space(HeaderSpace)

		// Data, LSB first
		for _, b := range f {
			for bit := 0; bit < 8; bit++ {
				tx.Mark(BitMark)
				if b&(1<<bit) != 0 {
					tx.Space(OneSpace)
				} else {
					tx.Space(ZeroSpace)
				}
			}
		}

		// Footer
		if r == 0 {
			tx.Mark(BitMark)
			tx.Space(MinGap)
		}
	}
	tx.Mark(BitMark)
}

// PulseCount is the number of mark and space durations EncodePulses emits
const PulseCount = Repeats*(2+FrameSize*8*2) + 2 + 1
