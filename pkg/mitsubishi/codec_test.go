// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mitsubishi

import (
	"errors"
	"testing"

	"github.com/Thermoquad/vanestat/pkg/ir"
)

// pulses encodes f and returns the recorded timings
func pulses(t *testing.T, f Frame) ir.Capture {
	t.Helper()
	tx := ir.NewTransmitData(nil)
	EncodePulses(f, tx)
	return tx.Capture()
}

func referenceFrame() Frame {
	return testMapper().Encode(State{Mode: ModeHeat, TargetTemperature: 23, FanSpeed: FanLow})
}

func TestEncodePulses_Layout(t *testing.T) {
	c := pulses(t, referenceFrame())

	if c.CarrierHz != 38000 {
		t.Errorf("carrier = %d, want 38000", c.CarrierHz)
	}
	if len(c.Timings) != PulseCount {
		t.Fatalf("timing count = %d, want %d", len(c.Timings), PulseCount)
	}

	frameLen := 2 + FrameSize*16
	// Header of each repetition
	for _, start := range []int{0, frameLen + 2} {
		if c.Timings[start] != HeaderMark || c.Timings[start+1] != -HeaderSpace {
			t.Errorf("header at %d = %d,%d", start, c.Timings[start], c.Timings[start+1])
		}
	}
	// Gap after the first repetition
	if c.Timings[frameLen] != BitMark || c.Timings[frameLen+1] != -MinGap {
		t.Errorf("gap = %d,%d, want %d,%d", c.Timings[frameLen], c.Timings[frameLen+1], BitMark, -MinGap)
	}
	// Closing mark with no trailing space
	if last := c.Timings[len(c.Timings)-1]; last != BitMark {
		t.Errorf("last item = %d, want closing mark %d", last, BitMark)
	}
}

func TestEncodePulses_LSBFirst(t *testing.T) {
	c := pulses(t, referenceFrame())

	// Byte 0 is 0x23 = 0b00100011, LSB first: 1 1 0 0 0 1 0 0
	wantBits := []bool{true, true, false, false, false, true, false, false}
	for i, bit := range wantBits {
		mark := c.Timings[2+i*2]
		space := c.Timings[3+i*2]
		if mark != BitMark {
			t.Errorf("bit %d mark = %d, want %d", i, mark, BitMark)
		}
		want := int32(-ZeroSpace)
		if bit {
			want = -OneSpace
		}
		if space != want {
			t.Errorf("bit %d space = %d, want %d", i, space, want)
		}
	}
}

func TestDecodePulses_RoundTrip(t *testing.T) {
	m := testMapper()
	for _, state := range []State{
		{Mode: ModeHeat, TargetTemperature: 23, FanSpeed: FanLow},
		{Mode: ModeCool, TargetTemperature: 18, FanSpeed: FanHigh, SwingMode: SwingBoth},
		{Mode: ModeDry, TargetTemperature: 30, FanSpeed: FanAuto, SwingMode: SwingHorizontal},
		{Mode: ModeOff, TargetTemperature: 31, FanSpeed: FanMedium, SwingMode: SwingVertical},
	} {
		want := m.Encode(state)
		c := pulses(t, want)

		got, err := DecodePulses(c.Receiver(0))
		if err != nil {
			t.Fatalf("%s: decode failed: %v", FormatState(state), err)
		}
		if got != want {
			t.Errorf("frame mismatch:\n got  %s\n want %s", FormatFrame(got), FormatFrame(want))
		}
	}
}

func TestDecodePulses_ToleratesJitter(t *testing.T) {
	c := pulses(t, referenceFrame())
	for i, v := range c.Timings {
		// +/-15% alternating
		if i%2 == 0 {
			c.Timings[i] = v * 115 / 100
		} else {
			c.Timings[i] = v * 85 / 100
		}
	}

	got, err := DecodePulses(c.Receiver(25))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got != referenceFrame() {
		t.Errorf("frame mismatch: %s", FormatFrame(got))
	}
}

func TestDecodePulses_HeaderMismatch(t *testing.T) {
	c := pulses(t, referenceFrame())
	c.Timings[0] = 9000

	_, err := DecodePulses(c.Receiver(0))
	if !errors.Is(err, ErrHeaderMismatch) {
		t.Fatalf("err = %v, want ErrHeaderMismatch", err)
	}
}

func TestDecodePulses_BitTimingMismatch(t *testing.T) {
	c := pulses(t, referenceFrame())
	// byte 5, bit 3 space
	idx := 2 + (5*8+3)*2 + 1
	c.Timings[idx] = -800

	_, err := DecodePulses(c.Receiver(0))
	if !errors.Is(err, ErrBitTiming) {
		t.Fatalf("err = %v, want ErrBitTiming", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatal("expected *DecodeError")
	}
	if de.Byte != 5 || de.Bit != 3 {
		t.Errorf("position = byte %d bit %d, want byte 5 bit 3", de.Byte, de.Bit)
	}
}

func TestDecodePulses_TruncatedCapture(t *testing.T) {
	c := pulses(t, referenceFrame())
	c.Timings = c.Timings[:100]

	_, err := DecodePulses(c.Receiver(0))
	if !errors.Is(err, ErrBitTiming) {
		t.Fatalf("err = %v, want ErrBitTiming", err)
	}
}

func TestDecodePulses_FixedByteMismatch(t *testing.T) {
	for _, idx := range []int{0, 1, 2, 3, 4, 13, 16} {
		f := referenceFrame()
		f[idx] ^= 0x04
		f.SetChecksum()

		_, err := DecodePulses(pulses(t, f).Receiver(0))
		var de *DecodeError
		if !errors.As(err, &de) || de.Kind != KindFixedByte {
			t.Fatalf("byte %d: err = %v, want fixed byte error", idx, err)
		}
		if de.Byte != idx {
			t.Errorf("byte %d: error reports byte %d", idx, de.Byte)
		}
		if !errors.Is(err, ErrFixedByte) {
			t.Errorf("byte %d: error does not match ErrFixedByte", idx)
		}
	}
}

func TestDecodePulses_ChecksumNotVerified(t *testing.T) {
	f := referenceFrame()
	f[IdxChecksum]++

	got, err := DecodePulses(pulses(t, f).Receiver(0))
	if err != nil {
		t.Fatalf("decode rejected bad checksum: %v", err)
	}
	if got.ChecksumValid() {
		t.Error("decoded frame should carry the bad checksum")
	}
}

func TestDecodeError_Messages(t *testing.T) {
	tests := []struct {
		err  *DecodeError
		want string
	}{
		{&DecodeError{Kind: KindHeader, Byte: -1, Bit: -1}, "header mark/space mismatch"},
		{&DecodeError{Kind: KindBitTiming, Byte: 2, Bit: 7}, "byte 2 bit 7: no matching mark/space"},
		{&DecodeError{Kind: KindFixedByte, Byte: 0, Bit: -1, Got: 0x24, Want: 0x23}, "byte 0: got 0x24, want 0x23"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
