// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mitsubishi

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatFrame(t *testing.T) {
	got := FormatFrame(referenceFrame())
	want := "23 CB 26 01 00 20 08 07 30 5A 00 00 00 00 00 00 00 CE"
	if got != want {
		t.Errorf("FormatFrame = %q, want %q", got, want)
	}
}

func TestParseFrameHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"spaced", "23 CB 26 01 00 20 08 07 30 5A 00 00 00 00 00 00 00 CE", false},
		{"packed", "23CB260100200807305A0000000000000000CE", false},
		{"prefixed", "0x23,0xCB,0x26,0x01,0x00,0x20,0x08,0x07,0x30,0x5A,0x00,0x00,0x00,0x00,0x00,0x00,0x00,0xCE", false},
		{"too short", "23 CB 26", true},
		{"not hex", "zz CB 26 01 00 20 08 07 30 5A 00 00 00 00 00 00 00 CE", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFrameHex(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFrameHex failed: %v", err)
			}
			if f != referenceFrame() {
				t.Errorf("frame = %s", FormatFrame(f))
			}
		})
	}
}

func TestFormatFrameDetail(t *testing.T) {
	detail := FormatFrameDetail(referenceFrame(), testMapper())
	for _, want := range []string{"Power:       ON", "HEAT", "23°C", "low", "middle", "Checksum:    0xCE OK"} {
		if !strings.Contains(detail, want) {
			t.Errorf("detail missing %q:\n%s", want, detail)
		}
	}

	f := referenceFrame()
	f[IdxChecksum] = 0
	if !strings.Contains(FormatFrameDetail(f, testMapper()), "MISMATCH (calculated 0xCE)") {
		t.Error("detail should flag checksum mismatch")
	}
}

func TestFormatState(t *testing.T) {
	got := FormatState(State{Mode: ModeHeatCool, TargetTemperature: 21.5, FanSpeed: FanMedium, SwingMode: SwingBoth})
	want := "mode=heat_cool target=21.5°C fan=medium swing=both"
	if got != want {
		t.Errorf("FormatState = %q, want %q", got, want)
	}
}

func TestStatistics_Update(t *testing.T) {
	stats := NewStatistics()
	good := referenceFrame()
	bad := good
	bad[IdxChecksum]++

	stats.Update(&good, nil)
	stats.Update(&bad, nil)
	stats.Update(nil, &DecodeError{Kind: KindHeader})
	stats.Update(nil, &DecodeError{Kind: KindBitTiming})
	stats.Update(nil, &DecodeError{Kind: KindFixedByte})
	stats.Update(nil, errors.New("capture too short"))
	stats.CalculateRates()

	s := stats.Snapshot()
	if s.TotalCaptures != 6 || s.ValidFrames != 2 {
		t.Errorf("total=%d valid=%d, want 6/2", s.TotalCaptures, s.ValidFrames)
	}
	if s.HeaderErrors != 1 || s.BitErrors != 1 || s.FixedByteErrors != 1 || s.OtherErrors != 1 {
		t.Errorf("error counters = %+v", s)
	}
	if s.ChecksumMismatches != 1 {
		t.Errorf("checksum mismatches = %d, want 1", s.ChecksumMismatches)
	}
	if s.Errors() != 4 {
		t.Errorf("Errors() = %d, want 4", s.Errors())
	}
	if rate := s.SuccessRate(); rate < 33.3 || rate > 33.4 {
		t.Errorf("SuccessRate() = %.2f, want 33.33", rate)
	}
	if !strings.Contains(s.Format(), "Captures:   6") {
		t.Errorf("Format() = %s", s.Format())
	}

	stats.Reset()
	if stats.Snapshot().TotalCaptures != 0 {
		t.Error("Reset did not clear counters")
	}
}
