// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/Thermoquad/vanestat/pkg/ir"
	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
	tea "github.com/charmbracelet/bubbletea"
)

// loopback is a Connection that reads back what was written
type loopback struct {
	bytes.Buffer
	closed bool
}

func (l *loopback) Close() error {
	l.closed = true
	return nil
}

func TestBridgeLoopback(t *testing.T) {
	conn := &loopback{}
	bridge := NewBridge(conn)

	store := mitsubishi.NewStore(mitsubishi.State{Mode: mitsubishi.ModeCool, TargetTemperature: 21, FanSpeed: mitsubishi.FanHigh})
	dev := mitsubishi.NewClimateIR(mitsubishi.DefaultMapper(), store)
	if err := dev.TransmitState(ir.NewTransmitData(bridge)); err != nil {
		t.Fatalf("TransmitState: %v", err)
	}

	capture, err := bridge.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	frame, err := decodeCapture(capture, 25)
	if err != nil {
		t.Fatalf("decodeCapture: %v", err)
	}
	if frame != dev.Frame() {
		t.Errorf("frame = %s, want %s", mitsubishi.FormatFrame(frame), mitsubishi.FormatFrame(dev.Frame()))
	}

	if _, err := bridge.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next on drained bridge = %v, want EOF", err)
	}
	if !connectionClosed(io.EOF) {
		t.Error("EOF should count as a closed connection")
	}

	bridge.Close()
	if !conn.closed {
		t.Error("Close did not close the connection")
	}
}

func TestStateFromFlags(t *testing.T) {
	encodeMode, encodeTemp, encodeFan, encodeSwing = "auto", 40, "medium", "both"
	t.Cleanup(func() {
		encodeMode, encodeTemp, encodeFan, encodeSwing = "heat_cool", 24, "auto", "off"
	})

	s, err := stateFromFlags()
	if err != nil {
		t.Fatalf("stateFromFlags: %v", err)
	}
	want := mitsubishi.State{
		Mode:              mitsubishi.ModeHeatCool,
		TargetTemperature: 31,
		FanSpeed:          mitsubishi.FanMedium,
		SwingMode:         mitsubishi.SwingBoth,
	}
	if s != want {
		t.Errorf("stateFromFlags = %+v, want %+v", s, want)
	}

	encodeFan = "turbo"
	if _, err := stateFromFlags(); err == nil {
		t.Error("expected error for unknown fan speed")
	}
}

func TestLoadTimings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.cbor")
	want := ir.Capture{CarrierHz: 38000, Timings: ir.RawTimings{3500, -1700, 430, -1250, 430}}
	if err := ir.SaveCapture(path, want); err != nil {
		t.Fatalf("SaveCapture: %v", err)
	}

	got, err := loadTimings(path)
	if err != nil {
		t.Fatalf("loadTimings(file): %v", err)
	}
	if got.CarrierHz != want.CarrierHz || got.Timings.String() != want.Timings.String() {
		t.Errorf("loadTimings(file) = %+v, want %+v", got, want)
	}

	got, err = loadTimings("3500, -1700, 430")
	if err != nil {
		t.Fatalf("loadTimings(text): %v", err)
	}
	if len(got.Timings) != 3 {
		t.Errorf("loadTimings(text) = %v", got.Timings)
	}

	if _, err := loadTimings("no such thing"); err == nil {
		t.Error("expected error for unparseable argument")
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 seconds"},
		{time.Second, "1 second"},
		{90 * time.Second, "1 minute and 30 seconds"},
		{26*time.Hour + 2*time.Minute + 5*time.Second, "1 day, 2 hours, 2 minutes, and 5 seconds"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestCycle(t *testing.T) {
	if got := cycle(0, -1, 4); got != 3 {
		t.Errorf("cycle(0, -1, 4) = %d, want 3", got)
	}
	if got := cycle(3, 1, 4); got != 0 {
		t.Errorf("cycle(3, 1, 4) = %d, want 0", got)
	}
	if got := cycle(2, 0, 4); got != 2 {
		t.Errorf("cycle(2, 0, 4) = %d, want 2", got)
	}
}

func TestDescribeDecodeError(t *testing.T) {
	err := &mitsubishi.DecodeError{Kind: mitsubishi.KindHeader, Byte: -1, Bit: -1}
	if got := describeDecodeError(err); got != "HEADER: header mark/space mismatch" {
		t.Errorf("describeDecodeError = %q", got)
	}
	if got := describeDecodeError(errors.New("boom")); got != "DECODE ERROR: boom" {
		t.Errorf("describeDecodeError = %q", got)
	}
}

func TestValidateStatsInterval(t *testing.T) {
	for _, n := range []int{0, -5} {
		if err := validateStatsInterval(n); err == nil {
			t.Errorf("validateStatsInterval(%d) = nil, want error", n)
		}
	}
	if err := validateStatsInterval(1); err != nil {
		t.Errorf("validateStatsInterval(1) = %v", err)
	}
}

func TestMonitorModelRatesFollowInterval(t *testing.T) {
	stats := mitsubishi.NewStatistics()
	stats.Update(nil, errors.New("noise"))

	var model tea.Model = newMonitorModel("test", stats, 3, false)
	for i := 1; i <= 2; i++ {
		model, _ = model.Update(tickMsg(time.Now()))
		if rate := stats.Snapshot().CaptureRate; rate != 0 {
			t.Fatalf("tick %d: capture rate = %v, want 0 before the interval", i, rate)
		}
	}
	model.Update(tickMsg(time.Now()))
	if rate := stats.Snapshot().CaptureRate; rate <= 0 {
		t.Errorf("capture rate = %v after interval, want > 0", rate)
	}
}
