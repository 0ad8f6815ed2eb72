// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/vanestat/pkg/ir"
	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
	"github.com/spf13/cobra"
)

var (
	encodeMode    string
	encodeTemp    float64
	encodeFan     string
	encodeSwing   string
	encodeSend    bool
	encodeOut     string
	encodeTimings bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a climate state into a Mitsubishi IR frame",
	Long: `Build the 18-byte frame for a climate state and show its field breakdown.

The frame can be transmitted through the bridge (--send) or written to a CBOR
capture file (--out) for later replay or decoding.

Examples:
  vanestat encode --mode heat --temp 23 --fan low
  vanestat encode --mode cool --temp 20 --swing both --send --port /dev/ttyUSB0
  vanestat encode --mode dry --out dry.cbor`,
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringVar(&encodeMode, "mode", "heat_cool", "Mode (off, heat, dry, cool, heat_cool)")
	encodeCmd.Flags().Float64Var(&encodeTemp, "temp", 24, "Target temperature in °C (16-31)")
	encodeCmd.Flags().StringVar(&encodeFan, "fan", "auto", "Fan speed (auto, low, medium, high)")
	encodeCmd.Flags().StringVar(&encodeSwing, "swing", "off", "Swing (off, horizontal, vertical, both)")
	encodeCmd.Flags().BoolVar(&encodeSend, "send", false, "Transmit the frame through the bridge")
	encodeCmd.Flags().StringVarP(&encodeOut, "out", "o", "", "Write the pulse train to a CBOR capture file")
	encodeCmd.Flags().BoolVar(&encodeTimings, "timings", false, "Print the raw mark/space timings")
}

// stateFromFlags parses the encode flags into a state
func stateFromFlags() (mitsubishi.State, error) {
	var (
		s   mitsubishi.State
		err error
	)
	if s.Mode, err = mitsubishi.ParseMode(encodeMode); err != nil {
		return s, err
	}
	if s.FanSpeed, err = mitsubishi.ParseFanSpeed(encodeFan); err != nil {
		return s, err
	}
	if s.SwingMode, err = mitsubishi.ParseSwingMode(encodeSwing); err != nil {
		return s, err
	}
	s.TargetTemperature = mitsubishi.ClampTemperature(encodeTemp)
	return s, nil
}

func runEncode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mapper, err := cfg.Mapper()
	if err != nil {
		return err
	}

	state, err := stateFromFlags()
	if err != nil {
		return err
	}
	if state.TargetTemperature != encodeTemp {
		fmt.Printf("Temperature clamped to %.0f°C\n", state.TargetTemperature)
	}

	store := mitsubishi.NewStore(state)
	device := mitsubishi.NewClimateIR(mapper, store, mitsubishi.WithLogger(log))
	frame := device.Frame()

	fmt.Printf("State: %s\n", mitsubishi.FormatState(state))
	fmt.Printf("Frame: %s\n", mitsubishi.FormatFrame(frame))
	fmt.Print(mitsubishi.FormatFrameDetail(frame, mapper))

	// Record the pulse train without sending
	rec := ir.NewTransmitData(nil)
	if err := device.TransmitState(rec); err != nil {
		return err
	}
	capture := rec.Capture()
	fmt.Printf("Pulses: %d items, %s at %d Hz\n", len(capture.Timings), capture.Timings.Duration(), capture.CarrierHz)
	if encodeTimings {
		fmt.Printf("Timings: %s\n", capture.Timings)
	}

	if encodeOut != "" {
		if err := ir.SaveCapture(encodeOut, capture); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", encodeOut)
	}

	if encodeSend {
		bridge, connInfo, err := OpenBridge()
		if err != nil {
			return err
		}
		defer bridge.Close()

		if err := device.TransmitState(ir.NewTransmitData(bridge)); err != nil {
			return fmt.Errorf("transmit: %w", err)
		}
		fmt.Printf("Sent via %s\n", connInfo)
	}

	return nil
}
