// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Thermoquad/vanestat/pkg/ir"
	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
	"github.com/spf13/cobra"
)

var (
	decodeHex       bool
	decodeTolerance uint32
)

var decodeCmd = &cobra.Command{
	Use:   "decode <file | timings | hex>",
	Short: "Decode a capture file, raw timings or a hex frame",
	Long: `Decode a Mitsubishi frame offline.

The argument is tried as a capture file first (CBOR or raw timing text), then
as inline raw timings. With --hex it is parsed as the 18 frame bytes.

Examples:
  vanestat decode capture.cbor
  vanestat decode "3500, -1700, 430, -1250, ..."
  vanestat decode --hex "23 CB 26 01 00 20 08 07 30 5A 00 00 00 00 00 00 00 CE"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().BoolVar(&decodeHex, "hex", false, "Parse the argument as hex frame bytes")
	decodeCmd.Flags().Uint32Var(&decodeTolerance, "tolerance", 0, "Timing tolerance percent (default from config)")
}

// loadTimings resolves the decode argument to a capture
func loadTimings(arg string) (ir.Capture, error) {
	if _, err := os.Stat(arg); err == nil {
		return ir.LoadCapture(arg)
	}
	timings, err := ir.ParseRawTimings(arg)
	if err != nil {
		return ir.Capture{}, fmt.Errorf("not a file and not raw timings: %w", err)
	}
	return ir.Capture{Timings: timings}, nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mapper, err := cfg.Mapper()
	if err != nil {
		return err
	}
	arg := strings.Join(args, " ")

	var frame mitsubishi.Frame
	if decodeHex {
		frame, err = mitsubishi.ParseFrameHex(arg)
		if err != nil {
			return err
		}
		if err := frame.CheckFixedBytes(); err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
	} else {
		capture, err := loadTimings(arg)
		if err != nil {
			return err
		}
		tolerance := decodeTolerance
		if tolerance == 0 {
			tolerance = cfg.Receiver.TolerancePercent
		}
		fmt.Printf("Capture: %d items, %s\n", len(capture.Timings), capture.Timings.Duration())

		frame, err = decodeCapture(capture, tolerance)
		if err != nil {
			return fmt.Errorf("decode failed: %w", err)
		}
	}

	fmt.Printf("Frame: %s\n", mitsubishi.FormatFrame(frame))
	fmt.Print(mitsubishi.FormatFrameDetail(frame, mapper))
	fmt.Printf("State: %s\n", mitsubishi.FormatState(mapper.Decode(frame, mitsubishi.DefaultState())))
	return nil
}
