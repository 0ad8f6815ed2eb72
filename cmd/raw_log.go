// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/vanestat/pkg/ir"
	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rawLogTimings bool

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display received IR captures in human-readable format",
	Long: `Continuously decode and display captures reported by the IR bridge.

Each capture is printed with a timestamp and either the decoded frame, its
field breakdown and the resulting climate state, or the reason it was rejected.

Supports both serial and WebSocket connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().BoolVar(&rawLogTimings, "timings", false, "Also print the raw timings of every capture")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mapper, err := cfg.Mapper()
	if err != nil {
		return err
	}

	bridge, connInfo, err := OpenBridge()
	if err != nil {
		return err
	}
	defer bridge.Close()

	fmt.Printf("Vanestat - Raw Capture Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	okColor := color.New(color.FgGreen, color.Bold)
	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow)

	state := mitsubishi.DefaultState()
	for {
		capture, err := bridge.Next()
		if err != nil {
			if errors.Is(err, ir.ErrStreamResync) {
				warnColor.Printf("[SKIP] ")
				fmt.Printf("%v\n", err)
				continue
			}
			if connectionClosed(err) {
				log.Info("connection closed")
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		ts := time.Now().Format("15:04:05.000")
		if rawLogTimings {
			fmt.Printf("[%s] %d items, %s: %s\n", ts, len(capture.Timings), capture.Timings.Duration(), capture.Timings)
		}

		frame, err := decodeCapture(capture, cfg.Receiver.TolerancePercent)
		if err != nil {
			errColor.Printf("[%s] REJECT ", ts)
			fmt.Printf("%v (%d items)\n", err, len(capture.Timings))
			continue
		}

		okColor.Printf("[%s] FRAME ", ts)
		fmt.Println(mitsubishi.FormatFrame(frame))
		fmt.Print(mitsubishi.FormatFrameDetail(frame, mapper))
		if !frame.ChecksumValid() {
			warnColor.Println("  (checksum mismatch accepted)")
		}

		state = mapper.Decode(frame, state)
		fmt.Printf("  State:       %s\n\n", mitsubishi.FormatState(state))
	}
}

// decodeCapture decodes a single capture with the configured tolerance
func decodeCapture(c ir.Capture, tolerance uint32) (mitsubishi.Frame, error) {
	return mitsubishi.DecodePulses(c.Receiver(tolerance))
}
