// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/Thermoquad/vanestat/pkg/ir"
	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
	"github.com/spf13/cobra"
)

var waitTimeout int

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Test the bridge by waiting for a valid Mitsubishi frame",
	Long: `Wait for a valid Mitsubishi frame on the connection until timeout.

Point the unit's own remote at the bridge and press any button. Captures that
do not decode are counted and ignored.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error`,
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().IntVar(&waitTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runWait(cmd *cobra.Command, args []string) error {
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
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer bridge.Close()

	fmt.Printf("Vanestat - Wait For Frame\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", waitTimeout)
	fmt.Printf("Waiting for valid Mitsubishi frame...\n\n")

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(waitTimeout)*time.Second)
	defer cancel()

	frame, rejected, err := waitForFrame(ctx, bridge, cfg.Receiver.TolerancePercent)
	switch {
	case err == nil:
		if rejected > 0 {
			fmt.Printf("(ignored %d captures before a valid frame)\n", rejected)
		}
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  Frame: %s\n", mitsubishi.FormatFrame(frame))
		fmt.Print(mitsubishi.FormatFrameDetail(frame, mapper))
		fmt.Printf("  State: %s\n", mitsubishi.FormatState(mapper.Decode(frame, mitsubishi.DefaultState())))
		os.Exit(0)

	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds (%d captures rejected)\n",
			waitTimeout, rejected)
		os.Exit(1)

	default:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)
	}

	return nil
}

// waitForFrame reads captures until one decodes or ctx ends
func waitForFrame(ctx context.Context, bridge *Bridge, tolerance uint32) (mitsubishi.Frame, int, error) {
	type result struct {
		frame mitsubishi.Frame
		err   error
	}
	done := make(chan result, 1)
	var rejected atomic.Int64

	// Reader goroutine
	go func() {
		for {
			capture, err := bridge.Next()
			if err != nil {
				if errors.Is(err, ir.ErrStreamResync) {
					log.WithError(err).Debug("capture stream resynchronized")
					continue
				}
				done <- result{err: err}
				return
			}
			frame, err := decodeCapture(capture, tolerance)
			if err != nil {
				log.WithError(err).Debug("capture rejected")
				rejected.Add(1)
				continue
			}
			done <- result{frame: frame}
			return
		}
	}()

	select {
	case r := <-done:
		return r.frame, int(rejected.Load()), r.err
	case <-ctx.Done():
		return mitsubishi.Frame{}, int(rejected.Load()), ctx.Err()
	}
}
