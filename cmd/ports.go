// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
)

var portsUSBOnly bool

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports that could host an IR bridge",
	Long: `Enumerate serial ports so the bridge can be found for --port.

USB ports are shown with their vendor and product IDs.

Exit codes:
  0 - At least one port found
  1 - No ports found
  2 - Enumeration error`,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
	portsCmd.Flags().BoolVar(&portsUSBOnly, "usb", false, "Only list USB serial ports")
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Enumeration error: %v\n", err)
		os.Exit(2)
	}

	found := 0
	for _, p := range ports {
		if portsUSBOnly && !p.IsUSB {
			continue
		}
		found++
		if p.IsUSB {
			fmt.Printf("%s\n  USB %s:%s", p.Name, p.VID, p.PID)
			if p.Product != "" {
				fmt.Printf(" %s", p.Product)
			}
			if p.SerialNumber != "" {
				fmt.Printf(" (serial %s)", p.SerialNumber)
			}
			fmt.Println()
		} else {
			fmt.Printf("%s\n", p.Name)
		}
	}

	if found == 0 {
		fmt.Fprintf(os.Stderr, "No serial ports found\n")
		os.Exit(1)
	}
	return nil
}
