// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Thermoquad/vanestat/pkg/ir"
	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Track decode statistics and the last received state",
	Long: `Decode every capture reported by the bridge and track the results.

This command reports:
  - Header mismatches (capture did not start with a Mitsubishi leader)
  - Bit timing errors (a mark/space pair matched neither bit value)
  - Fixed byte errors (a marker byte held the wrong value)
  - Checksum mismatches (accepted, counted separately)
  - Capture rate, error rate and success rate

By default, only errors are displayed. Use --show-all to display valid frames too.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all frames (not just errors)")
	monitorCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	monitorCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
}

// monitorSession is the receive side shared by the text and TUI modes
type monitorSession struct {
	bridge    *Bridge
	connInfo  string
	device    *mitsubishi.ClimateIR
	store     *mitsubishi.Store
	stats     *mitsubishi.Statistics
	tolerance uint32
}

// captureMsg reports the outcome of one capture
type captureMsg struct {
	err   error
	state mitsubishi.State
}

// receive blocks for the next capture and feeds it to the device
func (s *monitorSession) receive() (captureMsg, error) {
	capture, err := s.bridge.Next()
	if err != nil {
		return captureMsg{}, err
	}
	err = s.device.OnReceive(capture.Receiver(s.tolerance))
	return captureMsg{err: err, state: s.store.State()}, nil
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if err := validateStatsInterval(statsInterval); err != nil {
		return err
	}
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

	store := mitsubishi.NewStore(mitsubishi.DefaultState())
	stats := mitsubishi.NewStatistics()
	session := &monitorSession{
		bridge:    bridge,
		connInfo:  connInfo,
		device:    mitsubishi.NewClimateIR(mapper, store, mitsubishi.WithStatistics(stats), mitsubishi.WithLogger(log)),
		store:     store,
		stats:     stats,
		tolerance: cfg.Receiver.TolerancePercent,
	}

	if useTUI {
		return runMonitorTUI(session)
	}
	return runMonitorText(session)
}

func validateStatsInterval(seconds int) error {
	if seconds < 1 {
		return fmt.Errorf("--stats-interval must be at least 1 second, got %d", seconds)
	}
	return nil
}

func connectionClosed(err error) bool {
	return errors.Is(err, ErrConnectionClosed) || errors.Is(err, io.EOF)
}

// runMonitorTUI runs the monitor in TUI mode
func runMonitorTUI(session *monitorSession) error {
	m := newMonitorModel(session.connInfo, session.stats, statsInterval, showAll)
	p := tea.NewProgram(m)

	// Bridge reader goroutine
	go func() {
		for {
			msg, err := session.receive()
			if err != nil {
				resync := errors.Is(err, ir.ErrStreamResync)
				p.Send(readErrMsg{err: err, closed: !resync})
				if !resync {
					return
				}
				continue
			}
			p.Send(msg)
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// runMonitorText runs the monitor in text mode
func runMonitorText(session *monitorSession) error {
	fmt.Printf("Vanestat - Monitor\n")
	fmt.Printf("Connection: %s\n", session.connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All frames\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	errColor := color.New(color.FgRed, color.Bold)
	okColor := color.New(color.FgGreen, color.Bold)

	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	// Channel for non-blocking bridge reads
	results := make(chan captureMsg, 10)
	readErrs := make(chan error, 1)
	go func() {
		for {
			msg, err := session.receive()
			if err != nil {
				if errors.Is(err, ir.ErrStreamResync) {
					log.WithError(err).Warn("capture stream resynchronized")
					continue
				}
				readErrs <- err
				return
			}
			results <- msg
		}
	}()

	for {
		select {
		case msg := <-results:
			timestamp := time.Now().Format("15:04:05.000")
			if msg.err != nil {
				errColor.Printf("[%s] REJECTED: ", timestamp)
				fmt.Printf("%v\n", msg.err)
			} else if showAll {
				okColor.Printf("[%s] STATE: ", timestamp)
				fmt.Printf("%s\n", mitsubishi.FormatState(msg.state))
			}

		case err := <-readErrs:
			fmt.Printf("\nConnection closed: %v\n", err)
			session.stats.CalculateRates()
			fmt.Print(session.stats.Snapshot().Format())
			return nil

		case <-statsTicker.C:
			session.stats.CalculateRates()
			fmt.Println()
			fmt.Print(session.stats.Snapshot().Format())
			fmt.Println()
		}
	}
}
