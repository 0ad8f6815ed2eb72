// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Thermoquad/vanestat/pkg/ir"
	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Interactive TUI remote control for a Mitsubishi unit",
	Long: `Control a Mitsubishi air conditioner via an interactive terminal UI.

The TUI edits a pending state (mode, target temperature, fan speed, swing) and
transmits it through the IR bridge. Frames received from the unit's own remote
are decoded and folded into the displayed state.

Features:
  - Mode list, temperature entry, fan and swing selectors
  - Live frame preview of the pending state
  - Decode statistics and event log
  - Automatic reconnection on connection loss

Supports both serial and WebSocket connections.`,
	RunE: runRemote,
}

func init() {
	rootCmd.AddCommand(remoteCmd)
}

// errNotConnected is returned when transmitting while the bridge is down
var errNotConnected = errors.New("bridge not connected")

// connectionManager handles bridge lifecycle and reconnection
type connectionManager struct {
	bridge    *Bridge
	connInfo  string
	mu        sync.RWMutex
	p         *tea.Program
	done      chan struct{}
	device    *mitsubishi.ClimateIR
	store     *mitsubishi.Store
	tolerance uint32
}

var _ ir.Sender = (*connectionManager)(nil)

func (cm *connectionManager) getBridge() *Bridge {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.bridge
}

func (cm *connectionManager) setBridge(bridge *Bridge, connInfo string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.bridge = bridge
	cm.connInfo = connInfo
}

// Send transmits a capture through the current bridge
func (cm *connectionManager) Send(c ir.Capture) error {
	bridge := cm.getBridge()
	if bridge == nil {
		return errNotConnected
	}
	return bridge.Send(c)
}

// transmitter returns a fresh Transmitter that sends through the manager
func (cm *connectionManager) transmitter() mitsubishi.Transmitter {
	return ir.NewTransmitData(cm)
}

func runRemote(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mapper, err := cfg.Mapper()
	if err != nil {
		return err
	}

	// Open initial connection (serial or WebSocket)
	bridge, connInfo, err := OpenBridge()
	if err != nil {
		return err
	}

	store := mitsubishi.NewStore(mitsubishi.DefaultState())
	stats := mitsubishi.NewStatistics()
	cm := &connectionManager{
		bridge:    bridge,
		connInfo:  connInfo,
		done:      make(chan struct{}),
		store:     store,
		device:    mitsubishi.NewClimateIR(mapper, store, mitsubishi.WithStatistics(stats), mitsubishi.WithLogger(log)),
		tolerance: cfg.Receiver.TolerancePercent,
	}

	m := newRemoteModel(cm, connInfo, stats)

	// Create TUI program with alt screen and mouse support
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	cm.p = p

	go cm.readerLoop()

	_, err = p.Run()
	close(cm.done) // Signal goroutines to stop
	if b := cm.getBridge(); b != nil {
		b.Close()
	}
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// readerLoop reads captures with automatic reconnection
func (cm *connectionManager) readerLoop() {
	for {
		select {
		case <-cm.done:
			return
		default:
		}

		if cm.readFromBridge() {
			cm.p.Send(connectionLostMsg{})

			if !cm.reconnect() {
				return // Shutdown requested during reconnect
			}
		}
	}
}

// readFromBridge feeds captures to the device until the bridge fails.
// Returns true if the connection was lost, false if shutdown was requested.
func (cm *connectionManager) readFromBridge() bool {
	for {
		bridge := cm.getBridge()
		if bridge == nil {
			return true
		}

		capture, err := bridge.Next()
		if err != nil {
			if errors.Is(err, ir.ErrStreamResync) {
				log.WithError(err).Debug("capture stream resynchronized")
				continue
			}
			select {
			case <-cm.done:
				return false
			default:
				log.WithError(err).Debug("bridge read failed")
				return true
			}
		}

		err = cm.device.OnReceive(capture.Receiver(cm.tolerance))
		cm.p.Send(receivedMsg{err: err, state: cm.store.State()})
	}
}

// reconnect attempts to reconnect with exponential backoff.
// Returns false if shutdown was requested during reconnection.
func (cm *connectionManager) reconnect() bool {
	if bridge := cm.getBridge(); bridge != nil {
		bridge.Close()
	}
	cm.setBridge(nil, "")

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-cm.done:
			return false
		case <-time.After(backoff):
		}

		bridge, connInfo, err := OpenBridge()
		if err == nil {
			cm.setBridge(bridge, connInfo)
			cm.p.Send(reconnectedMsg{connInfo: connInfo})
			return true
		}
		log.WithError(err).Debug("reconnect failed")

		// Exponential backoff
		backoff = min(backoff*2, maxBackoff)
	}
}
