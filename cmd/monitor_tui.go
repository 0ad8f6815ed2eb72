// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for info
}

// Monitor TUI model
type monitorModel struct {
	connInfo      string
	statsInterval int // seconds between rate updates
	ticks         int
	showAll       bool
	stats         *mitsubishi.Statistics
	eventLog      []eventLogEntry
	maxLogEntries int
	width         int
	height        int
	quitting      bool
	closed        bool
	lastState     *mitsubishi.State
	lastUpdate    time.Time
}

// Messages
type tickMsg time.Time
type readErrMsg struct {
	err    error
	closed bool
}

// formatElapsed formats a duration as a human-friendly string
func formatElapsed(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds <= 0 {
		return "0 seconds"
	}

	units := []struct {
		name string
		size int64
	}{
		{"day", 86400},
		{"hour", 3600},
		{"minute", 60},
		{"second", 1},
	}

	parts := []string{}
	for _, u := range units {
		n := seconds / u.size
		seconds %= u.size
		if n == 0 {
			continue
		}
		if n == 1 {
			parts = append(parts, "1 "+u.name)
		} else {
			parts = append(parts, fmt.Sprintf("%d %ss", n, u.name))
		}
	}

	// Join with commas and "and" for last item
	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	last := parts[len(parts)-1]
	rest := strings.Join(parts[:len(parts)-1], ", ")
	return rest + ", and " + last
}

func newMonitorModel(connInfo string, stats *mitsubishi.Statistics, statsInterval int, showAll bool) monitorModel {
	return monitorModel{
		connInfo:      connInfo,
		statsInterval: statsInterval,
		showAll:       showAll,
		stats:         stats,
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.stats.Reset()
			m.addLogEntry("Statistics reset", false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.ticks++
		if m.statsInterval <= 1 || m.ticks%m.statsInterval == 0 {
			m.stats.CalculateRates()
		}
		return m, tickCmd()

	case readErrMsg:
		m.addLogEntry(fmt.Sprintf("READ ERROR: %v", msg.err), true)
		if msg.closed {
			m.closed = true
		}

	case captureMsg:
		if msg.err != nil {
			m.addLogEntry(describeDecodeError(msg.err), true)
			return m, nil
		}
		state := msg.state
		m.lastState = &state
		m.lastUpdate = time.Now()
		if m.showAll {
			m.addLogEntry(mitsubishi.FormatState(state), false)
		}
	}

	return m, nil
}

// describeDecodeError names the failing stage of a rejected capture
func describeDecodeError(err error) string {
	var de *mitsubishi.DecodeError
	if errors.As(err, &de) {
		return fmt.Sprintf("%s: %v", de.Kind, err)
	}
	return fmt.Sprintf("DECODE ERROR: %v", err)
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	entry := eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	mode := "Errors only"
	if m.showAll {
		mode = "All frames"
	}

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("VANESTAT - MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Mode: %s | 'r' reset, 'q' quit", m.connInfo, mode)))
	s.WriteString("\n\n")

	if m.closed {
		s.WriteString(errorStyle.Render("✗ Connection closed"))
		s.WriteString("\n\n")
	}

	// Statistics
	snap := m.stats.Snapshot()
	var errorPercent float64
	if snap.TotalCaptures > 0 {
		errorPercent = float64(snap.Errors()) * 100.0 / float64(snap.TotalCaptures)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Captures:"), statsValueStyle.Render(fmt.Sprintf("%d", snap.TotalCaptures)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", snap.ValidFrames, snap.SuccessRate())),
		statsLabelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", snap.Errors(), errorPercent)),
	))

	if snap.Errors() > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			statsLabelStyle.Render("Header:"), errorStyle.Render(fmt.Sprintf("%d", snap.HeaderErrors)),
			statsLabelStyle.Render("Bit timing:"), errorStyle.Render(fmt.Sprintf("%d", snap.BitErrors)),
			statsLabelStyle.Render("Fixed byte:"), errorStyle.Render(fmt.Sprintf("%d", snap.FixedByteErrors)),
		))
	}

	if snap.ChecksumMismatches > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s %s\n",
			statsLabelStyle.Render("Checksum mismatches:"),
			warningStyle.Render(fmt.Sprintf("%d", snap.ChecksumMismatches)),
			headerStyle.Render("(accepted)"),
		))
	}

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
		statsLabelStyle.Render("Capture Rate:"), statsValueStyle.Render(fmt.Sprintf("%.2f/s", snap.CaptureRate)),
		statsLabelStyle.Render("Error Rate:"), func() string {
			if snap.ErrorRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.2f/s", snap.ErrorRate))
			}
			return statsValueStyle.Render(fmt.Sprintf("%.2f/s", snap.ErrorRate))
		}(),
		statsLabelStyle.Render("Running:"), statsValueStyle.Render(formatElapsed(time.Since(snap.StartTime))),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Last state (only shown once a frame decoded)
	if m.lastState != nil {
		s.WriteString(statsLabelStyle.Render("Last Received State:"))
		s.WriteString("\n")

		stateContent := strings.Builder{}
		stateContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Mode:"), statsValueStyle.Render(m.lastState.Mode.String()),
			statsLabelStyle.Render("Target:"), statsValueStyle.Render(fmt.Sprintf("%.0f°C", m.lastState.TargetTemperature)),
		))
		stateContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Fan:"), statsValueStyle.Render(m.lastState.FanSpeed.String()),
			statsLabelStyle.Render("Swing:"), statsValueStyle.Render(m.lastState.SwingMode.String()),
		))
		stateContent.WriteString(headerStyle.Render(fmt.Sprintf("%s ago", formatElapsed(time.Since(m.lastUpdate)))))

		s.WriteString(boxStyle.Render(stateContent.String()))
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	// Calculate how many log entries we can show
	logHeight := max(m.height-17, 5)

	logContent := strings.Builder{}
	startIdx := max(len(m.eventLog)-logHeight, 0)

	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
