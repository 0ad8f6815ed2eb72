// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

// Focus states
const (
	focusModeList = iota
	focusTempInput
	focusFan
	focusSwing
	focusButton
	focusCount
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// modeItem is one entry of the mode list
type modeItem struct {
	mode mitsubishi.Mode
}

var modeDescriptions = map[mitsubishi.Mode]string{
	mitsubishi.ModeOff:      "Power off",
	mitsubishi.ModeHeat:     "Heat to target",
	mitsubishi.ModeDry:      "Dehumidify (24°C fixed)",
	mitsubishi.ModeCool:     "Cool to target",
	mitsubishi.ModeHeatCool: "Automatic heat or cool",
}

// Implement list.Item interface
func (i modeItem) Title() string       { return strings.ToUpper(i.mode.String()) }
func (i modeItem) Description() string { return modeDescriptions[i.mode] }
func (i modeItem) FilterValue() string { return i.mode.String() }

// remoteKeyMap defines the remote's key bindings
type remoteKeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	TempUp   key.Binding
	TempDown key.Binding
	Enter    key.Binding
	Send     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k remoteKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Left, k.TempUp, k.Send, k.Help, k.Quit}
}

func (k remoteKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Up, k.Down},
		{k.Left, k.Right, k.TempUp, k.TempDown},
		{k.Enter, k.Send, k.Help, k.Quit},
	}
}

var remoteKeys = remoteKeyMap{
	Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "mode up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "mode down")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "change value")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next value")),
	TempUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "temperature")),
	TempDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "temperature down")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply/send")),
	Send:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "send")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// remoteModel is the Bubble Tea model for the remote TUI
type remoteModel struct {
	// Connection manager (for transmitting and reconnection)
	cm       *connectionManager
	connInfo string

	// Pending state edited by the user
	pending   mitsubishi.State
	modeList  list.Model
	tempInput textinput.Model

	// Monitoring (shared with the monitor TUI)
	stats         *mitsubishi.Statistics
	eventLog      []eventLogEntry
	maxLogEntries int
	lastReceived  *mitsubishi.State
	sending       bool

	keys         remoteKeyMap
	help         help.Model
	focusedField int

	// UI state
	width          int
	height         int
	quitting       bool
	connectionLost bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type remoteTickMsg time.Time

type receivedMsg struct {
	err   error
	state mitsubishi.State
}

type sentMsg struct {
	err   error
	state mitsubishi.State
}

type connectionLostMsg struct{}

type reconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func newRemoteModel(cm *connectionManager, connInfo string, stats *mitsubishi.Statistics) remoteModel {
	pending := cm.store.State()

	ti := textinput.New()
	ti.Placeholder = "24"
	ti.CharLimit = 4
	ti.Width = 6
	ti.SetValue(formatTemp(pending.TargetTemperature))

	items := make([]list.Item, 0, len(mitsubishi.Modes()))
	for _, mode := range mitsubishi.Modes() {
		items = append(items, modeItem{mode: mode})
	}
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	modeList := list.New(items, delegate, 30, 12)
	modeList.Title = "Mode"
	modeList.SetShowStatusBar(false)
	modeList.SetShowHelp(false)
	modeList.SetFilteringEnabled(false)
	modeList.Select(int(pending.Mode))

	return remoteModel{
		cm:            cm,
		connInfo:      connInfo,
		pending:       pending,
		modeList:      modeList,
		tempInput:     ti,
		stats:         stats,
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		keys:          remoteKeys,
		help:          help.New(),
		focusedField:  focusModeList,
		width:         80,
		height:        24,
	}
}

func formatTemp(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

// fullPatch builds a patch that sets every field of s
func fullPatch(s mitsubishi.State) mitsubishi.StatePatch {
	return mitsubishi.StatePatch{
		Mode:              &s.Mode,
		TargetTemperature: &s.TargetTemperature,
		FanSpeed:          &s.FanSpeed,
		SwingMode:         &s.SwingMode,
	}
}

// cycle steps v through n values by delta, wrapping around
func cycle(v, delta, n int) int {
	return (v + delta + n) % n
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m remoteModel) Init() tea.Cmd {
	return remoteTickCmd()
}

func remoteTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return remoteTickMsg(t)
	})
}

func (m remoteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft && m.focusedField == focusModeList {
			m.modeList, _ = m.modeList.Update(msg)
			m.syncModeFromList()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.modeList.SetHeight(max(msg.Height/2, 12))

	case remoteTickMsg:
		m.stats.CalculateRates()
		return m, remoteTickCmd()

	case receivedMsg:
		if msg.err != nil {
			m.addLogEntry(describeDecodeError(msg.err), true)
			break
		}
		state := msg.state
		m.lastReceived = &state
		m.setPending(state)
		m.addLogEntry("Received "+mitsubishi.FormatState(state), false)

	case sentMsg:
		m.sending = false
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("Send failed: %v", msg.err), true)
			break
		}
		m.setPending(msg.state)
		m.addLogEntry("Sent "+mitsubishi.FormatState(msg.state), false)

	case connectionLostMsg:
		m.connectionLost = true
		m.addLogEntry("Connection lost - reconnecting...", true)

	case reconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		m.addLogEntry("Reconnected", false)
	}

	return m, nil
}

func (m *remoteModel) setPending(s mitsubishi.State) {
	m.pending = s
	m.modeList.Select(int(s.Mode))
	m.tempInput.SetValue(formatTemp(s.TargetTemperature))
}

func (m *remoteModel) syncModeFromList() {
	if item, ok := m.modeList.SelectedItem().(modeItem); ok {
		m.pending.Mode = item.mode
	}
}

func (m *remoteModel) adjustTemp(delta float64) {
	m.pending.TargetTemperature = mitsubishi.ClampTemperature(m.pending.TargetTemperature + delta)
	m.tempInput.SetValue(formatTemp(m.pending.TargetTemperature))
}

// applyTempInput parses the temperature field into the pending state
func (m *remoteModel) applyTempInput() bool {
	t, err := strconv.ParseFloat(strings.TrimSpace(m.tempInput.Value()), 64)
	if err != nil {
		m.addLogEntry(fmt.Sprintf("Invalid temperature %q", m.tempInput.Value()), true)
		m.tempInput.SetValue(formatTemp(m.pending.TargetTemperature))
		return false
	}
	m.pending.TargetTemperature = mitsubishi.ClampTemperature(t)
	m.tempInput.SetValue(formatTemp(m.pending.TargetTemperature))
	return true
}

func (m *remoteModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit) && (m.focusedField != focusTempInput || msg.String() == "ctrl+c"):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		return m.cycleFocus(1), nil

	case key.Matches(msg, m.keys.Prev):
		return m.cycleFocus(-1), nil

	case key.Matches(msg, m.keys.Send):
		return m.send()

	case key.Matches(msg, m.keys.Help) && m.focusedField != focusTempInput:
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		switch m.focusedField {
		case focusTempInput:
			m.applyTempInput()
			return m, nil
		case focusButton:
			return m.send()
		}
		return m, nil
	}

	switch m.focusedField {
	case focusModeList:
		m.modeList, _ = m.modeList.Update(msg)
		m.syncModeFromList()

	case focusTempInput:
		var cmd tea.Cmd
		m.tempInput, cmd = m.tempInput.Update(msg)
		return m, cmd

	case focusFan, focusSwing:
		delta := 0
		switch {
		case key.Matches(msg, m.keys.Left):
			delta = -1
		case key.Matches(msg, m.keys.Right):
			delta = 1
		}
		if m.focusedField == focusFan {
			m.pending.FanSpeed = mitsubishi.FanSpeed(cycle(int(m.pending.FanSpeed), delta, len(mitsubishi.FanSpeeds())))
		} else {
			m.pending.SwingMode = mitsubishi.SwingMode(cycle(int(m.pending.SwingMode), delta, len(mitsubishi.SwingModes())))
		}
	}

	switch {
	case key.Matches(msg, m.keys.TempUp):
		m.adjustTemp(1)
	case key.Matches(msg, m.keys.TempDown):
		m.adjustTemp(-1)
	}

	return m, nil
}

func (m *remoteModel) cycleFocus(delta int) *remoteModel {
	if m.focusedField == focusTempInput {
		m.applyTempInput()
	}

	m.focusedField = cycle(m.focusedField, delta, focusCount)

	if m.focusedField == focusTempInput {
		m.tempInput.Focus()
	} else {
		m.tempInput.Blur()
	}

	return m
}

// send transmits the pending state in the background
func (m *remoteModel) send() (tea.Model, tea.Cmd) {
	// Don't allow sending while connection is lost
	if m.connectionLost {
		m.addLogEntry("Cannot send: connection lost", true)
		return m, nil
	}
	if m.sending {
		return m, nil
	}
	if m.focusedField == focusTempInput && !m.applyTempInput() {
		return m, nil
	}

	m.sending = true
	patch := fullPatch(m.pending)
	device := m.cm.device
	tx := m.cm.transmitter()
	return m, func() tea.Msg {
		state, err := device.Control(patch, tx)
		return sentMsg{err: err, state: state}
	}
}

func (m *remoteModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m remoteModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	focusedValueStyle := valueStyle.
		Reverse(true)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	buttonStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("12")).
		Padding(0, 2)

	focusedButtonStyle := buttonStyle.
		Background(lipgloss.Color("10"))

	// Header
	s.WriteString(titleStyle.Render("VANESTAT REMOTE"))
	s.WriteString(" ")
	connStatus := m.connInfo
	if m.connectionLost {
		connStatus = warningStyle.Render("RECONNECTING...")
	}
	s.WriteString(headerStyle.Render("| " + connStatus))
	s.WriteString("\n\n")

	// Layout: left panel (modes) | right panel (controls)
	leftWidth := 30
	rightWidth := max(m.width-leftWidth-6, 30)

	listStyle := boxStyle.Width(leftWidth)
	if m.focusedField == focusModeList {
		listStyle = focusedBoxStyle.Width(leftWidth)
	}
	modePanel := listStyle.Render(m.modeList.View())

	var controls strings.Builder
	controls.WriteString(labelStyle.Render("Temperature: "))
	if m.focusedField == focusTempInput {
		controls.WriteString(m.tempInput.View())
	} else {
		controls.WriteString(fmt.Sprintf("[%s]", m.tempInput.Value()))
	}
	controls.WriteString(" °C\n\n")

	selector := func(focused bool, value string) string {
		text := fmt.Sprintf("< %s >", value)
		if focused {
			return focusedValueStyle.Render(text)
		}
		return valueStyle.Render(text)
	}
	controls.WriteString(labelStyle.Render("Fan:         "))
	controls.WriteString(selector(m.focusedField == focusFan, m.pending.FanSpeed.String()))
	controls.WriteString("\n\n")
	controls.WriteString(labelStyle.Render("Swing:       "))
	controls.WriteString(selector(m.focusedField == focusSwing, m.pending.SwingMode.String()))
	controls.WriteString("\n\n")

	btnText := "[ Send ]"
	if m.sending {
		btnText = "[ Sending... ]"
	}
	if m.focusedField == focusButton {
		controls.WriteString(focusedButtonStyle.Render(btnText))
	} else {
		controls.WriteString(buttonStyle.Render(btnText))
	}
	controls.WriteString("\n\n")

	frame := m.cm.device.Mapper().Encode(m.pending)
	controls.WriteString(labelStyle.Render("Frame: "))
	controls.WriteString(headerStyle.Render(mitsubishi.FormatFrame(frame)))

	controlPanel := boxStyle.Width(rightWidth).Render(controls.String())

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, modePanel, " ", controlPanel))
	s.WriteString("\n\n")

	// Statistics bar
	snap := m.stats.Snapshot()
	statsLine := fmt.Sprintf("%s %s  %s %s  %s %s",
		labelStyle.Render("Received:"), valueStyle.Render(fmt.Sprintf("%d", snap.TotalCaptures)),
		labelStyle.Render("Valid:"), valueStyle.Render(fmt.Sprintf("%.1f%%", snap.SuccessRate())),
		labelStyle.Render("Errors:"), func() string {
			if snap.Errors() > 0 {
				return errorStyle.Render(fmt.Sprintf("%d", snap.Errors()))
			}
			return valueStyle.Render("0")
		}(),
	)
	if m.lastReceived != nil {
		statsLine += fmt.Sprintf("  %s %s", labelStyle.Render("Last:"), valueStyle.Render(mitsubishi.FormatState(*m.lastReceived)))
	}
	s.WriteString(boxStyle.Width(m.width - 4).Render(statsLine))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(labelStyle.Render("EVENTS"))
	s.WriteString("\n")
	logHeight := max(m.height-30, 3)
	startIdx := max(len(m.eventLog)-logHeight, 0)

	var logContent strings.Builder
	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	}
	for _, entry := range m.eventLog[startIdx:] {
		timestamp := entry.timestamp.Format("15:04:05")
		style, marker := warningStyle, "ℹ "
		if entry.isError {
			style, marker = errorStyle, "✗ "
		}
		logContent.WriteString(fmt.Sprintf("%s %s\n", headerStyle.Render(timestamp), style.Render(marker+entry.message)))
	}
	s.WriteString(boxStyle.Width(m.width - 4).Render(strings.TrimRight(logContent.String(), "\n")))
	s.WriteString("\n")

	s.WriteString(m.help.View(m.keys))

	return s.String()
}
