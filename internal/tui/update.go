package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Brutus1066/portr/internal/action"
	"github.com/Brutus1066/portr/internal/output"
	"github.com/Brutus1066/portr/pkg/model"
)

type tickMsg time.Time

type snapshotMsg struct {
	snap *model.Snapshot
}

type discoverFailedMsg struct {
	err error
}

type killDoneMsg struct {
	result *action.Result
	err    error
}

func waitTick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// dialogOpen reports whether a confirmation or export dialog is up. While
// one is, background polls are suppressed so the rows the user is deciding
// about cannot shift underneath the prompt. Searching and the action menu
// keep polling.
func (m Model) dialogOpen() bool {
	switch m.mode {
	case modeConfirmKill, modeConfirmCritical, modeExport:
		return true
	}
	return false
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		var cmd tea.Cmd
		if !m.quitting && !m.dialogOpen() {
			cmd = m.refresh()
		}
		return m, tea.Batch(cmd, waitTick())

	case snapshotMsg:
		m.snapshot = msg.snap
		m.applyFilters()
		m.restoreSelection()
		return m, nil

	case discoverFailedMsg:
		// The previous snapshot stays on screen; only the status line reports.
		m.statusMsg = fmt.Sprintf("refresh failed: %v", msg.err)
		m.statusErr = true
		return m, nil

	case killDoneMsg:
		m.target = nil
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
			m.statusErr = true
			return m, nil
		}
		m.statusMsg = msg.result.Detail
		m.statusErr = false
		// Immediate re-poll so the freed port disappears without waiting for
		// the next tick.
		return m, m.refresh()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := msg.Height - 10
		if h < 3 {
			h = 3
		}
		m.table.SetHeight(h)
		m.viewport.Width = msg.Width - 6
		m.viewport.Height = h
		return m, nil

	case tea.MouseMsg:
		// Wheel only: convert to key steps so the cursor moves one row.
		if m.mode != modeNormal {
			return m, nil
		}
		var keyMsg tea.KeyMsg
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			keyMsg = tea.KeyMsg{Type: tea.KeyUp}
		case tea.MouseButtonWheelDown:
			keyMsg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(keyMsg)
		m.rememberSelection()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// Any keypress clears a transient status message.
	m.statusMsg = ""
	m.statusErr = false

	switch m.mode {
	case modeSearching:
		return m.handleSearchKey(msg)
	case modeMenu:
		return m.handleMenuKey(msg)
	case modeExport:
		return m.handleExportKey(msg)
	case modeConfirmKill:
		return m.handleConfirmKey(msg)
	case modeConfirmCritical:
		return m.handleCriticalConfirmKey(msg)
	case modeDetail:
		return m.handleDetailKey(msg)
	case modeHelp:
		switch msg.String() {
		case "q", "esc", "?":
			m.mode = modeNormal
		}
		return m, nil
	}

	return m.handleNormalKey(msg)
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "/":
		m.mode = modeSearching
		m.input.Focus()
		return m, textinput.Blink

	case "r":
		return m, m.refresh()

	case "t":
		// all -> TCP -> UDP -> all
		switch m.protoFilter {
		case "":
			m.protoFilter = "TCP"
		case "TCP":
			m.protoFilter = "UDP"
		default:
			m.protoFilter = ""
		}
		m.applyFilters()
		m.restoreSelection()
		return m, nil

	case "d":
		m.dockerOnly = !m.dockerOnly
		m.applyFilters()
		m.restoreSelection()
		return m, nil

	case "c":
		m.criticalOnly = !m.criticalOnly
		m.applyFilters()
		m.restoreSelection()
		return m, nil

	case "s":
		order := []string{"port", "name", "mem", "cpu"}
		for i, col := range order {
			if m.sortCol == col {
				m.sortCol = order[(i+1)%len(order)]
				break
			}
		}
		m.applyFilters()
		m.restoreSelection()
		return m, nil

	case "S":
		m.sortDesc = !m.sortDesc
		m.applyFilters()
		m.restoreSelection()
		return m, nil

	case "enter":
		if e := m.selected(); e != nil {
			m.mode = modeDetail
			m.viewport.SetContent(m.detailContent(e))
			m.viewport.GotoTop()
		}
		return m, nil

	case "a":
		if m.selected() != nil {
			m.mode = modeMenu
		}
		return m, nil

	case "e":
		if m.snapshot != nil {
			m.mode = modeExport
		}
		return m, nil

	case "k":
		return m.startKill(false)

	case "K":
		return m.startKill(true)

	case "?":
		m.mode = modeHelp
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	m.rememberSelection()
	return m, cmd
}

// startKill captures the selected entry and opens the right confirmation.
func (m Model) startKill(force bool) (tea.Model, tea.Cmd) {
	e := m.selected()
	if e == nil {
		return m, nil
	}
	target := *e
	m.target = &target
	m.pendingForce = force

	if action.RequiresTypedConfirm(&target) {
		m.mode = modeConfirmCritical
		m.confirm.SetValue("")
		m.confirm.Focus()
		return m, textinput.Blink
	}
	if !m.cfg.Defaults.Confirm {
		m.mode = modeNormal
		return m, m.doKill(m.target, force)
	}
	m.mode = modeConfirmKill
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.mode = modeNormal
		m.input.Blur()
		if msg.String() == "esc" {
			m.input.SetValue("")
			m.applyFilters()
			m.restoreSelection()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.applyFilters()
	m.table.SetCursor(0)
	m.rememberSelection()
	return m, cmd
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.mode = modeNormal
		return m, nil
	case "k":
		m.mode = modeNormal
		return m.startKill(false)
	case "f":
		m.mode = modeNormal
		return m.startKill(true)
	case "e":
		m.mode = modeExport
		return m, nil
	case "r":
		m.mode = modeNormal
		return m, m.refresh()
	}
	return m, nil
}

func (m Model) handleExportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeNormal
		return m, nil
	case "left", "h":
		m.exportIdx = (m.exportIdx + len(exportFormats) - 1) % len(exportFormats)
		return m, nil
	case "right", "l", "tab":
		m.exportIdx = (m.exportIdx + 1) % len(exportFormats)
		return m, nil
	case "enter":
		m.mode = modeNormal
		name, err := output.WriteExport(m.snapshot, exportFormats[m.exportIdx])
		if err != nil {
			m.statusMsg = fmt.Sprintf("export failed: %v", err)
			m.statusErr = true
			return m, nil
		}
		m.statusMsg = "exported to " + name
		return m, nil
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = modeNormal
		return m, m.doKill(m.target, m.pendingForce)
	case "n", "N", "esc", "q":
		m.mode = modeNormal
		m.target = nil
		return m, nil
	}
	// Anything else keeps the prompt up.
	return m, nil
}

// Critical targets demand the word "yes" typed out. Anything else on
// enter cancels.
func (m Model) handleCriticalConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.target = nil
		m.confirm.Blur()
		return m, nil
	case "enter":
		answer := strings.TrimSpace(strings.ToLower(m.confirm.Value()))
		m.confirm.Blur()
		if answer == "yes" {
			m.mode = modeNormal
			return m, m.doKill(m.target, m.pendingForce)
		}
		m.mode = modeNormal
		m.target = nil
		m.statusMsg = "cancelled"
		return m, nil
	}
	var cmd tea.Cmd
	m.confirm, cmd = m.confirm.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "enter":
		m.mode = modeNormal
		return m, nil
	case "k":
		m.mode = modeNormal
		return m.startKill(false)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}
