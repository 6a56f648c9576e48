package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	outerStyle := baseStyle.
		Width(m.width-2).
		Height(m.height-2).
		Padding(0, 1)

	header := m.viewHeader()
	footer := footerStyle.Width(m.width - 4).Render(m.viewFooter())

	var body string
	switch m.mode {
	case modeDetail:
		title := "Entry Detail"
		if e := m.selected(); e != nil {
			title = fmt.Sprintf("Port %d/%s", e.Socket.Port, e.Socket.Protocol)
		}
		body = lipgloss.JoinVertical(lipgloss.Left,
			tableHeaderStyle.Width(m.viewport.Width).Render(title),
			lipgloss.NewStyle().PaddingLeft(1).Render(m.viewport.View()),
		)
	case modeHelp:
		body = m.viewHelp()
	default:
		body = m.table.View()
	}

	status := m.viewStatus()

	return outerStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			lipgloss.NewStyle().Height(1).Render(""),
			lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(status),
			lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(m.input.View()),
			body,
			lipgloss.NewStyle().Height(1).Render(""),
			footer,
		),
	)
}

func (m Model) viewHeader() string {
	parts := []string{titleStyle.Render("portr")}

	if m.protoFilter != "" {
		parts = append(parts, filterChipStyle.Render(m.protoFilter))
	}
	if m.dockerOnly {
		parts = append(parts, filterChipStyle.Render("docker"))
	}
	if m.criticalOnly {
		parts = append(parts, criticalStyle.Render("critical"))
	}
	if m.snapshot != nil {
		parts = append(parts, lipgloss.NewStyle().Padding(0, 1).Render(
			fmt.Sprintf("%d ports", len(m.visible))))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) viewStatus() string {
	target := ""
	if m.target != nil {
		target = fmt.Sprintf("%s on port %d", m.target.ProcessName(), m.target.Socket.Port)
	}

	switch m.mode {
	case modeSearching:
		return "Mode: Searching (Esc clears, Enter keeps the filter)"
	case modeMenu:
		return actionMenuStyle.Render("Actions:  [k]ill  [f]orce kill  [e]xport  [r]efresh  |  Esc: cancel")
	case modeExport:
		var opts []string
		for i, f := range exportFormats {
			if i == m.exportIdx {
				opts = append(opts, filterChipStyle.Render(f))
			} else {
				opts = append(opts, " "+f+" ")
			}
		}
		return confirmStyle.Render("Export format: ") + strings.Join(opts, " ") +
			"  (Enter: write, Esc: cancel)"
	case modeConfirmKill:
		return confirmStyle.Render(fmt.Sprintf("Kill %s? [y]es / [n]o", target))
	case modeConfirmCritical:
		warn := criticalStyle.Render(" CRITICAL ")
		return fmt.Sprintf("%s %s %s",
			warn,
			confirmStyle.Render(fmt.Sprintf("stop %s. Type yes to confirm:", target)),
			m.confirm.View())
	}

	if m.statusMsg != "" {
		if m.statusErr {
			return errorStyle.Render(m.statusMsg)
		}
		return successStyle.Render(m.statusMsg)
	}
	return "Mode: Navigation (Press / to search, ? for help)"
}

func (m Model) viewFooter() string {
	helpText := "Enter: Detail | k: Kill | a: Actions | e: Export | t/d/c: Filter | s/S: Sort | ?: Help | q: Quit"
	if m.mode == modeDetail {
		helpText = "k: Kill | Esc: Back | Up/Down: Scroll"
	}
	if m.version == "" {
		return helpText
	}
	gap := m.width - 6 - lipgloss.Width(helpText) - lipgloss.Width(m.version)
	if gap > 0 {
		return helpText + strings.Repeat(" ", gap) + m.version
	}
	return helpText
}

func (m Model) viewHelp() string {
	rows := []string{
		"Navigation",
		"  up/down, wheel   move selection",
		"  enter            open entry detail",
		"  /                search (port, process, service, address)",
		"",
		"Filters",
		"  t                cycle protocol: all, TCP, UDP",
		"  d                only containerized ports",
		"  c                only critical services",
		"  s / S            cycle sort column / flip direction",
		"",
		"Actions",
		"  k                kill selected (graceful)",
		"  K                force kill selected",
		"  a                action menu",
		"  e                export snapshot (json, csv, md)",
		"  r                refresh now",
		"",
		"Killing a critical service or a container asks for a typed yes.",
		"Containers are stopped through the runtime, never signaled.",
	}
	return lipgloss.NewStyle().PaddingLeft(2).Render(strings.Join(rows, "\n"))
}
