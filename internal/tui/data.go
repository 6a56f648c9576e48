package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wrap"

	"github.com/Brutus1066/portr/internal/action"
	"github.com/Brutus1066/portr/internal/discover"
	"github.com/Brutus1066/portr/pkg/model"
)

// refresh always polls both protocols. The protocol key only narrows the
// view; the held snapshot stays broad so toggling back needs no new pass.
func (m Model) refresh() tea.Cmd {
	d := m.discoverer
	f := discover.Filter{TCP: true, UDP: true}
	return func() tea.Msg {
		snap, err := d.Discover(f)
		if err != nil {
			return discoverFailedMsg{err}
		}
		return snapshotMsg{snap}
	}
}

func (m Model) doKill(target *model.SnapshotEntry, force bool) tea.Cmd {
	kill := m.kill
	sig := strings.TrimPrefix(m.cfg.Defaults.Signal, "SIG")
	return func() tea.Msg {
		res, err := kill(target, action.Options{Signal: sig, Force: force})
		return killDoneMsg{result: res, err: err}
	}
}

// applyFilters recomputes the visible slice from the snapshot. Pure
// derivation: the snapshot itself is never touched.
func (m *Model) applyFilters() {
	m.visible = m.visible[:0]
	if m.snapshot == nil {
		m.rebuildRows()
		return
	}

	query := strings.ToLower(strings.TrimSpace(m.input.Value()))
	for _, e := range m.snapshot.Entries {
		if m.protoFilter != "" && e.Socket.Protocol != m.protoFilter {
			continue
		}
		if m.dockerOnly && e.Container == nil {
			continue
		}
		if m.criticalOnly && !e.IsCritical() {
			continue
		}
		if query != "" && !entryMatches(&e, query) {
			continue
		}
		m.visible = append(m.visible, e)
	}

	m.sortVisible()
	m.rebuildRows()
}

func entryMatches(e *model.SnapshotEntry, query string) bool {
	if strings.Contains(fmt.Sprint(e.Socket.Port), query) {
		return true
	}
	if strings.Contains(strings.ToLower(e.ProcessName()), query) {
		return true
	}
	if strings.Contains(strings.ToLower(e.LocalAddress()), query) {
		return true
	}
	if e.Service != nil && strings.Contains(strings.ToLower(e.Service.Name), query) {
		return true
	}
	if e.Container != nil && strings.Contains(strings.ToLower(e.Container.Name), query) {
		return true
	}
	return false
}

func (m *Model) sortVisible() {
	sort.SliceStable(m.visible, func(i, j int) bool {
		a, b := &m.visible[i], &m.visible[j]
		var less bool
		switch m.sortCol {
		case "name":
			less = strings.ToLower(a.ProcessName()) < strings.ToLower(b.ProcessName())
		case "mem":
			less = a.MemoryMB() < b.MemoryMB()
		case "cpu":
			ac, bc := 0.0, 0.0
			if a.Process != nil && a.Process.CPUSampled {
				ac = a.Process.CPUPercent
			}
			if b.Process != nil && b.Process.CPUSampled {
				bc = b.Process.CPUPercent
			}
			less = ac < bc
		default:
			less = a.Socket.Port < b.Socket.Port
		}
		if m.sortDesc {
			return !less
		}
		return less
	})
}

func (m *Model) rebuildRows() {
	rows := make([]table.Row, 0, len(m.visible))
	for i := range m.visible {
		e := &m.visible[i]
		pid := "-"
		if e.Socket.PID > 0 {
			pid = fmt.Sprint(e.Socket.PID)
		}
		service := ""
		if e.Service != nil {
			service = e.Service.Name
			if e.Service.Critical {
				service = "! " + service
			}
		}
		if e.Container != nil {
			service = "🐳 " + e.Container.Name
		}
		mem := "-"
		cpu := "-"
		if e.Process != nil {
			mem = fmt.Sprintf("%.1f MB", e.MemoryMB())
			if e.Process.CPUSampled {
				cpu = fmt.Sprintf("%.1f", e.Process.CPUPercent)
			} else {
				cpu = "..."
			}
		}
		rows = append(rows, table.Row{
			fmt.Sprint(e.Socket.Port),
			e.Socket.Protocol,
			pid,
			e.ProcessName(),
			service,
			mem,
			cpu,
			e.UptimeDisplay(),
			e.Socket.State,
		})
	}
	m.table.SetRows(rows)
}

// selected returns the entry under the cursor, or nil for an empty table.
func (m *Model) selected() *model.SnapshotEntry {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return nil
	}
	return &m.visible[idx]
}

// rememberSelection records the stable key of the row under the cursor.
func (m *Model) rememberSelection() {
	if e := m.selected(); e != nil {
		m.selKey = e.Key()
	}
}

// restoreSelection re-finds the remembered row in the fresh visible slice.
// A vanished row falls back to the top rather than a positional neighbor.
func (m *Model) restoreSelection() {
	if m.selKey != "" {
		for i := range m.visible {
			if m.visible[i].Key() == m.selKey {
				m.table.SetCursor(i)
				return
			}
		}
	}
	m.table.SetCursor(0)
	m.rememberSelection()
}

// detailContent renders the selected entry for the detail viewport.
func (m *Model) detailContent(e *model.SnapshotEntry) string {
	var b strings.Builder

	row := func(label, value string) {
		fmt.Fprintf(&b, "%-12s %s\n", label, value)
	}

	row("Port", fmt.Sprintf("%d/%s", e.Socket.Port, e.Socket.Protocol))
	row("State", e.Socket.State)
	row("Local", e.LocalAddress())
	if e.Socket.RemoteAddr != "" {
		row("Remote", e.Socket.RemoteAddr)
	}
	b.WriteString("\n")

	if e.Process != nil {
		row("PID", fmt.Sprint(e.Process.PID))
		if e.Process.PPID > 0 {
			row("Parent PID", fmt.Sprint(e.Process.PPID))
		}
		row("Process", e.Process.Name)
		if e.Process.Path != "" {
			row("Path", e.Process.Path)
		}
		if e.Process.User != "" {
			row("User", e.Process.User)
		}
		row("Memory", fmt.Sprintf("%.1f MB", e.MemoryMB()))
		if e.Process.CPUSampled {
			row("CPU", fmt.Sprintf("%.1f%%", e.Process.CPUPercent))
		} else {
			row("CPU", "sampling...")
		}
		row("Uptime", e.UptimeDisplay())
	} else {
		row("Process", "unavailable (no permission or it exited)")
	}
	b.WriteString("\n")

	if e.Service != nil {
		svc := e.Service.Name
		if e.Service.Critical {
			svc += "  [critical]"
		}
		row("Service", svc)
		if e.Service.Description != "" {
			row("", e.Service.Description)
		}
	}
	if e.Container != nil {
		row("Container", e.Container.Name)
		row("Image", e.Container.Image)
		row("Status", e.Container.Status)
		row("ID", e.Container.ID)
	}

	width := m.viewport.Width
	if width <= 0 {
		return b.String()
	}
	return wrap.String(b.String(), width)
}
