package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/Brutus1066/portr/internal/config"
	"github.com/Brutus1066/portr/internal/services"
	"github.com/Brutus1066/portr/pkg/model"
)

var (
	colorReset  = "\033[0m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
	ansiByName  = map[string]string{
		"black":   "\033[30m",
		"red":     "\033[31m",
		"green":   "\033[32m",
		"yellow":  "\033[33m",
		"blue":    "\033[34m",
		"magenta": "\033[35m",
		"cyan":    "\033[36m",
		"white":   "\033[37m",
	}
)

// themeColor maps a config color name to its escape, falling back to cyan
// for unknown names.
func themeColor(name string) string {
	if c, ok := ansiByName[name]; ok {
		return c
	}
	return ansiByName["cyan"]
}

const banner = `
╔══════════════════════════════════════════════════════════════════════════╗
║                                                                          ║
║            ██████╗  ██████╗ ██████╗ ████████╗██████╗                     ║
║            ██╔══██╗██╔═══██╗██╔══██╗╚══██╔══╝██╔══██╗                    ║
║            ██████╔╝██║   ██║██████╔╝   ██║   ██████╔╝                    ║
║            ██╔═══╝ ██║   ██║██╔══██╗   ██║   ██╔══██╗                    ║
║            ██║     ╚██████╔╝██║  ██║   ██║   ██║  ██║                    ║
║            ╚═╝      ╚═════╝ ╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝                    ║
║                                                                          ║
║           Lightning-fast port inspector & process killer                 ║
║                                                                          ║
╚══════════════════════════════════════════════════════════════════════════╝
`

// PrintBanner writes the startup banner in the theme's banner color.
func PrintBanner(w io.Writer, theme config.Theme, colorEnabled bool) {
	if colorEnabled {
		fmt.Fprint(w, themeColor(theme.BannerColor)+banner+colorReset)
		return
	}
	fmt.Fprint(w, banner)
}

// StatusIcon marks a socket state in table output.
func StatusIcon(state string) string {
	switch strings.ToUpper(state) {
	case "LISTEN", "LISTENING":
		return "●"
	case "ESTABLISHED":
		return "◉"
	case "TIME_WAIT":
		return "◌"
	case "CLOSE_WAIT":
		return "◎"
	default:
		return "○"
	}
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

// RenderTable prints the human table of snapshot entries.
func RenderTable(w io.Writer, snap *model.Snapshot, colorEnabled bool) {
	if len(snap.Entries) == 0 {
		if colorEnabled {
			fmt.Fprintln(w, colorDim+"No listening ports found."+colorReset)
		} else {
			fmt.Fprintln(w, "No listening ports found.")
		}
		return
	}

	dim, bold, reset := "", "", ""
	yellow, green, cyan := "", "", ""
	if colorEnabled {
		dim, bold, reset = colorDim, colorBold, colorReset
		yellow, green, cyan = ansiByName["yellow"], ansiByName["green"], ansiByName["cyan"]
	}

	fmt.Fprintf(w, "%s  %-7s %-6s %-8s %-25s %-12s %-10s %-10s%s\n",
		bold, "PORT", "PROTO", "PID", "PROCESS", "SERVICE", "MEMORY", "UPTIME", reset)
	fmt.Fprintf(w, "%s%s%s\n", dim, strings.Repeat("─", 84), reset)

	for i := range snap.Entries {
		e := &snap.Entries[i]
		pid := "-"
		if e.Socket.PID > 0 {
			pid = fmt.Sprint(e.Socket.PID)
		}
		service := "-"
		if e.Service != nil {
			service = e.Service.Name
		}
		if e.Container != nil {
			service = "🐳 " + e.Container.Name
		}
		mem := "-"
		if e.Process != nil {
			mem = fmt.Sprintf("%.1f MB", e.MemoryMB())
		}
		fmt.Fprintf(w, "%s %s%-7d%s %-6s %-8s %s%-25s%s %-12s %-10s %-10s\n",
			StatusIcon(e.Socket.State),
			yellow, e.Socket.Port, reset,
			e.Socket.Protocol, pid,
			green, truncate(e.ProcessName(), 25), reset,
			truncate(service, 12), mem, e.UptimeDisplay())
	}

	fmt.Fprintf(w, "\n%s%d port(s) in use%s\n", bold, len(snap.Entries), reset)
	fmt.Fprintf(w, "%sTip: %sportr dashboard%s%s for the interactive view | %sportr --help%s%s for all options%s\n",
		dim, cyan, reset, dim, cyan, reset, dim, reset)
}

// RenderDetails prints the boxed card for a single entry.
func RenderDetails(w io.Writer, e *model.SnapshotEntry, verbose, colorEnabled bool) {
	dim, reset, cyan := "", "", ""
	yellow, green, magenta := "", "", ""
	if colorEnabled {
		dim, reset, cyan = colorDim, colorReset, ansiByName["cyan"]
		yellow, green, magenta = ansiByName["yellow"], ansiByName["green"], ansiByName["magenta"]
	}

	const boxWidth = 60
	title := fmt.Sprintf(" Port %d ", e.Socket.Port)
	fmt.Fprintf(w, "%s╭─%s%s%s\n", cyan, title, strings.Repeat("─", boxWidth-len(title)-3), reset)
	fmt.Fprintf(w, "%s│%s\n", cyan, reset)

	line := func(label, value, color string) {
		fmt.Fprintf(w, "%s│%s  %s%10s%s: %s%s%s\n", cyan, reset, dim, label, reset, color, value, reset)
	}

	pid := "-"
	if e.Socket.PID > 0 {
		pid = fmt.Sprint(e.Socket.PID)
	}
	line("PID", pid, yellow)
	line("Process", e.ProcessName(), green)
	if e.Process != nil && e.Process.PPID > 0 {
		line("Parent", fmt.Sprintf("PID %d", e.Process.PPID), dim)
	}
	line("Protocol", e.Socket.Protocol, "")
	line("State", e.Socket.State, "")
	line("Local", e.LocalAddress(), "")
	if e.Socket.RemoteAddr != "" {
		line("Remote", e.Socket.RemoteAddr, "")
	}
	if e.Service != nil {
		risk := ""
		if e.Service.Critical {
			risk = " (critical)"
		}
		line("Service", e.Service.Name+risk, magenta)
	}
	if e.Container != nil {
		label := fmt.Sprintf("%s (%s)", e.Container.Name, e.Container.Image)
		if services.IsCriticalImage(e.Container.Image) {
			label += " ⚠ critical data service"
		}
		line("Container", label, cyan)
	}

	fmt.Fprintf(w, "%s│%s\n", cyan, reset)
	if e.Process != nil {
		line("Memory", fmt.Sprintf("%.1f MB", e.MemoryMB()), magenta)
		cpu := "sampling..."
		if e.Process.CPUSampled {
			cpu = fmt.Sprintf("%.1f%%", e.Process.CPUPercent)
		}
		line("CPU", cpu, magenta)
		line("Uptime", e.UptimeDisplay(), "")
		if verbose {
			fmt.Fprintf(w, "%s│%s\n", cyan, reset)
			if e.Process.Path != "" {
				line("Path", e.Process.Path, dim)
			}
			if e.Process.User != "" {
				line("User", e.Process.User, dim)
			}
		}
	}

	fmt.Fprintf(w, "%s│%s\n", cyan, reset)
	fmt.Fprintf(w, "%s╰%s╯%s\n", cyan, strings.Repeat("─", boxWidth-2), reset)
	fmt.Fprintf(w, "\n  %s→%s Kill: %sportr %d --kill%s\n", dim, reset, yellow, e.Socket.Port, reset)
}
