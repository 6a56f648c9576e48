package app

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Brutus1066/portr/internal/action"
	"github.com/Brutus1066/portr/internal/discover"
	"github.com/Brutus1066/portr/internal/output"
	"github.com/Brutus1066/portr/internal/proc"
	"github.com/Brutus1066/portr/internal/services"
	"github.com/Brutus1066/portr/pkg/model"
)

// portNotInUse phrases a miss, naming the well-known service when the port
// has one.
func portNotInUse(port int) string {
	if name := services.ShortName(port); name != "" {
		return fmt.Sprintf("Port %d (%s) is not in use", port, name)
	}
	return fmt.Sprintf("Port %d is not in use", port)
}

func parseRange(s string) (int, int, error) {
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid port range %q", s)
	}
	low, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid port range %q", s)
	}
	high, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid port range %q", s)
	}
	if low < 1 || high > 65535 || low > high {
		return 0, 0, fmt.Errorf("invalid port range %q", s)
	}
	return low, high, nil
}

func render(snap *model.Snapshot, format string) error {
	if format == "pretty" {
		output.RenderTable(os.Stdout, snap, colorEnabled())
		return nil
	}
	content, err := output.Render(snap, format)
	if err != nil {
		return err
	}
	fmt.Print(content)
	return nil
}

func listPorts(tcpOnly, udpOnly bool, format string) error {
	engine, _ := newEngine()
	snap, err := engine.Discover(discover.Filter{TCP: tcpOnly || !udpOnly, UDP: udpOnly || !tcpOnly})
	if err != nil {
		return err
	}
	return render(snap, format)
}

func scanRange(lo, hi int, format string) error {
	engine, _ := newEngine()
	snap, err := engine.Discover(discover.Filter{PortMin: lo, PortMax: hi})
	if err != nil {
		return err
	}
	if format == "pretty" && len(snap.Entries) == 0 {
		fmt.Printf("No listening ports in range %d-%d\n", lo, hi)
		return nil
	}
	return render(snap, format)
}

func inspectPorts(ports []int, format string, verbose, tree bool) error {
	engine, _ := newEngine()
	snap, err := engine.Discover(discover.Filter{})
	if err != nil {
		return err
	}

	if format != "pretty" {
		picked := &model.Snapshot{Taken: snap.Taken}
		for _, port := range ports {
			if e := snap.ForPort(port); e != nil {
				picked.Entries = append(picked.Entries, *e)
			}
		}
		return render(picked, format)
	}

	color := colorEnabled()
	for _, port := range ports {
		e := snap.ForPort(port)
		if e == nil {
			fmt.Println(portNotInUse(port))
			continue
		}
		output.RenderDetails(os.Stdout, e, verbose, color)
		if tree && e.Socket.PID > 0 {
			chain, children := proc.Tree(e.Socket.PID)
			if len(chain) > 0 {
				fmt.Println()
				output.PrintTree(os.Stdout, chain, children, color)
			}
		}
	}
	return nil
}

// killPort runs the one-shot kill workflow for a port: resolve the entry,
// confirm (typed yes for critical targets), terminate, report.
func killPort(port int, force, dryRun, sigkill bool) error {
	engine, killer := newEngine()
	snap, err := engine.Discover(discover.Filter{})
	if err != nil {
		return err
	}

	e := snap.ForPort(port)
	if e == nil {
		fmt.Println(portNotInUse(port))
		return nil
	}

	opts := action.Options{
		Signal: strings.TrimPrefix(cfg.Defaults.Signal, "SIG"),
		DryRun: dryRun,
	}
	if sigkill || cfg.Defaults.Signal == "SIGKILL" {
		opts.Signal = "KILL"
	}

	if !dryRun && !force && cfg.Defaults.Confirm {
		output.RenderDetails(os.Stdout, e, false, colorEnabled())
		fmt.Println()
		if !confirmKill(e) {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	res, err := killer.Terminate(e, opts)
	if err != nil {
		return err
	}
	if res.DryRun {
		fmt.Println(res.Detail)
		return nil
	}
	fmt.Printf("✓ %s\n", res.Detail)
	return nil
}

// confirmKill prompts on stdin. Critical targets must type the word yes;
// everything else takes y/N.
func confirmKill(e *model.SnapshotEntry) bool {
	reader := bufio.NewReader(os.Stdin)

	if action.RequiresTypedConfirm(e) {
		what := "process"
		if e.Container != nil {
			what = "container"
			fmt.Printf("⚠ %s runs in container %s (%s). Stopping it may lose data.\n",
				e.ProcessName(), e.Container.Name, e.Container.Image)
		} else if e.Service != nil {
			fmt.Printf("⚠ Port %d looks like %s, a critical service.\n", e.Socket.Port, e.Service.Name)
		}
		fmt.Printf("Type 'yes' to stop this %s: ", what)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		if strings.TrimSpace(line) != "yes" {
			fmt.Println("Cancelled. (Must type 'yes' exactly)")
			return false
		}
		return true
	}

	fmt.Printf("Kill %s (pid %d) on port %d? [y/N]: ", e.ProcessName(), e.Socket.PID, e.Socket.Port)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
