//go:build windows

package action

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Brutus1066/portr/pkg/model"
)

// Windows has no signal delivery; TERM and KILL both map onto taskkill,
// with /F for the forced variant.
func signalSupported(name string) bool {
	return name == "TERM" || name == "KILL"
}

func sendSignal(pid int, name string) error {
	args := []string{"/PID", strconv.Itoa(pid)}
	if name == "KILL" {
		args = append(args, "/F")
	}
	out, err := exec.Command("taskkill", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("taskkill: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

func classifySignalErr(err error, pid int) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return model.E(model.KindNotFound, fmt.Sprintf("process %d already exited", pid), err)
	case strings.Contains(msg, "Access is denied"):
		return model.E(model.KindPermissionDenied,
			fmt.Sprintf("not allowed to terminate process %d; run from an elevated prompt", pid), err)
	default:
		return model.E(model.KindPlatformError, fmt.Sprintf("terminating process %d failed", pid), err)
	}
}
