//go:build !windows

package action

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/Brutus1066/portr/pkg/model"
)

var signalsByName = map[string]syscall.Signal{
	"TERM": syscall.SIGTERM,
	"KILL": syscall.SIGKILL,
	"INT":  syscall.SIGINT,
	"HUP":  syscall.SIGHUP,
	"QUIT": syscall.SIGQUIT,
	"USR1": syscall.SIGUSR1,
	"USR2": syscall.SIGUSR2,
	"STOP": syscall.SIGSTOP,
	"CONT": syscall.SIGCONT,
}

func signalSupported(name string) bool {
	_, ok := signalsByName[name]
	return ok
}

func sendSignal(pid int, name string) error {
	sig, ok := signalsByName[name]
	if !ok {
		return model.E(model.KindPlatformError, fmt.Sprintf("unsupported signal %q", name))
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(sig)
}

func classifySignalErr(err error, pid int) error {
	switch {
	case errors.Is(err, syscall.ESRCH), errors.Is(err, os.ErrProcessDone):
		return model.E(model.KindNotFound, fmt.Sprintf("process %d already exited", pid), err)
	case errors.Is(err, syscall.EPERM):
		return model.E(model.KindPermissionDenied,
			fmt.Sprintf("not allowed to signal process %d; try again with sudo", pid), err)
	default:
		return model.E(model.KindPlatformError, fmt.Sprintf("signal to process %d failed", pid), err)
	}
}
