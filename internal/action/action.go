// Package action terminates the owner of a port: a signal for plain
// processes, a graceful runtime stop for containers.
package action

import (
	"fmt"
	"strings"

	"github.com/Brutus1066/portr/pkg/model"
)

// Options tunes a termination request.
type Options struct {
	// Signal is the unix signal name, e.g. "TERM" or "KILL". Empty means TERM.
	Signal string
	// Force escalates straight to KILL regardless of Signal.
	Force bool
	// DryRun reports what would happen without touching anything.
	DryRun bool
}

// Result describes what a termination did, or would have done.
type Result struct {
	DryRun bool
	// Method is "signal" or "container-stop".
	Method string
	Detail string
}

// ContainerStopper stops a container by its stable name.
type ContainerStopper interface {
	StopByName(name string) error
}

// Killer applies the termination policy. The signal and stop mechanics are
// injected so tests can observe the decision without killing anything.
type Killer struct {
	signal  func(pid int, name string) error
	stopper ContainerStopper
}

// New returns a Killer using real OS signals and the given runtime.
// stopper may be nil when no container runtime is available.
func New(stopper ContainerStopper) *Killer {
	return &Killer{signal: sendSignal, stopper: stopper}
}

// NormalizeSignal canonicalizes a user-supplied signal name and rejects
// names this platform cannot deliver.
func NormalizeSignal(name string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "SIG")
	if s == "" {
		s = "TERM"
	}
	if !signalSupported(s) {
		return "", model.E(model.KindPlatformError, fmt.Sprintf("unsupported signal %q", name))
	}
	return s, nil
}

// RequiresTypedConfirm reports whether this target is risky enough that a
// y/N prompt is not sufficient and the caller must demand a typed "yes".
func RequiresTypedConfirm(entry *model.SnapshotEntry) bool {
	return entry.IsCritical()
}

// Terminate stops whatever owns the entry. Containerized targets are
// stopped through the runtime by name and never signaled directly, so the
// runtime's own shutdown handling (and restart policy) stays in charge.
func (k *Killer) Terminate(entry *model.SnapshotEntry, opts Options) (*Result, error) {
	if entry.Container != nil {
		return k.stopContainer(entry.Container, opts)
	}

	pid := entry.Socket.PID
	if pid <= 0 {
		return nil, model.E(model.KindNotFound,
			fmt.Sprintf("owner of port %d is unknown; try rerunning with elevated privileges", entry.Socket.Port))
	}

	sig := opts.Signal
	if sig == "" {
		sig = "TERM"
	}
	if opts.Force {
		sig = "KILL"
	}
	sig, err := NormalizeSignal(sig)
	if err != nil {
		return nil, err
	}

	detail := fmt.Sprintf("SIG%s to %s (pid %d)", sig, entry.ProcessName(), pid)
	if opts.DryRun {
		return &Result{DryRun: true, Method: "signal", Detail: "would send " + detail}, nil
	}

	if err := k.signal(pid, sig); err != nil {
		return nil, classifySignalErr(err, pid)
	}
	return &Result{Method: "signal", Detail: "sent " + detail}, nil
}

func (k *Killer) stopContainer(c *model.ContainerInfo, opts Options) (*Result, error) {
	detail := fmt.Sprintf("container %s (%s)", c.Name, c.Image)
	if opts.DryRun {
		return &Result{DryRun: true, Method: "container-stop", Detail: "would stop " + detail}, nil
	}
	if k.stopper == nil {
		return nil, model.E(model.KindRuntimeUnavailable,
			fmt.Sprintf("%s runs in a container but no runtime is reachable to stop it", c.Name))
	}
	if err := k.stopper.StopByName(c.Name); err != nil {
		return nil, err
	}
	return &Result{Method: "container-stop", Detail: "stopped " + detail}, nil
}
