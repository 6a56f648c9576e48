package action

import (
	"testing"

	"github.com/Brutus1066/portr/pkg/model"
)

type recordedSignal struct {
	pid  int
	name string
}

type fakeStopper struct {
	stopped []string
	err     error
}

func (f *fakeStopper) StopByName(name string) error {
	f.stopped = append(f.stopped, name)
	return f.err
}

func plainEntry(pid int) *model.SnapshotEntry {
	return &model.SnapshotEntry{
		Socket:  model.SocketRecord{Protocol: "TCP", Port: 3000, State: "LISTEN", PID: pid},
		Process: &model.ProcessInfo{PID: pid, Name: "node"},
	}
}

func containerEntry() *model.SnapshotEntry {
	return &model.SnapshotEntry{
		Socket:  model.SocketRecord{Protocol: "TCP", Port: 5432, State: "LISTEN", PID: 20},
		Process: &model.ProcessInfo{PID: 20, Name: "postgres"},
		Container: &model.ContainerInfo{
			ID: "abc123", Name: "my-postgres", Image: "postgres:16",
			Ports: []model.PortMapping{{HostPort: 5432, ContainerPort: 5432, Protocol: "tcp"}},
		},
	}
}

func TestTerminateSignalsPlainProcess(t *testing.T) {
	var sent []recordedSignal
	k := &Killer{signal: func(pid int, name string) error {
		sent = append(sent, recordedSignal{pid, name})
		return nil
	}}

	res, err := k.Terminate(plainEntry(10), Options{})
	if err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	if res.Method != "signal" {
		t.Errorf("method = %q", res.Method)
	}
	if len(sent) != 1 || sent[0] != (recordedSignal{10, "TERM"}) {
		t.Errorf("sent = %+v, want one TERM to pid 10", sent)
	}
}

func TestTerminateForceEscalatesToKill(t *testing.T) {
	var sent []recordedSignal
	k := &Killer{signal: func(pid int, name string) error {
		sent = append(sent, recordedSignal{pid, name})
		return nil
	}}

	if _, err := k.Terminate(plainEntry(10), Options{Signal: "HUP", Force: true}); err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	if len(sent) != 1 || sent[0].name != "KILL" {
		t.Errorf("sent = %+v, want KILL to override HUP", sent)
	}
}

// Containerized targets are stopped through the runtime, never signaled,
// even when --force is given.
func TestTerminateContainerNeverSignals(t *testing.T) {
	stopper := &fakeStopper{}
	k := &Killer{
		signal: func(pid int, name string) error {
			t.Fatalf("signaled pid %d inside a container", pid)
			return nil
		},
		stopper: stopper,
	}

	res, err := k.Terminate(containerEntry(), Options{Force: true})
	if err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	if res.Method != "container-stop" {
		t.Errorf("method = %q", res.Method)
	}
	if len(stopper.stopped) != 1 || stopper.stopped[0] != "my-postgres" {
		t.Errorf("stopped = %v, want [my-postgres]", stopper.stopped)
	}
}

func TestTerminateContainerWithoutRuntime(t *testing.T) {
	k := &Killer{signal: func(int, string) error { return nil }}

	_, err := k.Terminate(containerEntry(), Options{})
	if !model.IsKind(err, model.KindRuntimeUnavailable) {
		t.Fatalf("got %v, want runtime unavailable", err)
	}
}

func TestTerminateDryRunTouchesNothing(t *testing.T) {
	stopper := &fakeStopper{}
	k := &Killer{
		signal:  func(int, string) error { t.Fatal("dry run signaled"); return nil },
		stopper: stopper,
	}

	res, err := k.Terminate(plainEntry(10), Options{DryRun: true})
	if err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	if !res.DryRun {
		t.Error("result not marked dry run")
	}

	res, err = k.Terminate(containerEntry(), Options{DryRun: true})
	if err != nil {
		t.Fatalf("Terminate container: %v", err)
	}
	if !res.DryRun || len(stopper.stopped) != 0 {
		t.Errorf("dry run stopped containers: %v", stopper.stopped)
	}
}

func TestTerminateUnknownOwner(t *testing.T) {
	k := &Killer{signal: func(int, string) error { return nil }}
	entry := plainEntry(0)
	entry.Process = nil

	_, err := k.Terminate(entry, Options{})
	if !model.IsKind(err, model.KindNotFound) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestNormalizeSignal(t *testing.T) {
	for in, want := range map[string]string{
		"":        "TERM",
		"term":    "TERM",
		"SIGKILL": "KILL",
		"hup":     "HUP",
	} {
		got, err := NormalizeSignal(in)
		if err != nil {
			t.Errorf("NormalizeSignal(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("NormalizeSignal(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := NormalizeSignal("BOGUS"); !model.IsKind(err, model.KindPlatformError) {
		t.Errorf("bogus signal accepted: %v", err)
	}
}

func TestRequiresTypedConfirm(t *testing.T) {
	if RequiresTypedConfirm(plainEntry(10)) {
		t.Error("plain dev server should not require typed confirm")
	}
	if !RequiresTypedConfirm(containerEntry()) {
		t.Error("container should require typed confirm")
	}
	svc := plainEntry(10)
	svc.Service = &model.ServiceLabel{Name: "PostgreSQL", Critical: true}
	if !RequiresTypedConfirm(svc) {
		t.Error("critical service should require typed confirm")
	}
}
