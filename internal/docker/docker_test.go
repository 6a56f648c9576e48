package docker

import (
	"errors"
	"testing"

	"github.com/Brutus1066/portr/pkg/model"
)

const psFixture = `{"ID":"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08","Names":"my-postgres","Image":"postgres:16","Status":"Up 2 hours","Ports":"0.0.0.0:5432->5432/tcp, :::5432->5432/tcp"}
{"ID":"abcdef123456","Names":"web","Image":"nginx:alpine","Status":"Up 10 minutes","Ports":"0.0.0.0:8080->80/tcp, 9090/tcp"}
{"ID":"deadbeef0000","Names":"worker","Image":"redis:7","Status":"Up 5 minutes","Ports":""}`

func TestParsePSOutput(t *testing.T) {
	containers, err := parsePSOutput([]byte(psFixture))
	if err != nil {
		t.Fatalf("parsePSOutput: %v", err)
	}
	if len(containers) != 3 {
		t.Fatalf("got %d containers, want 3", len(containers))
	}

	pg := containers[0]
	if pg.ID != "9f86d081884c" {
		t.Errorf("id not truncated: %q", pg.ID)
	}
	if pg.Name != "my-postgres" || pg.Image != "postgres:16" {
		t.Errorf("identity = %q/%q", pg.Name, pg.Image)
	}
	if pg.StableKey() != "my-postgres:postgres:16" {
		t.Errorf("stable key = %q", pg.StableKey())
	}
	// v4 and v6 bindings of the same published port collapse to one mapping.
	if len(pg.Ports) != 1 || pg.Ports[0].HostPort != 5432 {
		t.Errorf("ports = %+v, want one 5432 mapping", pg.Ports)
	}

	web := containers[1]
	if len(web.Ports) != 1 {
		t.Fatalf("unpublished port leaked into %+v", web.Ports)
	}
	if web.Ports[0].HostPort != 8080 || web.Ports[0].ContainerPort != 80 {
		t.Errorf("mapping = %+v, want 8080->80", web.Ports[0])
	}
	if !web.PublishesPort(8080) || web.PublishesPort(9090) {
		t.Error("PublishesPort disagrees with parsed mappings")
	}

	if len(containers[2].Ports) != 0 {
		t.Errorf("portless container got mappings: %+v", containers[2].Ports)
	}
}

func TestParsePortSpecMalformed(t *testing.T) {
	for _, spec := range []string{"", "garbage", "0.0.0.0:x->80/tcp", "->/"} {
		if got := parsePortSpec(spec); len(got) != 0 {
			t.Errorf("parsePortSpec(%q) = %+v, want none", spec, got)
		}
	}
}

func TestResolveAllRuntimeDown(t *testing.T) {
	r := &CLIResolver{bin: "docker", run: func(name string, args ...string) ([]byte, error) {
		return nil, errors.New("cannot connect to the Docker daemon")
	}}
	_, err := r.ResolveAll()
	if !model.IsKind(err, model.KindRuntimeUnavailable) {
		t.Fatalf("got %v, want runtime unavailable", err)
	}
}

func TestStopByName(t *testing.T) {
	var gotArgs []string
	r := &CLIResolver{bin: "docker", run: func(name string, args ...string) ([]byte, error) {
		gotArgs = append([]string{name}, args...)
		return []byte("my-postgres\n"), nil
	}}
	if err := r.StopByName("my-postgres"); err != nil {
		t.Fatalf("StopByName: %v", err)
	}
	want := []string{"docker", "stop", "-t", "10", "my-postgres"}
	if len(gotArgs) != len(want) {
		t.Fatalf("args = %v, want %v", gotArgs, want)
	}
	for i := range want {
		if gotArgs[i] != want[i] {
			t.Fatalf("args = %v, want %v", gotArgs, want)
		}
	}
}

func TestStopByNameEmpty(t *testing.T) {
	r := &CLIResolver{bin: "docker", run: func(string, ...string) ([]byte, error) {
		t.Fatal("run should not be called for an empty name")
		return nil, nil
	}}
	if err := r.StopByName(""); !model.IsKind(err, model.KindNotFound) {
		t.Fatalf("got %v, want not found", err)
	}
}
