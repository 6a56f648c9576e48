// Package docker resolves containers publishing host ports and stops them
// by name. It shells out to the docker CLI so it works against Docker
// Desktop, rootless daemons, and podman's docker shim alike.
package docker

import (
	"bytes"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Brutus1066/portr/pkg/model"
)

// stopTimeout is how long the runtime waits for graceful shutdown before
// escalating to SIGKILL itself.
const stopTimeout = 10

// CLIResolver talks to the container runtime through its CLI.
type CLIResolver struct {
	// bin is the runtime binary, normally "docker".
	bin string

	run func(name string, args ...string) ([]byte, error)
}

// NewCLIResolver returns a resolver over the docker CLI, or nil when no
// runtime is reachable so callers degrade to container-less snapshots.
func NewCLIResolver() *CLIResolver {
	r := &CLIResolver{bin: "docker", run: runCommand}
	if !r.Available() {
		return nil
	}
	return r
}

func runCommand(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Available reports whether the runtime answers at all.
func (r *CLIResolver) Available() bool {
	if _, err := exec.LookPath(r.bin); err != nil {
		return false
	}
	_, err := r.run(r.bin, "info", "--format", "{{.ServerVersion}}")
	return err == nil
}

// psLine mirrors one line of `docker ps --format '{{json .}}'`.
type psLine struct {
	ID     string `json:"ID"`
	Names  string `json:"Names"`
	Image  string `json:"Image"`
	Status string `json:"Status"`
	Ports  string `json:"Ports"`
}

// ResolveAll lists running containers with their published ports. One call
// per discovery pass keeps the snapshot consistent and the daemon quiet.
func (r *CLIResolver) ResolveAll() ([]model.ContainerInfo, error) {
	out, err := r.run(r.bin, "ps", "--no-trunc", "--format", "{{json .}}")
	if err != nil {
		return nil, model.E(model.KindRuntimeUnavailable, "docker ps failed", err)
	}
	return parsePSOutput(out)
}

func parsePSOutput(out []byte) ([]model.ContainerInfo, error) {
	var containers []model.ContainerInfo
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var p psLine
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			continue
		}
		id := p.ID
		if len(id) > 12 {
			id = id[:12]
		}
		containers = append(containers, model.ContainerInfo{
			ID:     id,
			Name:   p.Names,
			Image:  p.Image,
			Status: p.Status,
			Ports:  parsePortSpec(p.Ports),
		})
	}
	return containers, nil
}

// parsePortSpec decodes docker's human port column, e.g.
// "0.0.0.0:5432->5432/tcp, :::5432->5432/tcp, 9090/tcp". Unpublished ports
// (no arrow) are skipped.
func parsePortSpec(spec string) []model.PortMapping {
	var ports []model.PortMapping
	seen := make(map[string]bool)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		host, container, ok := strings.Cut(part, "->")
		if !ok {
			continue
		}

		// host side is addr:port; the port is after the last colon.
		idx := strings.LastIndex(host, ":")
		if idx < 0 {
			continue
		}
		hostPort, err := strconv.Atoi(host[idx+1:])
		if err != nil {
			continue
		}

		proto := "tcp"
		if p, rest, found := strings.Cut(container, "/"); found {
			container, proto = p, rest
		}
		containerPort, err := strconv.Atoi(container)
		if err != nil {
			continue
		}

		key := strconv.Itoa(hostPort) + "/" + proto
		if seen[key] {
			continue
		}
		seen[key] = true
		ports = append(ports, model.PortMapping{
			HostPort:      hostPort,
			ContainerPort: containerPort,
			Protocol:      proto,
		})
	}
	return ports
}

// StopByName gracefully stops a container by its stable name. Stopping by
// name rather than ID survives the container being recreated between the
// confirmation prompt and the stop.
func (r *CLIResolver) StopByName(name string) error {
	if name == "" {
		return model.E(model.KindNotFound, "container name is empty")
	}
	start := time.Now()
	_, err := r.run(r.bin, "stop", "-t", strconv.Itoa(stopTimeout), name)
	if err != nil {
		if time.Since(start) > time.Duration(stopTimeout+5)*time.Second {
			return model.E(model.KindPlatformError, "docker stop timed out for "+name, err)
		}
		return model.E(model.KindPlatformError, "docker stop failed for "+name, err)
	}
	return nil
}
