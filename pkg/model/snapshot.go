package model

import (
	"fmt"
	"time"
)

// SocketRecord is one raw row from the OS socket table. It is produced fresh
// on every poll and never mutated.
type SocketRecord struct {
	Protocol   string // TCP or UDP (v6 variants folded in)
	Port       int
	Address    string // local bind address: 0.0.0.0, 127.0.0.1, ::
	RemoteAddr string // empty for listening sockets and UDP
	State      string // LISTEN, ESTABLISHED, ...; OPEN for UDP
	PID        int    // 0 when the OS denies visibility of the owner
	Inode      string // kernel handle linking socket to process (linux)
}

// ProcessInfo is the metadata joined onto a socket by PID.
type ProcessInfo struct {
	PID         int
	PPID        int
	Name        string
	Path        string
	User        string
	MemoryBytes uint64
	// CPUPercent is computed from two time-separated samples. Until a second
	// sample exists for this PID, CPUSampled is false and CPUPercent is
	// meaningless rather than a misleading 0%.
	CPUPercent float64
	CPUSampled bool
	StartedAt  time.Time
}

// UptimeSecs returns seconds since the process started, or 0 when the start
// time is unknown.
func (p *ProcessInfo) UptimeSecs() uint64 {
	if p == nil || p.StartedAt.IsZero() {
		return 0
	}
	d := time.Since(p.StartedAt)
	if d < 0 {
		return 0
	}
	return uint64(d.Seconds())
}

// PortMapping is one published port of a container.
type PortMapping struct {
	HostPort      int
	ContainerPort int
	Protocol      string
}

// ContainerInfo describes a container publishing a host port.
type ContainerInfo struct {
	ID     string // short id; may change on recreate
	Name   string // stable across restarts: the identity used for stop
	Image  string
	Status string
	Ports  []PortMapping
}

// StableKey identifies a container across restarts. Container IDs change on
// recreation; name+image does not.
func (c *ContainerInfo) StableKey() string {
	return c.Name + ":" + c.Image
}

// PublishesPort reports whether the container publishes the given host port.
func (c *ContainerInfo) PublishesPort(port int) bool {
	for _, m := range c.Ports {
		if m.HostPort == port {
			return true
		}
	}
	return false
}

// ServiceLabel is the classifier's verdict for a port.
type ServiceLabel struct {
	Name        string
	Description string
	Critical    bool
}

// SnapshotEntry is one display-ready row: a socket with process metadata,
// service classification, and container identity joined in. Process,
// Service, and Container are nil when unresolved; the socket itself is
// always visible.
type SnapshotEntry struct {
	Socket    SocketRecord
	Process   *ProcessInfo
	Service   *ServiceLabel
	Container *ContainerInfo
}

// Key is the stable identity used to track this row across snapshots,
// independent of display position: protocol+port+pid, falling back to
// protocol+port when the owner is unknown.
func (e *SnapshotEntry) Key() string {
	if e.Socket.PID > 0 {
		return fmt.Sprintf("%s|%d|%d", e.Socket.Protocol, e.Socket.Port, e.Socket.PID)
	}
	return fmt.Sprintf("%s|%d", e.Socket.Protocol, e.Socket.Port)
}

// ProcessName returns the owner's executable name or a placeholder when the
// join failed.
func (e *SnapshotEntry) ProcessName() string {
	if e.Process == nil || e.Process.Name == "" {
		return "unavailable"
	}
	return e.Process.Name
}

// MemoryMB returns resident memory in megabytes, 0 when unknown.
func (e *SnapshotEntry) MemoryMB() float64 {
	if e.Process == nil {
		return 0
	}
	return float64(e.Process.MemoryBytes) / 1024.0 / 1024.0
}

// LocalAddress renders the bind address including the port.
func (e *SnapshotEntry) LocalAddress() string {
	return fmt.Sprintf("%s:%d", e.Socket.Address, e.Socket.Port)
}

// IsCritical reports whether killing this entry deserves the stronger
// confirmation barrier: a critical classified service, or any container.
func (e *SnapshotEntry) IsCritical() bool {
	if e.Container != nil {
		return true
	}
	return e.Service != nil && e.Service.Critical
}

// UptimeDisplay formats the owning process uptime for humans.
func (e *SnapshotEntry) UptimeDisplay() string {
	if e.Process == nil {
		return "-"
	}
	secs := e.Process.UptimeSecs()
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	case secs < 86400:
		return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
	default:
		return fmt.Sprintf("%dd %dh", secs/86400, (secs%86400)/3600)
	}
}

// Snapshot is one consistent, timestamped view of the host's sockets.
// Immutable once built; holders replace it wholesale, never patch it.
type Snapshot struct {
	Entries []SnapshotEntry
	Taken   time.Time
}

// ForPort returns the first entry on the given port, or nil.
func (s *Snapshot) ForPort(port int) *SnapshotEntry {
	for i := range s.Entries {
		if s.Entries[i].Socket.Port == port {
			return &s.Entries[i]
		}
	}
	return nil
}

// ByKey returns the entry with the given stable key, or nil.
func (s *Snapshot) ByKey(key string) *SnapshotEntry {
	for i := range s.Entries {
		if s.Entries[i].Key() == key {
			return &s.Entries[i]
		}
	}
	return nil
}
