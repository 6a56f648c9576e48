// Package discover correlates the OS socket and process tables into a
// consistent, timestamped Snapshot.
package discover

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Brutus1066/portr/internal/proc"
	"github.com/Brutus1066/portr/internal/services"
	"github.com/Brutus1066/portr/pkg/model"
)

// Filter restricts which sockets a discovery pass considers.
type Filter struct {
	TCP bool
	UDP bool
	// PortMin/PortMax bound the local port, inclusive. Zero means unbounded.
	PortMin int
	PortMax int
	// AllStates includes established and closing sockets; by default only
	// listeners (and stateless UDP) are reported.
	AllStates bool
}

func (f Filter) matches(r model.SocketRecord) bool {
	tcp, udp := f.TCP, f.UDP
	if !tcp && !udp {
		tcp, udp = true, true
	}
	switch r.Protocol {
	case "TCP":
		if !tcp {
			return false
		}
	case "UDP":
		if !udp {
			return false
		}
	default:
		return false
	}

	if !f.AllStates && r.State != "LISTEN" && r.State != "OPEN" {
		return false
	}
	if f.PortMin > 0 && r.Port < f.PortMin {
		return false
	}
	if f.PortMax > 0 && r.Port > f.PortMax {
		return false
	}
	return true
}

// ContainerResolver is the optional container capability. Failures degrade
// to "no container", never to a snapshot-wide error.
type ContainerResolver interface {
	ResolveAll() ([]model.ContainerInfo, error)
}

type cpuSample struct {
	cpuTime time.Duration
	at      time.Time
}

// Engine owns the correlation algorithm. It keeps per-PID CPU samples
// between passes so utilization can be computed from two readings.
type Engine struct {
	sockets    proc.SocketTable
	procs      proc.ProcessTable
	containers ContainerResolver // nil when no runtime is configured

	mu  sync.Mutex
	cpu map[int]cpuSample
	now func() time.Time
}

// New builds an Engine over the given readers. resolver may be nil.
func New(sockets proc.SocketTable, procs proc.ProcessTable, resolver ContainerResolver) *Engine {
	return &Engine{
		sockets:    sockets,
		procs:      procs,
		containers: resolver,
		cpu:        make(map[int]cpuSample),
		now:        time.Now,
	}
}

// NewSystem builds an Engine over this platform's real tables.
func NewSystem(resolver ContainerResolver) *Engine {
	return New(proc.SystemSocketTable(), proc.SystemProcessTable(), resolver)
}

// Discover produces one Snapshot. A failing socket table fails the whole
// call; individual process or container misses degrade per entry.
func (e *Engine) Discover(f Filter) (*model.Snapshot, error) {
	records, err := e.sockets.Sockets()
	if err != nil {
		return nil, err
	}

	var filtered []model.SocketRecord
	pidSet := make(map[int]bool)
	for _, r := range records {
		if !f.matches(r) {
			continue
		}
		filtered = append(filtered, r)
		if r.PID > 0 {
			pidSet[r.PID] = true
		}
	}

	pids := make([]int, 0, len(pidSet))
	for pid := range pidSet {
		pids = append(pids, pid)
	}

	// One metadata read for the whole PID set: a process with several
	// sockets is fetched once, so its entries share identical values.
	samples, err := e.procs.Samples(pids)
	if err != nil {
		samples = nil
	}
	infoByPID := e.resolveCPU(samples)

	containerByPort := e.resolveContainers(filtered)

	entries := make([]model.SnapshotEntry, 0, len(filtered))
	seen := make(map[string]int)
	for _, r := range filtered {
		entry := model.SnapshotEntry{Socket: r}
		if info, ok := infoByPID[r.PID]; ok {
			entry.Process = info
		}
		entry.Service = services.Classify(r.Port, entry.ProcessName())
		entry.Container = containerByPort[r.Port]

		// Port+protocol uniqueness: a dual-stack listener shows up in both
		// the v4 and v6 tables; keep one row, preferring a resolved owner.
		key := r.Protocol + "|" + strconv.Itoa(r.Port)
		if idx, dup := seen[key]; dup {
			if entries[idx].Socket.PID == 0 && r.PID > 0 {
				entries[idx] = entry
			}
			continue
		}
		seen[key] = len(entries)
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Socket.Port != entries[j].Socket.Port {
			return entries[i].Socket.Port < entries[j].Socket.Port
		}
		return entries[i].Socket.Protocol < entries[j].Socket.Protocol
	})

	return &model.Snapshot{Entries: entries, Taken: e.now()}, nil
}

// resolveCPU turns cumulative CPU times into percentages using the previous
// pass's samples. The first sighting of a PID has no baseline and is
// reported unsampled rather than as a misleading 0%.
func (e *Engine) resolveCPU(samples map[int]proc.Sample) map[int]*model.ProcessInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	next := make(map[int]cpuSample, len(samples))
	out := make(map[int]*model.ProcessInfo, len(samples))

	for pid, s := range samples {
		info := s.Info
		if prev, ok := e.cpu[pid]; ok {
			elapsed := now.Sub(prev.at)
			if elapsed > 0 && s.CPUTime >= prev.cpuTime {
				info.CPUPercent = float64(s.CPUTime-prev.cpuTime) / float64(elapsed) * 100
				info.CPUSampled = true
			}
		}
		next[pid] = cpuSample{cpuTime: s.CPUTime, at: now}
		out[pid] = &info
	}

	// Dropping stale PIDs here also means a recycled PID cannot inherit a
	// dead process's baseline.
	e.cpu = next
	return out
}

// resolveContainers batches one runtime call per pass and indexes the
// result by published host port.
func (e *Engine) resolveContainers(records []model.SocketRecord) map[int]*model.ContainerInfo {
	if e.containers == nil {
		return nil
	}

	containers, err := e.containers.ResolveAll()
	if err != nil {
		return nil
	}

	byPort := make(map[int]*model.ContainerInfo)
	for _, r := range records {
		if _, done := byPort[r.Port]; done {
			continue
		}
		for i := range containers {
			if containers[i].PublishesPort(r.Port) {
				byPort[r.Port] = &containers[i]
				break
			}
		}
	}
	return byPort
}
