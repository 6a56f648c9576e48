// Package proc reads the operating system's socket and process tables.
// Each platform gets one implementation behind the SocketTable and
// ProcessTable interfaces; nothing above this package branches on the OS.
package proc

import (
	"time"

	"github.com/Brutus1066/portr/pkg/model"
)

// SocketTable reads the current set of TCP/UDP sockets with their owning
// PIDs where the OS grants visibility.
type SocketTable interface {
	Sockets() ([]model.SocketRecord, error)
}

// Sample is one process metadata reading. CPUTime is cumulative; percentages
// are derived by the caller from two time-separated samples.
type Sample struct {
	Info    model.ProcessInfo
	CPUTime time.Duration
}

// ProcessTable reads metadata for a set of PIDs in one pass. PIDs that
// vanished or are unreadable are simply absent from the result, never an
// error for the whole call.
type ProcessTable interface {
	Samples(pids []int) (map[int]Sample, error)
}

// SystemSocketTable returns the socket table reader for this platform.
func SystemSocketTable() SocketTable { return systemSocketTable{} }

// SystemProcessTable returns the process metadata reader for this platform.
func SystemProcessTable() ProcessTable { return systemProcessTable{} }

// liteProcess is the minimal row used for tree construction.
type liteProcess struct {
	PID  int
	PPID int
	Name string
}

// Ancestry walks the parent chain from pid up to the root, target last.
func Ancestry(pid int) []liteProcess {
	all, err := listAll()
	if err != nil {
		return nil
	}
	byPID := make(map[int]liteProcess, len(all))
	for _, p := range all {
		byPID[p.PID] = p
	}

	var chain []liteProcess
	cur, ok := byPID[pid]
	for ok {
		chain = append(chain, cur)
		// 20 levels is deeper than any sane supervision tree.
		if cur.PPID <= 0 || len(chain) > 20 {
			break
		}
		cur, ok = byPID[cur.PPID]
	}

	// Reverse: root first, target last.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Children returns the direct children of pid.
func Children(pid int) []liteProcess {
	all, err := listAll()
	if err != nil {
		return nil
	}
	var kids []liteProcess
	for _, p := range all {
		if p.PPID == pid {
			kids = append(kids, p)
		}
	}
	return kids
}

// TreeNode is a rendered ancestry/children view for a target process.
type TreeNode struct {
	PID      int
	Name     string
	IsTarget bool
}

// Tree returns the parent chain (root first) and direct children of pid.
func Tree(pid int) (chain []TreeNode, children []TreeNode) {
	for _, p := range Ancestry(pid) {
		chain = append(chain, TreeNode{PID: p.PID, Name: p.Name, IsTarget: p.PID == pid})
	}
	for _, p := range Children(pid) {
		children = append(children, TreeNode{PID: p.PID, Name: p.Name})
	}
	return chain, children
}
