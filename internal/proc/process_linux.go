//go:build linux

package proc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Brutus1066/portr/pkg/model"
)

type systemProcessTable struct{}

func (systemProcessTable) Samples(pids []int) (map[int]Sample, error) {
	out := make(map[int]Sample, len(pids))
	for _, pid := range pids {
		if pid <= 0 {
			continue
		}
		s, err := readSample(pid)
		if err != nil {
			// Process exited or is unreadable between the socket read and
			// now; the entry degrades instead of failing the whole pass.
			continue
		}
		out[pid] = s
	}
	return out, nil
}

func readSample(pid int) (Sample, error) {
	stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return Sample{}, fmt.Errorf("process %d disappeared during read: %w", pid, err)
	}

	// stat format is evil, command is inside ()
	raw := string(stat)
	open := strings.Index(raw, "(")
	close := strings.LastIndex(raw, ")")
	if open == -1 || close == -1 || close <= open {
		return Sample{}, fmt.Errorf("invalid stat format for pid %d", pid)
	}

	comm := raw[open+1 : close]
	fields := strings.Fields(raw[close+2:])
	if len(fields) < 22 {
		return Sample{}, fmt.Errorf("short stat for pid %d", pid)
	}

	ppid, _ := strconv.Atoi(fields[1])
	utime, _ := strconv.ParseUint(fields[11], 10, 64)
	stime, _ := strconv.ParseUint(fields[12], 10, 64)
	startTicks, _ := strconv.ParseInt(fields[19], 10, 64)
	rssPages, _ := strconv.ParseUint(fields[21], 10, 64)

	hz := ticksPerSecond()
	startedAt := bootTime().Add(time.Duration(startTicks) * time.Second / time.Duration(hz))
	cpuTime := time.Duration(utime+stime) * time.Second / time.Duration(hz)

	path, _ := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid))

	return Sample{
		Info: model.ProcessInfo{
			PID:         pid,
			PPID:        ppid,
			Name:        comm,
			Path:        path,
			User:        readUser(pid),
			MemoryBytes: rssPages * uint64(os.Getpagesize()),
			StartedAt:   startedAt,
		},
		CPUTime: cpuTime,
	}, nil
}

func readUser(pid int) string {
	info, err := os.Stat("/proc/" + strconv.Itoa(pid))
	if err != nil {
		return ""
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return ""
	}
	uid := int(stat.Uid)
	if uid == 0 {
		return "root"
	}

	uidStr := strconv.Itoa(uid)
	passwd, err := os.ReadFile("/etc/passwd")
	if err != nil {
		return uidStr
	}
	for _, line := range strings.Split(string(passwd), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) > 2 && fields[2] == uidStr {
			return fields[0]
		}
	}
	return uidStr
}

func bootTime() time.Time {
	f, err := os.Open("/proc/stat")
	if err != nil {
		return time.Now()
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "btime") {
			parts := strings.Fields(line)
			if len(parts) > 1 {
				sec, _ := strconv.ParseInt(parts[1], 10, 64)
				return time.Unix(sec, 0)
			}
		}
	}
	return time.Now()
}

func ticksPerSecond() int64 {
	return 100 // Linux default; portable enough for now
}

func listAll() ([]liteProcess, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("read /proc: %w", err)
	}

	procs := make([]liteProcess, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		stat, err := os.ReadFile("/proc/" + e.Name() + "/stat")
		if err != nil {
			continue
		}

		raw := string(stat)
		open := strings.Index(raw, "(")
		close := strings.LastIndex(raw, ")")
		if open == -1 || close == -1 || close <= open {
			continue
		}
		fields := strings.Fields(raw[close+2:])
		if len(fields) < 2 {
			continue
		}
		ppid, _ := strconv.Atoi(fields[1])

		procs = append(procs, liteProcess{PID: pid, PPID: ppid, Name: raw[open+1 : close]})
	}
	return procs, nil
}
