//go:build darwin

package proc

import (
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Brutus1066/portr/pkg/model"
)

type systemProcessTable struct{}

func (systemProcessTable) Samples(pids []int) (map[int]Sample, error) {
	want := make(map[int]bool, len(pids))
	for _, pid := range pids {
		want[pid] = true
	}

	// One ps pass for the whole PID set; per-pid invocations would skew the
	// readings across the snapshot.
	out, err := exec.Command("ps", "-axo", "pid,ppid,user,lstart,time,rss,comm").Output()
	if err != nil {
		return nil, model.E(model.KindReadFailed, "ps process listing", err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	samples := make(map[int]Sample, len(pids))
	for _, line := range lines {
		fields := strings.Fields(line)
		// pid ppid user + lstart(5 fields) + time rss comm
		if len(fields) < 11 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil || !want[pid] {
			continue
		}
		ppid, _ := strconv.Atoi(fields[1])
		started, _ := time.Parse("Mon Jan 2 15:04:05 2006", strings.Join(fields[3:8], " "))
		cpuTime := parsePsTime(fields[8])
		rssKB, _ := strconv.ParseUint(fields[9], 10, 64)

		samples[pid] = Sample{
			Info: model.ProcessInfo{
				PID:         pid,
				PPID:        ppid,
				Name:        fields[10],
				User:        fields[2],
				MemoryBytes: rssKB * 1024,
				StartedAt:   started,
			},
			CPUTime: cpuTime,
		}
	}
	return samples, nil
}

// parsePsTime parses cumulative CPU time in ps TIME format: [[dd-]hh:]mm:ss.
func parsePsTime(s string) time.Duration {
	var days int64
	if idx := strings.Index(s, "-"); idx != -1 {
		days, _ = strconv.ParseInt(s[:idx], 10, 64)
		s = s[idx+1:]
	}

	parts := strings.Split(s, ":")
	var h, m, sec int64
	switch len(parts) {
	case 3:
		h, _ = strconv.ParseInt(parts[0], 10, 64)
		m, _ = strconv.ParseInt(parts[1], 10, 64)
		sec, _ = strconv.ParseInt(strings.SplitN(parts[2], ".", 2)[0], 10, 64)
	case 2:
		m, _ = strconv.ParseInt(parts[0], 10, 64)
		sec, _ = strconv.ParseInt(strings.SplitN(parts[1], ".", 2)[0], 10, 64)
	default:
		return 0
	}
	return time.Duration(days*86400+h*3600+m*60+sec) * time.Second
}

func listAll() ([]liteProcess, error) {
	out, err := exec.Command("ps", "-axo", "pid,ppid,comm").Output()
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	procs := make([]liteProcess, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		ppid, _ := strconv.Atoi(fields[1])
		procs = append(procs, liteProcess{PID: pid, PPID: ppid, Name: fields[2]})
	}
	return procs, nil
}
