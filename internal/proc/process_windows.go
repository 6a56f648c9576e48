//go:build windows

package proc

import (
	"encoding/csv"
	"fmt"
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

	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive",
		"Get-CimInstance -ClassName Win32_Process | Select-Object ProcessId,ParentProcessId,Name,ExecutablePath,WorkingSetSize,UserModeTime,KernelModeTime,CreationDate | ConvertTo-Csv -NoTypeInformation")
	out, err := cmd.Output()
	if err != nil {
		return nil, model.E(model.KindReadFailed, "powershell process listing", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil || len(records) < 2 {
		return nil, model.E(model.KindReadFailed, "parse powershell output", err)
	}

	col := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		col[h] = i
	}
	for _, name := range []string{"ProcessId", "ParentProcessId", "Name"} {
		if _, ok := col[name]; !ok {
			return nil, model.E(model.KindReadFailed, fmt.Sprintf("missing column %s in powershell output", name))
		}
	}

	get := func(rec []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(rec) {
			return ""
		}
		return rec[idx]
	}

	samples := make(map[int]Sample, len(pids))
	for _, rec := range records[1:] {
		pid, err := strconv.Atoi(get(rec, "ProcessId"))
		if err != nil || !want[pid] {
			continue
		}
		ppid, _ := strconv.Atoi(get(rec, "ParentProcessId"))
		mem, _ := strconv.ParseUint(get(rec, "WorkingSetSize"), 10, 64)

		// UserModeTime/KernelModeTime are 100ns units.
		userTime, _ := strconv.ParseUint(get(rec, "UserModeTime"), 10, 64)
		kernTime, _ := strconv.ParseUint(get(rec, "KernelModeTime"), 10, 64)

		samples[pid] = Sample{
			Info: model.ProcessInfo{
				PID:         pid,
				PPID:        ppid,
				Name:        get(rec, "Name"),
				Path:        get(rec, "ExecutablePath"),
				MemoryBytes: mem,
				StartedAt:   parseCimDate(get(rec, "CreationDate")),
			},
			CPUTime: time.Duration(userTime+kernTime) * 100 * time.Nanosecond,
		}
	}
	return samples, nil
}

// parseCimDate parses WMI CIM_DATETIME: YYYYMMDDHHMMSS.mmmmmm+UUU.
func parseCimDate(val string) time.Time {
	if len(val) < 14 {
		return time.Time{}
	}
	t, err := time.Parse("20060102150405", val[:14])
	if err != nil {
		return time.Time{}
	}
	if len(val) >= 4 {
		offsetPart := val[len(val)-4:]
		if offsetPart[0] == '+' || offsetPart[0] == '-' {
			if mins, err := strconv.Atoi(offsetPart[1:]); err == nil {
				if offsetPart[0] == '-' {
					mins = -mins
				}
				loc := time.FixedZone("Local", mins*60)
				return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
			}
		}
	}
	return t
}

func listAll() ([]liteProcess, error) {
	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive",
		"Get-CimInstance -ClassName Win32_Process | Select-Object Name,ParentProcessId,ProcessId | ConvertTo-Csv -NoTypeInformation")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("powershell process list: %w", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil || len(records) < 2 {
		return nil, fmt.Errorf("parse powershell output: %w", err)
	}

	col := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		col[h] = i
	}

	procs := make([]liteProcess, 0, len(records)-1)
	for _, rec := range records[1:] {
		nameIdx, pidIdx, ppidIdx := col["Name"], col["ProcessId"], col["ParentProcessId"]
		if pidIdx >= len(rec) || ppidIdx >= len(rec) || nameIdx >= len(rec) {
			continue
		}
		pid, err := strconv.Atoi(rec[pidIdx])
		if err != nil {
			continue
		}
		ppid, _ := strconv.Atoi(rec[ppidIdx])
		procs = append(procs, liteProcess{PID: pid, PPID: ppid, Name: rec[nameIdx]})
	}
	return procs, nil
}
