package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Brutus1066/portr/pkg/model"
)

// Record is one exported row. The field set and names are the stable
// machine interface; scripts depend on them.
type Record struct {
	Port         int     `json:"port"`
	Protocol     string  `json:"protocol"`
	PID          int     `json:"pid"`
	ProcessName  string  `json:"process_name"`
	LocalAddress string  `json:"local_address"`
	State        string  `json:"state"`
	MemoryMB     float64 `json:"memory_mb"`
	CPUPercent   float64 `json:"cpu_percent"`
	UptimeSecs   uint64  `json:"uptime_secs"`
}

// Records flattens a snapshot into export rows.
func Records(snap *model.Snapshot) []Record {
	records := make([]Record, 0, len(snap.Entries))
	for i := range snap.Entries {
		e := &snap.Entries[i]
		r := Record{
			Port:         e.Socket.Port,
			Protocol:     e.Socket.Protocol,
			PID:          e.Socket.PID,
			ProcessName:  e.ProcessName(),
			LocalAddress: e.LocalAddress(),
			State:        e.Socket.State,
			MemoryMB:     round1(e.MemoryMB()),
		}
		if e.Process != nil {
			if e.Process.CPUSampled {
				r.CPUPercent = round1(e.Process.CPUPercent)
			}
			r.UptimeSecs = e.Process.UptimeSecs()
		}
		records = append(records, r)
	}
	return records
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}

func ToJSON(snap *model.Snapshot) (string, error) {
	data, err := json.MarshalIndent(Records(snap), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var exportHeader = []string{
	"port", "protocol", "pid", "process_name",
	"local_address", "state", "memory_mb", "cpu_percent", "uptime_secs",
}

func ToCSV(snap *model.Snapshot) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(exportHeader); err != nil {
		return "", err
	}
	for _, r := range Records(snap) {
		row := []string{
			fmt.Sprint(r.Port), r.Protocol, fmt.Sprint(r.PID), r.ProcessName,
			r.LocalAddress, r.State,
			fmt.Sprintf("%.1f", r.MemoryMB), fmt.Sprintf("%.1f", r.CPUPercent),
			fmt.Sprint(r.UptimeSecs),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return b.String(), w.Error()
}

func ToMarkdown(snap *model.Snapshot) string {
	var b strings.Builder
	b.WriteString("| Port | Proto | PID | Process | Address | State | Mem (MB) | CPU % | Uptime (s) |\n")
	b.WriteString("|------|-------|-----|---------|---------|-------|----------|-------|------------|\n")
	for _, r := range Records(snap) {
		fmt.Fprintf(&b, "| %d | %s | %d | %s | %s | %s | %.1f | %.1f | %d |\n",
			r.Port, r.Protocol, r.PID, r.ProcessName,
			r.LocalAddress, r.State, r.MemoryMB, r.CPUPercent, r.UptimeSecs)
	}
	return b.String()
}

// Render produces the named export format.
func Render(snap *model.Snapshot, format string) (string, error) {
	switch format {
	case "json":
		return ToJSON(snap)
	case "csv":
		return ToCSV(snap)
	case "md", "markdown":
		return ToMarkdown(snap), nil
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
}

// WriteExport writes the snapshot to portr_export_<timestamp>.<ext> in the
// working directory and returns the filename.
func WriteExport(snap *model.Snapshot, format string) (string, error) {
	content, err := Render(snap, format)
	if err != nil {
		return "", err
	}
	ext := format
	if format == "markdown" {
		ext = "md"
	}
	name := fmt.Sprintf("portr_export_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		return "", err
	}
	return name, nil
}
