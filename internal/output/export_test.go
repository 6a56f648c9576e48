package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Brutus1066/portr/internal/config"
	"github.com/Brutus1066/portr/internal/proc"
	"github.com/Brutus1066/portr/pkg/model"
)

func exportSnapshot() *model.Snapshot {
	started := time.Now().Add(-90 * time.Second)
	return &model.Snapshot{
		Taken: time.Now(),
		Entries: []model.SnapshotEntry{
			{
				Socket: model.SocketRecord{Protocol: "TCP", Port: 3000, Address: "0.0.0.0", State: "LISTEN", PID: 10},
				Process: &model.ProcessInfo{
					PID: 10, Name: "node", MemoryBytes: 100 * 1024 * 1024,
					CPUPercent: 12.34, CPUSampled: true, StartedAt: started,
				},
			},
			{
				Socket: model.SocketRecord{Protocol: "UDP", Port: 5353, Address: "0.0.0.0", State: "OPEN", PID: 0},
			},
		},
	}
}

func TestToJSONFieldNames(t *testing.T) {
	out, err := ToJSON(exportSnapshot())
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	for _, field := range []string{
		"port", "protocol", "pid", "process_name",
		"local_address", "state", "memory_mb", "cpu_percent", "uptime_secs",
	} {
		if _, ok := rows[0][field]; !ok {
			t.Errorf("field %q missing from JSON export", field)
		}
	}
	if rows[0]["process_name"] != "node" || rows[0]["memory_mb"] != 100.0 {
		t.Errorf("row = %v", rows[0])
	}
	if rows[1]["process_name"] != "unavailable" {
		t.Errorf("ownerless row name = %v", rows[1]["process_name"])
	}
}

func TestToCSV(t *testing.T) {
	out, err := ToCSV(exportSnapshot())
	if err != nil {
		t.Fatalf("ToCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}
	if lines[0] != "port,protocol,pid,process_name,local_address,state,memory_mb,cpu_percent,uptime_secs" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "3000,TCP,10,node,0.0.0.0:3000,LISTEN,100.0,12.3,") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestToMarkdown(t *testing.T) {
	out := ToMarkdown(exportSnapshot())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + separator + 2 rows", len(lines))
	}
	if !strings.Contains(lines[2], "| 3000 | TCP | 10 | node |") {
		t.Errorf("row = %q", lines[2])
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if _, err := Render(exportSnapshot(), "xml"); err == nil {
		t.Fatal("unknown format accepted")
	}
}

func TestRenderTablePlain(t *testing.T) {
	var b bytes.Buffer
	RenderTable(&b, exportSnapshot(), false)
	out := b.String()
	if strings.Contains(out, "\033[") {
		t.Error("plain output contains escape codes")
	}
	if !strings.Contains(out, "node") || !strings.Contains(out, "3000") {
		t.Errorf("table missing entry: %q", out)
	}
	if !strings.Contains(out, "2 port(s) in use") {
		t.Errorf("summary line missing: %q", out)
	}
}

func TestRenderTableEmpty(t *testing.T) {
	var b bytes.Buffer
	RenderTable(&b, &model.Snapshot{}, false)
	if !strings.Contains(b.String(), "No listening ports found.") {
		t.Errorf("empty message missing: %q", b.String())
	}
}

func TestRenderDetails(t *testing.T) {
	snap := exportSnapshot()
	e := &snap.Entries[0]
	e.Service = &model.ServiceLabel{Name: "Dev Server"}

	var b bytes.Buffer
	RenderDetails(&b, e, false, false)
	out := b.String()
	for _, want := range []string{"Port 3000", "node", "LISTEN", "0.0.0.0:3000", "Dev Server", "12.3%"} {
		if !strings.Contains(out, want) {
			t.Errorf("details missing %q in:\n%s", want, out)
		}
	}
}

// Containers running well-known data-store images get the escalated
// warning on the detail card; application images do not.
func TestRenderDetailsContainerWarning(t *testing.T) {
	snap := exportSnapshot()
	e := &snap.Entries[0]
	e.Container = &model.ContainerInfo{Name: "my-postgres", Image: "postgres:16"}

	var b bytes.Buffer
	RenderDetails(&b, e, false, false)
	out := b.String()
	if !strings.Contains(out, "my-postgres (postgres:16)") {
		t.Errorf("container line missing: %q", out)
	}
	if !strings.Contains(out, "critical data service") {
		t.Errorf("critical image warning missing: %q", out)
	}

	b.Reset()
	e.Container = &model.ContainerInfo{Name: "web", Image: "nginx:latest"}
	RenderDetails(&b, e, false, false)
	if strings.Contains(b.String(), "critical data service") {
		t.Errorf("nginx image flagged critical: %q", b.String())
	}
}

func TestPrintBanner(t *testing.T) {
	var b bytes.Buffer
	PrintBanner(&b, config.Default().Theme, false)
	if b.String() != banner {
		t.Errorf("plain banner altered: %q", b.String())
	}
	if strings.HasSuffix(b.String(), "\n\n") {
		t.Error("banner ends with a blank line")
	}

	b.Reset()
	PrintBanner(&b, config.Default().Theme, true)
	if !strings.HasPrefix(b.String(), ansiByName["cyan"]) {
		t.Errorf("colored banner missing theme color: %q", b.String()[:20])
	}
}

func TestPrintTree(t *testing.T) {
	chain := []proc.TreeNode{
		{PID: 1, Name: "systemd"},
		{PID: 400, Name: "bash"},
		{PID: 410, Name: "node", IsTarget: true},
	}
	children := []proc.TreeNode{{PID: 420, Name: "node-worker"}}

	var b bytes.Buffer
	PrintTree(&b, chain, children, false)
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), b.String())
	}
	if lines[0] != "systemd (pid 1)" {
		t.Errorf("root line = %q", lines[0])
	}
	if !strings.Contains(lines[2], "└─ node (pid 410)") {
		t.Errorf("target line = %q", lines[2])
	}
	if !strings.Contains(lines[3], "└─ node-worker") {
		t.Errorf("child line = %q", lines[3])
	}
}

func TestStatusIcon(t *testing.T) {
	for state, want := range map[string]string{
		"LISTEN":      "●",
		"ESTABLISHED": "◉",
		"TIME_WAIT":   "◌",
		"OPEN":        "○",
	} {
		if got := StatusIcon(state); got != want {
			t.Errorf("StatusIcon(%q) = %q, want %q", state, got, want)
		}
	}
}
