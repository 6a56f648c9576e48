//go:build linux

package proc

import (
	"strings"
	"testing"
)

const tcpFixture = `  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
   0: 00000000:0BB8 00000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 12345 1 0000000000000000 100 0 0 10 0
   1: 0100007F:1538 00000000:0000 0A 00000000:00000000 00:00000000 00000000   999        0 67890 1 0000000000000000 100 0 0 10 0
   2: 0100007F:A21E 0100007F:1538 01 00000000:00000000 00:00000000 00000000  1000        0 11111 1 0000000000000000 100 0 0 10 0
`

func TestParseSocketFileTCP(t *testing.T) {
	records := parseSocketFile(strings.NewReader(tcpFixture), "TCP", false)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	first := records[0]
	if first.Port != 3000 {
		t.Errorf("Port = %d, want 3000", first.Port)
	}
	if first.Address != "0.0.0.0" {
		t.Errorf("Address = %q, want 0.0.0.0", first.Address)
	}
	if first.State != "LISTEN" {
		t.Errorf("State = %q, want LISTEN", first.State)
	}
	if first.Inode != "12345" {
		t.Errorf("Inode = %q, want 12345", first.Inode)
	}

	second := records[1]
	if second.Port != 5432 || second.Address != "127.0.0.1" {
		t.Errorf("second = %s:%d, want 127.0.0.1:5432", second.Address, second.Port)
	}

	est := records[2]
	if est.State != "ESTABLISHED" {
		t.Errorf("State = %q, want ESTABLISHED", est.State)
	}
	if est.RemoteAddr != "127.0.0.1:5432" {
		t.Errorf("RemoteAddr = %q, want 127.0.0.1:5432", est.RemoteAddr)
	}
}

func TestParseSocketFileUDPHasNoState(t *testing.T) {
	udp := `  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode ref pointer drops
  0: 00000000:0035 00000000:0000 07 00000000:00000000 00:00000000 00000000     0        0 22222 2 0000000000000000 0
`
	records := parseSocketFile(strings.NewReader(udp), "UDP", false)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Port != 53 {
		t.Errorf("Port = %d, want 53", records[0].Port)
	}
	if records[0].State != "OPEN" {
		t.Errorf("State = %q, want OPEN", records[0].State)
	}
}

func TestParseKernelAddrIPv6(t *testing.T) {
	// :: in kernel encoding is 32 zero nibbles.
	addr, port := parseKernelAddr("00000000000000000000000000000000:1F90", true)
	if addr != "::" {
		t.Errorf("addr = %q, want ::", addr)
	}
	if port != 8080 {
		t.Errorf("port = %d, want 8080", port)
	}
}

func TestParseKernelAddrLoopback(t *testing.T) {
	addr, port := parseKernelAddr("0100007F:0050", false)
	if addr != "127.0.0.1" || port != 80 {
		t.Errorf("got %s:%d, want 127.0.0.1:80", addr, port)
	}
}

func TestParseKernelAddrMalformed(t *testing.T) {
	if addr, port := parseKernelAddr("garbage", false); addr != "" || port != 0 {
		t.Errorf("got %q:%d for malformed input", addr, port)
	}
}
