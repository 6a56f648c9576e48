//go:build linux

package proc

import (
	"bufio"
	"encoding/hex"
	"errors"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/Brutus1066/portr/pkg/model"
)

var stateMap = map[string]string{
	"01": "ESTABLISHED",
	"02": "SYN_SENT",
	"03": "SYN_RECV",
	"04": "FIN_WAIT1",
	"05": "FIN_WAIT2",
	"06": "TIME_WAIT",
	"07": "CLOSE",
	"08": "CLOSE_WAIT",
	"09": "LAST_ACK",
	"0A": "LISTEN",
	"0B": "CLOSING",
}

type systemSocketTable struct{}

func (systemSocketTable) Sockets() ([]model.SocketRecord, error) {
	var records []model.SocketRecord
	var firstErr error

	read := func(path, proto string, ipv6 bool) {
		f, err := os.Open(path)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		defer f.Close()
		records = append(records, parseSocketFile(f, proto, ipv6)...)
	}

	read("/proc/net/tcp", "TCP", false)
	read("/proc/net/tcp6", "TCP", true)
	read("/proc/net/udp", "UDP", false)
	read("/proc/net/udp6", "UDP", true)

	if len(records) == 0 && firstErr != nil {
		if errors.Is(firstErr, os.ErrPermission) {
			return nil, model.E(model.KindPermissionDenied, "read /proc/net socket tables", firstErr)
		}
		return nil, model.E(model.KindReadFailed, "read /proc/net socket tables", firstErr)
	}

	attachOwners(records)
	return records, nil
}

// parseSocketFile parses one /proc/net/{tcp,udp}[6] table. The kernel emits
// hex-encoded little-endian addresses and a hex state column.
func parseSocketFile(r io.Reader, proto string, ipv6 bool) []model.SocketRecord {
	var records []model.SocketRecord

	scanner := bufio.NewScanner(r)
	scanner.Scan() // header

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 {
			continue
		}

		addr, port := parseKernelAddr(fields[1], ipv6)
		if port == 0 {
			continue
		}

		state := "OPEN"
		if proto == "TCP" {
			var ok bool
			state, ok = stateMap[fields[3]]
			if !ok {
				state = "UNKNOWN"
			}
		}

		remote := ""
		if raddr, rport := parseKernelAddr(fields[2], ipv6); rport != 0 {
			remote = raddr + ":" + strconv.Itoa(rport)
		}

		records = append(records, model.SocketRecord{
			Protocol:   proto,
			Port:       port,
			Address:    addr,
			RemoteAddr: remote,
			State:      state,
			Inode:      fields[9],
		})
	}
	return records
}

// parseKernelAddr decodes the hex "ADDR:PORT" cell. IPv6 addresses are
// stored as four little-endian 32-bit groups.
func parseKernelAddr(raw string, ipv6 bool) (string, int) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 {
		return "", 0
	}
	port, _ := strconv.ParseInt(parts[1], 16, 32)

	b, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", int(port)
	}

	if ipv6 {
		if len(b) != 16 {
			return "::", int(port)
		}
		ip := make(net.IP, 16)
		for i := 0; i < 4; i++ {
			ip[i*4+0] = b[i*4+3]
			ip[i*4+1] = b[i*4+2]
			ip[i*4+2] = b[i*4+1]
			ip[i*4+3] = b[i*4+0]
		}
		return ip.String(), int(port)
	}

	if len(b) < 4 {
		return "", int(port)
	}
	ip := strconv.Itoa(int(b[3])) + "." +
		strconv.Itoa(int(b[2])) + "." +
		strconv.Itoa(int(b[1])) + "." +
		strconv.Itoa(int(b[0]))
	return ip, int(port)
}

// attachOwners joins socket inodes to PIDs by scanning /proc/<pid>/fd
// symlinks. Per-pid failures (permission, exit races) leave PID at 0; the
// socket stays visible regardless.
func attachOwners(records []model.SocketRecord) {
	byInode := make(map[string][]int, len(records))
	for i := range records {
		byInode[records[i].Inode] = append(byInode[records[i].Inode], i)
	}

	entries, err := os.ReadDir("/proc")
	if err != nil {
		return
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}

		fdDir := "/proc/" + e.Name() + "/fd"
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			continue
		}

		for _, fd := range fds {
			link, err := os.Readlink(fdDir + "/" + fd.Name())
			if err != nil {
				continue
			}
			if !strings.HasPrefix(link, "socket:[") {
				continue
			}
			inode := strings.TrimSuffix(strings.TrimPrefix(link, "socket:["), "]")
			for _, idx := range byInode[inode] {
				records[idx].PID = pid
			}
		}
	}
}
