//go:build windows

package proc

import (
	"os/exec"
	"strconv"
	"strings"

	"github.com/Brutus1066/portr/pkg/model"
)

type systemSocketTable struct{}

func (systemSocketTable) Sockets() ([]model.SocketRecord, error) {
	out, err := exec.Command("netstat", "-ano").Output()
	if err != nil {
		return nil, model.E(model.KindReadFailed, "netstat socket listing", err)
	}

	var records []model.SocketRecord
	seen := make(map[string]bool)

	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		// TCP 0.0.0.0:135 0.0.0.0:0 LISTENING 888  (len 5)
		// UDP 0.0.0.0:123 *:*       999            (len 4)
		if len(fields) < 4 {
			continue
		}

		proto := fields[0]
		switch proto {
		case "TCP", "TCPv6":
			proto = "TCP"
		case "UDP", "UDPv6":
			proto = "UDP"
		default:
			continue
		}

		var pidStr, state, remote string
		if len(fields) >= 5 {
			pidStr = fields[4]
			state = fields[3]
			if state == "LISTENING" {
				state = "LISTEN"
			}
			if fields[2] != "0.0.0.0:0" && fields[2] != "*:*" && fields[2] != "[::]:0" {
				remote = fields[2]
			}
		} else {
			pidStr = fields[3]
			state = "OPEN"
		}

		pid, err := strconv.Atoi(pidStr)
		if err != nil {
			continue
		}

		ip, port, ok := splitHostPort(fields[1])
		if !ok {
			continue
		}

		key := proto + "|" + strconv.Itoa(pid) + "|" + strconv.Itoa(port) + "|" + ip + "|" + state
		if seen[key] {
			continue
		}
		seen[key] = true

		records = append(records, model.SocketRecord{
			Protocol:   proto,
			Port:       port,
			Address:    ip,
			RemoteAddr: remote,
			State:      state,
			PID:        pid,
		})
	}
	return records, nil
}

// splitHostPort parses "0.0.0.0:3000" and "[::]:3000".
func splitHostPort(addr string) (string, int, bool) {
	lastColon := strings.LastIndex(addr, ":")
	if lastColon == -1 {
		return "", 0, false
	}
	port, err := strconv.Atoi(addr[lastColon+1:])
	if err != nil {
		return "", 0, false
	}
	ip := addr[:lastColon]
	if len(ip) > 2 && strings.HasPrefix(ip, "[") && strings.HasSuffix(ip, "]") {
		ip = ip[1 : len(ip)-1]
	}
	return ip, port, true
}
