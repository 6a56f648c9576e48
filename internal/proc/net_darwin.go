//go:build darwin

package proc

import (
	"os/exec"
	"strconv"
	"strings"

	"github.com/Brutus1066/portr/pkg/model"
)

type systemSocketTable struct{}

func (systemSocketTable) Sockets() ([]model.SocketRecord, error) {
	out, err := exec.Command("lsof", "-i", "-P", "-n").Output()
	if err != nil {
		return nil, model.E(model.KindReadFailed, "lsof socket listing", err)
	}

	var records []model.SocketRecord
	lines := strings.Split(string(out), "\n")

	startIdx := 0
	if len(lines) > 0 && strings.HasPrefix(lines[0], "COMMAND") {
		startIdx = 1
	}

	for _, line := range lines[startIdx:] {
		fields := strings.Fields(line)
		if len(fields) < 9 {
			continue
		}

		pid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}

		proto := fields[7]
		if proto != "TCP" && proto != "UDP" {
			switch {
			case strings.Contains(line, "TCP"):
				proto = "TCP"
			case strings.Contains(line, "UDP"):
				proto = "UDP"
			default:
				continue
			}
		}

		state := "OPEN"
		if len(fields) > 9 {
			state = strings.Trim(fields[9], "()")
		}

		nameField := fields[8]
		local, remote := nameField, ""
		if idx := strings.Index(nameField, "->"); idx != -1 {
			local = nameField[:idx]
			remote = nameField[idx+2:]
		}

		addr, port := parseLsofAddr(local)
		if port == 0 {
			continue
		}

		records = append(records, model.SocketRecord{
			Protocol:   proto,
			Port:       port,
			Address:    addr,
			RemoteAddr: remote,
			State:      state,
			PID:        pid,
		})
	}
	return records, nil
}

// parseLsofAddr parses addresses like "*:8080", "127.0.0.1:8080", "[::1]:8080".
func parseLsofAddr(addr string) (string, int) {
	if strings.HasPrefix(addr, "[") {
		bracketEnd := strings.LastIndex(addr, "]")
		if bracketEnd == -1 {
			return "", 0
		}
		ip := addr[1:bracketEnd]
		rest := addr[bracketEnd+1:]
		if len(rest) > 1 && rest[0] == ':' {
			if port, err := strconv.Atoi(rest[1:]); err == nil {
				if ip == "" {
					ip = "::"
				}
				return ip, port
			}
		}
		return "", 0
	}

	idx := strings.LastIndex(addr, ":")
	if idx == -1 {
		return "", 0
	}
	port, err := strconv.Atoi(addr[idx+1:])
	if err != nil {
		return "", 0
	}
	ip := addr[:idx]
	if ip == "*" {
		ip = "0.0.0.0"
	}
	return ip, port
}
