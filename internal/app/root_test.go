package app

import (
	"testing"

	"github.com/Brutus1066/portr/internal/config"
)

func TestParseRange(t *testing.T) {
	lo, hi, err := parseRange("3000-3010")
	if err != nil || lo != 3000 || hi != 3010 {
		t.Fatalf("parseRange = %d-%d, %v", lo, hi, err)
	}

	for _, bad := range []string{"3000", "a-b", "10-5", "0-80", "80-70000"} {
		if _, _, err := parseRange(bad); err == nil {
			t.Errorf("parseRange(%q) accepted", bad)
		}
	}
}

func TestOutputFormatPrecedence(t *testing.T) {
	cfg = config.Default()
	flagJSON, flagCSV, flagMD = false, false, false

	if got := outputFormat(); got != "pretty" {
		t.Errorf("default format = %q", got)
	}

	cfg.Defaults.Format = "csv"
	if got := outputFormat(); got != "csv" {
		t.Errorf("config format = %q", got)
	}

	// A flag beats the config file.
	flagJSON = true
	defer func() { flagJSON = false }()
	if got := outputFormat(); got != "json" {
		t.Errorf("flag format = %q", got)
	}
}

func TestPortNotInUse(t *testing.T) {
	if got := portNotInUse(5432); got != "Port 5432 (PostgreSQL) is not in use" {
		t.Errorf("portNotInUse(5432) = %q", got)
	}
	if got := portNotInUse(54321); got != "Port 54321 is not in use" {
		t.Errorf("portNotInUse(54321) = %q", got)
	}
}

func TestVersionString(t *testing.T) {
	SetVersionBuildCommitString("v1.2.3", "abc1234", "2024-06-01")
	if got := versionString(); got != "v1.2.3 (abc1234, 2024-06-01)" {
		t.Errorf("versionString = %q", got)
	}
	SetVersionBuildCommitString("v1.2.3", "", "")
	if got := versionString(); got != "v1.2.3" {
		t.Errorf("versionString = %q", got)
	}
}
