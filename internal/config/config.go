// Package config loads user settings from a small TOML-subset file:
// ~/.config/portr/config.toml on unix, %APPDATA%\portr\config.toml on
// Windows. Only flat [section] key = value pairs are supported, which is
// all the file format needs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/Brutus1066/portr/pkg/model"
)

// Defaults holds behavior settings from the [defaults] section.
type Defaults struct {
	Signal  string // kill signal, SIGTERM or SIGKILL
	Confirm bool   // prompt before killing
	Color   string // auto, always, never
	Format  string // pretty, json, csv, md
}

// Theme holds color names from the [theme] section.
type Theme struct {
	BannerColor  string
	SuccessColor string
	WarningColor string
	ErrorColor   string
}

// Config is the full loaded configuration.
type Config struct {
	Defaults Defaults
	Aliases  map[string]int // alias name to port
	Theme    Theme
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Defaults: Defaults{Signal: "SIGTERM", Confirm: true, Color: "auto", Format: "pretty"},
		Aliases:  map[string]int{},
		Theme: Theme{
			BannerColor:  "cyan",
			SuccessColor: "green",
			WarningColor: "yellow",
			ErrorColor:   "red",
		},
	}
}

// Path returns the platform config file location, or "" when the home
// directory cannot be determined.
func Path() string {
	if runtime.GOOS == "windows" {
		appdata := os.Getenv("APPDATA")
		if appdata == "" {
			return ""
		}
		return filepath.Join(appdata, "portr", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "portr", "config.toml")
}

// Load reads the config file. A missing or unreadable file is not an
// error; the defaults apply.
func Load() *Config {
	path := Path()
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}
	return Parse(string(data))
}

// Parse decodes config content. Unknown sections and keys are ignored so
// older binaries tolerate newer files.
func Parse(content string) *Config {
	cfg := Default()
	section := ""

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = line[1 : len(line)-1]
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch section {
		case "defaults":
			switch key {
			case "signal":
				cfg.Defaults.Signal = value
			case "confirm":
				cfg.Defaults.Confirm = value == "true"
			case "color":
				cfg.Defaults.Color = value
			case "format":
				cfg.Defaults.Format = value
			}
		case "aliases":
			if port, err := strconv.Atoi(value); err == nil && port > 0 && port <= 65535 {
				cfg.Aliases[key] = port
			}
		case "theme":
			switch key {
			case "banner_color":
				cfg.Theme.BannerColor = value
			case "success_color":
				cfg.Theme.SuccessColor = value
			case "warning_color":
				cfg.Theme.WarningColor = value
			case "error_color":
				cfg.Theme.ErrorColor = value
			}
		}
	}
	return cfg
}

// ResolvePort turns a CLI argument into a port number: a literal number,
// or an alias from the config file.
func (c *Config) ResolvePort(arg string) (int, error) {
	if port, err := strconv.Atoi(arg); err == nil {
		if port < 1 || port > 65535 {
			return 0, model.E(model.KindInvalidPort, fmt.Sprintf("port %d out of range 1-65535", port))
		}
		return port, nil
	}
	if port, ok := c.Aliases[arg]; ok {
		return port, nil
	}
	return 0, model.E(model.KindInvalidPort,
		fmt.Sprintf("%q is neither a port nor a configured alias; see portr config show", arg))
}

// Init writes the default config file, refusing to clobber an existing one.
func Init() (string, error) {
	path := Path()
	if path == "" {
		return "", fmt.Errorf("could not determine config path")
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultContent), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

// DefaultContent is the annotated file written by `portr config init`.
const DefaultContent = `# portr configuration file
# Location: ~/.config/portr/config.toml (Linux/macOS)
#           %APPDATA%\portr\config.toml (Windows)

[defaults]
# Kill signal: SIGTERM (graceful) or SIGKILL (force)
signal = "SIGTERM"

# Prompt before killing processes
confirm = true

# Color mode: auto, always, never
color = "auto"

# Default output format: pretty, json, csv, md
format = "pretty"

[aliases]
# Port aliases for quick access
# Usage: portr react  ->  portr 3000
react = 3000
next = 3000
vite = 5173
vue = 8080
angular = 4200
backend = 8080
api = 8000
flask = 5000
django = 8000
rails = 3000
postgres = 5432
mysql = 3306
redis = 6379
mongo = 27017
ollama = 11434
docker = 2375

[theme]
# Color customization
banner_color = "cyan"
success_color = "green"
warning_color = "yellow"
error_color = "red"
`
