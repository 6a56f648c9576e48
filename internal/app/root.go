// Package app wires the CLI: argument parsing, one-shot reporting, the
// kill workflow, and launching the dashboard.
package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Brutus1066/portr/internal/action"
	"github.com/Brutus1066/portr/internal/config"
	"github.com/Brutus1066/portr/internal/discover"
	"github.com/Brutus1066/portr/internal/docker"
	"github.com/Brutus1066/portr/internal/output"
)

var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var (
	flagKill    bool
	flagForce   bool
	flagDryRun  bool
	flagTree    bool
	flagTCP     bool
	flagUDP     bool
	flagJSON    bool
	flagCSV     bool
	flagMD      bool
	flagVerbose bool
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "portr [PORTS...]",
	Short: "Lightning-fast port inspector and process killer",
	Long: `portr inspects listening ports, the processes behind them, and the
containers publishing them. Ports may be numbers, configured aliases
(portr react), or ranges (portr 3000-3010).`,
	Example: `  portr                  list all listening ports
  portr 3000             inspect port 3000
  portr react            inspect via alias from config
  portr 3000-3010        scan a range
  portr 3000 --kill      kill the process on port 3000
  portr dashboard        full-screen dashboard`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	RunE:          runRoot,
}

// SetVersionBuildCommitString stores the -ldflags build identity.
func SetVersionBuildCommitString(v, c, d string) {
	if v != "" {
		version = v
	}
	commit = c
	buildDate = d
	rootCmd.Version = versionString()
}

func versionString() string {
	s := version
	if commit != "" {
		s += " (" + commit
		if buildDate != "" {
			s += ", " + buildDate
		}
		s += ")"
	}
	return s
}

func Execute() {
	cfg = config.Load()
	rootCmd.Version = versionString()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVarP(&flagKill, "kill", "k", false, "Kill the process using this port")
	rootCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Skip confirmation prompts")
	rootCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "Show what would be killed without killing")
	rootCmd.Flags().BoolVarP(&flagTree, "tree", "t", false, "Show the process tree for the port's owner")
	rootCmd.Flags().BoolVar(&flagTCP, "tcp", false, "Show only TCP sockets")
	rootCmd.Flags().BoolVar(&flagUDP, "udp", false, "Show only UDP sockets")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.Flags().BoolVar(&flagCSV, "csv", false, "Output as CSV")
	rootCmd.Flags().BoolVar(&flagMD, "md", false, "Output as Markdown")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose output with extra details")
	rootCmd.MarkFlagsMutuallyExclusive("json", "csv", "md")
}

// outputFormat resolves the effective format: flags first, then config.
func outputFormat() string {
	switch {
	case flagJSON:
		return "json"
	case flagCSV:
		return "csv"
	case flagMD:
		return "md"
	}
	switch cfg.Defaults.Format {
	case "json", "csv", "md":
		return cfg.Defaults.Format
	}
	return "pretty"
}

func colorEnabled() bool {
	switch cfg.Defaults.Color {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	info, err := os.Stdout.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// newEngine builds the real discovery engine, with container resolution
// when a runtime answers.
func newEngine() (*discover.Engine, *action.Killer) {
	var resolver discover.ContainerResolver
	var stopper action.ContainerStopper
	if cli := docker.NewCLIResolver(); cli != nil {
		resolver = cli
		stopper = cli
	}
	return discover.NewSystem(resolver), action.New(stopper)
}

func runRoot(cmd *cobra.Command, args []string) error {
	format := outputFormat()

	if len(args) == 0 {
		if format == "pretty" && colorEnabled() {
			output.PrintBanner(os.Stdout, cfg.Theme, true)
		}
		return listPorts(flagTCP, flagUDP, format)
	}

	// A lone range argument scans the range.
	if len(args) == 1 && strings.Contains(args[0], "-") {
		lo, hi, err := parseRange(args[0])
		if err != nil {
			return err
		}
		return scanRange(lo, hi, format)
	}

	ports := make([]int, 0, len(args))
	for _, arg := range args {
		port, err := cfg.ResolvePort(arg)
		if err != nil {
			return err
		}
		if _, isAlias := cfg.Aliases[arg]; isAlias && format == "pretty" {
			fmt.Printf("Alias %s -> port %d\n\n", arg, port)
		}
		ports = append(ports, port)
	}

	if flagKill {
		for _, port := range ports {
			if err := killPort(port, flagForce, flagDryRun, false); err != nil {
				return err
			}
		}
		return nil
	}

	return inspectPorts(ports, format, flagVerbose, flagTree)
}
