package app

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Brutus1066/portr/internal/config"
	"github.com/Brutus1066/portr/internal/discover"
	"github.com/Brutus1066/portr/internal/output"
	"github.com/Brutus1066/portr/internal/tui"
)

var (
	listTCP bool
	listUDP bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all listening ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listPorts(listTCP, listUDP, outputFormat())
	},
}

var findCmd = &cobra.Command{
	Use:   "find PORT",
	Short: "Find which process is using a port",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := cfg.ResolvePort(args[0])
		if err != nil {
			return err
		}
		return inspectPorts([]int{port}, outputFormat(), flagVerbose, flagTree)
	},
}

var (
	killCmdForce   bool
	killCmdDryRun  bool
	killCmdSigkill bool
)

var killCmd = &cobra.Command{
	Use:   "kill PORTS...",
	Short: "Kill the process on one or more ports",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			port, err := cfg.ResolvePort(arg)
			if err != nil {
				return err
			}
			if err := killPort(port, killCmdForce, killCmdDryRun, killCmdSigkill); err != nil {
				return err
			}
		}
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"tui"},
	Short:   "Full-screen dashboard with live refresh and a kill workflow",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Start(cfg, versionString())
	},
}

var watchInterval int

var watchCmd = &cobra.Command{
	Use:   "watch [PORT]",
	Short: "Re-list ports at a fixed interval",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var port int
		if len(args) == 1 {
			p, err := cfg.ResolvePort(args[0])
			if err != nil {
				return err
			}
			port = p
		}
		if watchInterval < 1 {
			watchInterval = 1
		}

		engine, _ := newEngine()
		filter := discover.Filter{PortMin: port, PortMax: port}
		for {
			snap, err := engine.Discover(filter)
			if err != nil {
				return err
			}
			fmt.Print("\033[H\033[2J") // clear
			fmt.Printf("portr watch  %s  (every %ds, Ctrl+C to stop)\n\n",
				snap.Taken.Format("15:04:05"), watchInterval)
			output.RenderTable(os.Stdout, snap, colorEnabled())
			time.Sleep(time.Duration(watchInterval) * time.Second)
		}
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the portr configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Init()
		if err != nil {
			return err
		}
		fmt.Println("Created", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.Path())
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("defaults: signal=%s confirm=%v color=%s format=%s\n",
			cfg.Defaults.Signal, cfg.Defaults.Confirm, cfg.Defaults.Color, cfg.Defaults.Format)
		fmt.Printf("theme: banner=%s success=%s warning=%s error=%s\n",
			cfg.Theme.BannerColor, cfg.Theme.SuccessColor, cfg.Theme.WarningColor, cfg.Theme.ErrorColor)
		if len(cfg.Aliases) == 0 {
			fmt.Println("aliases: none")
			return
		}
		fmt.Println("aliases:")
		for name, port := range cfg.Aliases {
			fmt.Printf("  %s = %d\n", name, port)
		}
	},
}

func init() {
	listCmd.Flags().BoolVar(&listTCP, "tcp", false, "Show only TCP sockets")
	listCmd.Flags().BoolVar(&listUDP, "udp", false, "Show only UDP sockets")

	killCmd.Flags().BoolVarP(&killCmdForce, "force", "f", false, "Skip confirmation prompts")
	killCmd.Flags().BoolVarP(&killCmdDryRun, "dry-run", "n", false, "Show what would be killed")
	killCmd.Flags().BoolVar(&killCmdSigkill, "sigkill", false, "Use SIGKILL instead of SIGTERM")

	watchCmd.Flags().IntVarP(&watchInterval, "interval", "i", 2, "Refresh interval in seconds")

	configCmd.AddCommand(configInitCmd, configPathCmd, configShowCmd)
	rootCmd.AddCommand(listCmd, findCmd, killCmd, dashboardCmd, watchCmd, configCmd)
}
