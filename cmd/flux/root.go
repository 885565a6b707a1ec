package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"flux/internal/app"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

var (
	flagConfig  string
	flagForce   bool
	flagFormat  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "flux",
	Short: "Status-bar internet speed reporter",
	Long: "flux prints the current download speed and latency as a single\n" +
		"status-bar line, shelling out to an external speed-test tool and\n" +
		"caching the result on disk so frequent polling stays cheap.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := app.New(configPath(), app.Options{
			Force:   flagForce,
			Format:  flagFormat,
			Verbose: flagVerbose,
		})
		if err != nil {
			return err
		}
		return a.Run(ctx)
	},
}

// Execute runs the root command. Failures go to stderr and exit 1; the
// status line itself is the only thing ever printed to stdout.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "flux:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.Flags().BoolVar(&flagForce, "force", false, "skip the freshness check and probe now")
	rootCmd.Flags().StringVar(&flagFormat, "format", "", "output format override (plain|polybar|waybar|pretty)")
	rootCmd.AddCommand(cacheCmd)
}

// configPath resolves the config file: --config wins, else
// <user config dir>/flux/config.yaml. A missing file means defaults, so an
// unresolvable config dir just falls through to defaults as well.
func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "flux", "config.yaml")
}
