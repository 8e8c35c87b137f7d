package main

import (
	"fmt"
	"os"

	"github.com/aretw0/spotlist/internal/cli"
	"github.com/aretw0/spotlist/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spotlist",
	Short: "Spotlist is a step-by-step wizard for listing a parking space",
	Long: `Spotlist walks a parking-space owner through a short wizard (owner type,
location, details, space type) and hands the finished listing to the configured sinks.
It runs in the terminal, as an HTTP API or as an MCP server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file (YAML)")
	rootCmd.PersistentFlags().String("hooks", "hooks.yaml", "Path to the submit hook / locator command file")
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log every wizard event")
}

// loadApp reads the configuration, applies the persistent flags and wires the wizard.
func loadApp(cmd *cobra.Command, metrics bool) (*cli.App, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	debug, _ := cmd.Flags().GetBool("debug")

	logger, err := cli.NewLogger(cfg, debug)
	if err != nil {
		return nil, err
	}

	hooks, _ := cmd.Flags().GetString("hooks")
	return cli.NewApp(cfg, logger, cli.AppOptions{
		HooksPath: hooks,
		Debug:     debug,
		Metrics:   metrics,
	})
}
