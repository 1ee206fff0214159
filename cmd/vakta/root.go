package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "vakta",
		Short: "Insider Activity Risk Engine",
		Long: `Vakta - Insider Activity Risk Engine

Vakta scores internal-user activity events against role policies,
working-hour schedules and behavioral baselines, and raises alerts
when the combined risk crosses the alerting threshold.

Run the HTTP service, seed an initial dataset, or score a single
event from the command line.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init sets up the root command
func init() {
	rootCmd.SetVersionTemplate(`Vakta {{.Version}} - Insider Activity Risk Engine
`)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML)")
}
