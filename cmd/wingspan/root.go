package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "wingspan",
	Short: "Wingspan - forensic artifact correlation engine",
	Long: `Wingspan correlates heterogeneous forensic artifact records — process
execution traces, filesystem metadata, registry entries, event logs, usage
telemetry — drawn from per-artifact normalized databases into coherent
correlation matches.

A pipeline configuration selects one of two correlation engines, supplies
filters, and binds declarative wing rules to concrete feather databases.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "pipeline.yaml", "pipeline config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
