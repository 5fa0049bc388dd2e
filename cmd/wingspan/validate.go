package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wingspan/pkg/cli"
	"wingspan/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a pipeline configuration",
	Long: `Load and statically validate a pipeline configuration file: required
fields, engine_type, and that every wing references a declared feather.

No feather database or results database is opened.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, fmt.Sprintf("failed to load pipeline config: %v", err))
	}

	fmt.Printf("Loaded pipeline %q\n", cfg.PipelineName)
	fmt.Printf("✓ Configuration valid\n")
	fmt.Printf("  engine_type: %s\n", cfg.EngineType)
	fmt.Printf("  wings: %d\n", len(cfg.Wings))
	fmt.Printf("  feathers: %d\n", len(cfg.Feathers))

	return nil
}
