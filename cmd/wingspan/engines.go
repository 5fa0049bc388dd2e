package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wingspan/pkg/correlation/selector"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List available correlation engines",
	Long:  `List the correlation engine variants a pipeline's engine_type can select, along with their characteristics.`,
	RunE:  listEngines,
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}

func listEngines(cmd *cobra.Command, args []string) error {
	for _, meta := range selector.ListEngines() {
		fmt.Printf("%s\n", meta.Name)
		fmt.Printf("  %s\n", meta.Description)
		fmt.Printf("  complexity: %s\n", meta.Complexity)
		fmt.Printf("  identity filter support: %v\n", meta.SupportsIdentityFilter)
		if len(meta.UseCases) > 0 {
			fmt.Println("  use cases:")
			for _, uc := range meta.UseCases {
				fmt.Printf("    - %s\n", uc)
			}
		}
		fmt.Println()
	}
	return nil
}
