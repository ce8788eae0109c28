package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trailhead/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a Go project into a Sourcetrail database",
	Long: `Walk a Go project, parse its sources, and record packages, types,
functions, fields, imports and call references into the project database
named by the configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}

		fmt.Printf("Indexing project at: %s\n", path)

		indexer := index.NewIndexer(cfg, path, index.WithLogger(logger))
		result, err := indexer.Run()
		if err != nil {
			return fmt.Errorf("indexing failed: %w", err)
		}

		fmt.Println()
		fmt.Printf("Indexing complete!\n")
		fmt.Printf("  Files:    %d\n", result.FileCount)
		fmt.Printf("  Symbols:  %d\n", result.SymbolCount)
		if result.ErrorCount > 0 {
			fmt.Printf("  Errors:   %d\n", result.ErrorCount)
		}
		fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Millisecond))
		fmt.Printf("  Database: %s\n", result.DBPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
