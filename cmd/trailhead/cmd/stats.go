package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trailhead/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats <path>",
	Short: "Show row counts for a project database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db := store.New(store.WithLogger(logger))
		if err := db.Open(args[0]); err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return err
		}

		fmt.Printf("Database: %s\n", db.Path())
		fmt.Printf("  Elements:         %d\n", stats.ElementCount)
		fmt.Printf("  Nodes:            %d\n", stats.NodeCount)
		fmt.Printf("  Edges:            %d\n", stats.EdgeCount)
		fmt.Printf("  Symbols:          %d\n", stats.SymbolCount)
		fmt.Printf("  Files:            %d\n", stats.FileCount)
		fmt.Printf("  Local symbols:    %d\n", stats.LocalSymbolCount)
		fmt.Printf("  Source locations: %d\n", stats.SourceLocationCount)
		fmt.Printf("  Occurrences:      %d\n", stats.OccurrenceCount)
		fmt.Printf("  Errors:           %d\n", stats.ErrorCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
