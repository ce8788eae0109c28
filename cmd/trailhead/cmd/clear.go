package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trailhead/internal/store"
)

var clearCmd = &cobra.Command{
	Use:   "clear <path>",
	Short: "Remove all recorded data from a project database",
	Long: `Delete every recorded element from the database while keeping the
schema, the format metadata and the default node display rows, so the
database can be re-indexed in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db := store.New(store.WithLogger(logger))
		if err := db.Open(args[0]); err != nil {
			return err
		}
		defer db.Close()

		if err := db.Clear(); err != nil {
			return err
		}
		if err := db.Commit(); err != nil {
			return err
		}

		fmt.Printf("Cleared %s\n", db.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
