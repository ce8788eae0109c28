package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trailhead/internal/store"
)

var createCmd = &cobra.Command{
	Use:   "create <path>",
	Short: "Create an empty Sourcetrail project database",
	Long: `Create a new project database at the given path, together with the
.srctrlprj descriptor the Sourcetrail viewer opens. The .srctrldb
extension is appended when missing. Fails if the file already exists.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db := store.New(store.WithLogger(logger))
		if err := db.Create(args[0]); err != nil {
			return fmt.Errorf("creating database: %w", err)
		}
		defer db.Close()
		if err := db.Commit(); err != nil {
			return err
		}

		fmt.Printf("Created %s\n", db.Path())
		fmt.Printf("Project file: %s\n", db.ProjectFilePath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
