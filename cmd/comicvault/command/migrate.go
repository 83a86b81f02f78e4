package command

import (
	"fmt"

	"comicvault/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		// Open already migrated; running again is a no-op and confirms the schema.
		if err := database.Migrate(a.db); err != nil {
			return err
		}
		fmt.Println("✓ Schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
