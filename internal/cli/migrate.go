package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			// loading the app runs the migrations
			a, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Database schema is up to date (%s)\n", a.cfg.Database.Driver)
			return nil
		},
	}
}
