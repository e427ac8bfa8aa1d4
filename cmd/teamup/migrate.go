package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"teamup/internal/repository/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		db, err := a.openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := postgres.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		a.logger.Info("schema applied")
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "database schema applied")
		return err
	},
}
