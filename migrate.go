package main

import (
	"github.com/spf13/cobra"

	"wink/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db, log)

		if err := config.Migrate(db); err != nil {
			return err
		}
		log.Info("Database migrated")
		return nil
	},
}
