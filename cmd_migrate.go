package main

import (
	"fmt"

	"handyman/catalog"
	"handyman/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema and seed the service catalog, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Default()
		if err != nil {
			return err
		}
		db, err := database.ConnectDb(cfg.DB, log)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close(db) }()

		created, err := database.SeedServices(cmd.Context(), db, cat)
		if err != nil {
			return fmt.Errorf("seed services: %w", err)
		}
		log.Info("migration finished", zap.Int("services_created", created))
		return nil
	},
}
