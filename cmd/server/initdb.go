package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/valuator/api/internal/config"
	"github.com/stwalsh4118/valuator/api/internal/logger"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the property and credential tables",
	Long:  "Creates valuator_data in PostgreSQL and the users table in the SQLite credential file. Existing tables are left untouched.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log := logger.New(cfg.Server.Env, logger.WithLevel(cfg.Server.LogLevel), logger.WithService("valuator"))

		db, users, err := openStores(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		db.Close()
		users.Close()

		log.Info("Schemas ready", logger.Fields{
			"database":    cfg.Database.Name,
			"credentials": cfg.Credentials.Path,
		})
		return nil
	},
}
