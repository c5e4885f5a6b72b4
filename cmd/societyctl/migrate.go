package main

import (
	"github.com/spf13/cobra"

	"societyhub/internal/pkg/logger"
	"societyhub/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		if err := repository.AutoMigrate(db); err != nil {
			return err
		}
		logger.Info("schema up to date")
		return nil
	},
}
