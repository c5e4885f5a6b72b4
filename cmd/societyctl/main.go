// Command societyctl runs maintenance tasks against the society database.
package main

import (
	"log"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"societyhub/internal/config"
	"societyhub/internal/database"
	"societyhub/internal/pkg/logger"
)

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "societyctl",
		Short: "Maintenance commands for the society booking and visitor service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			logger.Init(cfg.LogLevel)
			return nil
		},
		SilenceUsage: true,
	}
)

func main() {
	rootCmd.AddCommand(migrateCmd, seedCmd, expireCmd, tokenCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("societyctl: %v", err)
	}
}

func openDB() (*gorm.DB, error) {
	return database.Connect(cfg.Database.URL)
}
