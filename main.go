package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"wink/config"
)

var rootCmd = &cobra.Command{
	Use:           "wink",
	Short:         "Team task management API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, teamCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, sets up logging and opens the database.
func bootstrap() (*config.Config, *logrus.Logger, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := config.NewLogger(cfg)
	cfg.LogSummary(log.WithField("component", "config"))

	db, err := config.ConnectDB(cfg, log.WithField("component", "database"))
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func closeDB(db *gorm.DB, log *logrus.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Warn("Failed to close database")
	}
}
