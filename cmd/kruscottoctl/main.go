package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bassignana/kruscotto/internal/config"
	"github.com/bassignana/kruscotto/internal/db"
	"github.com/bassignana/kruscotto/internal/logger"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "kruscottoctl",
	Short: "Kruscotto maintenance CLI",
	Long: `kruscottoctl runs batch operations against the Kruscotto database:
importing FatturaPA XML files from a directory and auditing the ledger for
schedules that no longer match their document totals.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg := config.Load()
		return logger.Setup(cfg.LogLevel, cfg.LogFormat)
	},
}

// openDB connects using the configured DSN.
func openDB() (*gorm.DB, config.Config, error) {
	cfg := config.Load()
	conn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
	if err != nil {
		return nil, cfg, fmt.Errorf("db connection failed: %w", err)
	}
	return conn, cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
