package db

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bassignana/kruscotto/internal/models"
)

// ConnectAndMigrate opens the Postgres connection, retrying while the
// database comes up, then runs AutoMigrate for every model. Seeding of the
// default cash accounts only happens when DB_SEED is set, so tests and
// production schemas stay untouched.
func ConnectAndMigrate(dsn string) (*gorm.DB, error) {
	dsn = NormalizeDSN(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN vuoto, controllare la configurazione")
	}

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var conn *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		conn, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		log.Warn().Err(err).Msg("retrying DB connection")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		Seed(conn)
	}
	return conn, nil
}

// Migrate runs AutoMigrate for every model in dependency order.
func Migrate(conn *gorm.DB) error {
	for _, m := range []any{
		&models.CompanyProfile{},
		&models.CashAccount{},
		&models.Document{},
		&models.Installment{},
		&models.ImportBatch{},
	} {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// Seed creates the default cash accounts when missing.
func Seed(conn *gorm.DB) {
	for _, name := range models.DefaultCashAccounts {
		var existing models.CashAccount
		if err := conn.Where("name = ?", name).First(&existing).Error; err == gorm.ErrRecordNotFound {
			conn.Create(&models.CashAccount{Name: name})
		}
	}
}
