package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/vladimiradmaev/protein-tracker/internal/config"
	"github.com/vladimiradmaev/protein-tracker/internal/database/migrations"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormConfig is shared by every dialect so timestamps are always written in UTC.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

func NewPostgresDB(cfg config.DBConfig, logger *slog.Logger) (*gorm.DB, error) {
	log := logger.With("component", "database", "host", cfg.Host, "database", cfg.DBName)

	var db *gorm.DB
	var err error
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	retryDelay := 2 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), GormConfig())
		if err == nil {
			break
		}

		log.Warn("Database connection failed", "attempt", attempt, "error", err)

		if attempt < maxRetries {
			time.Sleep(retryDelay)
			retryDelay *= 2
		}
	}

	if err != nil {
		log.Error("Failed to connect to database after retries", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db, log); err != nil {
		return nil, err
	}

	migrator := migrations.NewMigrator(log)
	if err := migrator.LoadSQLMigrations(migrations.SQLFiles, "sql"); err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	if _, err := migrator.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database connection established and migrations completed")
	return db, nil
}

// Migrate creates or updates the tables for every model
func Migrate(db *gorm.DB, logger *slog.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		logger.Error("Database migration failed", "error", err)
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
