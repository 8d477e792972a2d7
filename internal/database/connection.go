package database

import (
	"context"
	"fmt"
	"time"

	"chorebot-api/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
}

// Connect opens the configured store. Only the initial connection is retried,
// with exponential backoff, so the service can start before its database.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	open := func() (*gorm.DB, error) {
		switch cfg.Driver {
		case config.DriverPostgres:
			return NewPostgresConnection(cfg)
		case config.DriverSQLite:
			return NewSQLiteConnection(cfg.Path)
		default:
			return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
		}
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.InitialInterval = 500 * time.Millisecond
	strategy.MaxInterval = 10 * time.Second
	strategy.MaxElapsedTime = 0

	retries := cfg.ConnectRetries
	if retries < 0 {
		retries = 0
	}

	var db *gorm.DB
	attempt := 0
	operation := func() error {
		attempt++
		conn, err := open()
		if err != nil {
			if cfg.Driver != config.DriverPostgres {
				return backoff.Permanent(err)
			}
			log.Warn("Database connection attempt failed",
				zap.String("driver", cfg.Driver),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		db = conn
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(strategy, uint64(retries)), ctx))
	if err != nil {
		return nil, err
	}

	log.Info("Database connected",
		zap.String("driver", cfg.Driver),
		zap.Int("attempts", attempt))
	return db, nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func HealthCheck(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database instance is nil")
	}

	if db.Statement == nil {
		return fmt.Errorf("database is not properly initialized")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if sqlDB == nil {
		return fmt.Errorf("underlying sql.DB is nil")
	}

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
