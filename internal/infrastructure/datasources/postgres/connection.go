package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"payflow.backend/internal/config"
	"payflow.backend/pkg/logger"
)

var (
	sqlOpen  = sql.Open
	dbPing   = func(db *sql.DB) error { return db.Ping() }
	openGorm = func(sqlDB *sql.DB) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			Conn: sqlDB,
		}), &gorm.Config{
			TranslateError:       true,
			DisableAutomaticPing: true,
		})
	}
)

// NewConnection opens the Postgres pool through lib/pq, waits for the server
// with bounded retries and wraps the pool in gorm
func NewConnection(cfg config.DatabaseConfig) (*gorm.DB, error) {
	sqlDB, err := sqlOpen("postgres", cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := cfg.ConnectDelay
	if delay <= 0 {
		delay = time.Second
	}

	err = retry.Do(
		func() error { return dbPing(sqlDB) },
		retry.Attempts(uint(attempts)),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn(context.Background(), "Database not ready, retrying",
				zap.Uint("attempt", n+1),
				zap.String("host", cfg.Host),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := openGorm(sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	logger.Info(context.Background(), "Connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("database", cfg.DBName))
	return db, nil
}
