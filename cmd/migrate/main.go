package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"payflow.backend/internal/config"
	"payflow.backend/internal/infrastructure/migrations"
	"payflow.backend/pkg/logger"
)

var (
	loadDotenv  = godotenv.Load
	loadCfg     = config.Load
	initLog     = logger.Init
	setLogLevel = logger.SetLevel
	migrateUp   = migrations.Up
	migrateDown = migrations.Down
)

func main() {
	if err := runMigrate(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func runMigrate(args []string) error {
	direction := "up"
	if len(args) > 0 {
		direction = args[0]
	}

	var apply func(string) error
	switch direction {
	case "up":
		apply = migrateUp
	case "down":
		apply = migrateDown
	default:
		return fmt.Errorf("unknown direction %q (want up or down)", direction)
	}

	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := loadCfg()
	initLog(cfg.Server.Env)

	ctx := context.Background()
	applyLogLevel(ctx, cfg.Server.LogLevel)
	logger.Info(ctx, "Applying migrations", zap.String("direction", direction), zap.String("database", cfg.Database.DBName))
	if err := apply(cfg.Database.URL()); err != nil {
		logger.Error(ctx, "Migration failed", zap.String("direction", direction), zap.Error(err))
		return err
	}
	logger.Info(ctx, "Migrations applied", zap.String("direction", direction))
	return nil
}

// applyLogLevel overrides the env default level when LOG_LEVEL is set
func applyLogLevel(ctx context.Context, name string) {
	if name == "" {
		return
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		logger.Warn(ctx, "Ignoring invalid LOG_LEVEL", zap.String("level", name))
		return
	}
	setLogLevel(level)
}
