package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"payflow.backend/internal/config"
	domainRepos "payflow.backend/internal/domain/repositories"
	"payflow.backend/internal/infrastructure/blockchain"
	"payflow.backend/internal/infrastructure/datasources/postgres"
	"payflow.backend/internal/infrastructure/jobs"
	"payflow.backend/internal/infrastructure/repositories"
	"payflow.backend/pkg/logger"
	"payflow.backend/pkg/redis"
)

var (
	loadDotenv  = godotenv.Load
	loadCfg     = config.Load
	initLog     = logger.Init
	setLogLevel = logger.SetLevel
	initRedis   = redis.Init
	connectDB   = postgres.NewConnection
	getStdDB    = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runWorker(ctx); err != nil {
		log.Fatal(err)
	}
}

func runWorker(ctx context.Context) error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()
	initLog(cfg.Server.Env)
	applyLogLevel(ctx, cfg.Server.LogLevel)
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	db, err := connectDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	var walletRepo domainRepos.WalletRepository = repositories.NewWalletRepository(db)
	if cfg.Redis.Enabled {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
			logger.Warn(ctx, "Redis unavailable, wallet cache disabled", zap.Error(err))
		} else {
			defer redis.Close()
			walletRepo = repositories.NewCachedWalletRepository(walletRepo, cfg.Redis.CacheTTL)
			logger.Info(ctx, "Wallet cache enabled", zap.Duration("ttl", cfg.Redis.CacheTTL))
		}
	}

	clientFactory := blockchain.NewClientFactory()
	defer clientFactory.Close()

	syncJob := jobs.NewSafeDeploymentSyncJob(
		walletRepo,
		clientFactory,
		cfg.Blockchain.RPCURLs,
		cfg.Blockchain.SafeSyncInterval,
		cfg.Blockchain.SafeSyncBatchSize,
	)

	logger.Info(ctx, "Worker started", zap.Int("networks", len(cfg.Blockchain.RPCURLs)))
	syncJob.Start(ctx)
	logger.Info(context.Background(), "Worker stopped")
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
