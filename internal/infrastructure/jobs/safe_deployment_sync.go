package jobs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"payflow.backend/internal/domain/entities"
	domainerrors "payflow.backend/internal/domain/errors"
	"payflow.backend/internal/infrastructure/blockchain"
	"payflow.backend/pkg/logger"
)

// PendingSafeStore is the slice of the wallet store the job needs
type PendingSafeStore interface {
	ListPendingSafeDeployments(ctx context.Context, afterID int64, networks []string, limit int) ([]*entities.Wallet, error)
	Update(ctx context.Context, wallet *entities.Wallet, expectedVersion int64) error
}

// EVMClientSource resolves a cached EVM client per RPC URL
type EVMClientSource interface {
	GetEVMClient(rpcURL string) (*blockchain.EVMClient, error)
}

// SafeDeploymentSyncJob marks Safe wallets as deployed once their contract
// code shows up on chain. Each tick checks one page of pending Safes on the
// networks that have an RPC URL; the cursor walks the ids and wraps to the
// start after a short page.
type SafeDeploymentSyncJob struct {
	repo      PendingSafeStore
	clients   EVMClientSource
	rpcURLs   map[string]string
	networks  []string
	interval  time.Duration
	batchSize int
	cursor    int64
	stop      chan struct{}
	stopOnce  sync.Once
}

func NewSafeDeploymentSyncJob(
	repo PendingSafeStore,
	clients EVMClientSource,
	rpcURLs map[string]string,
	interval time.Duration,
	batchSize int,
) *SafeDeploymentSyncJob {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	networks := make([]string, 0, len(rpcURLs))
	for network, rpcURL := range rpcURLs {
		if rpcURL != "" {
			networks = append(networks, network)
		}
	}
	sort.Strings(networks)

	return &SafeDeploymentSyncJob{
		repo:      repo,
		clients:   clients,
		rpcURLs:   rpcURLs,
		networks:  networks,
		interval:  interval,
		batchSize: batchSize,
		stop:      make(chan struct{}),
	}
}

func (j *SafeDeploymentSyncJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting Safe deployment sync job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Safe deployment sync job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Safe deployment sync job stopped")
			return
		case <-ticker.C:
			j.syncPendingSafes(ctx)
		}
	}
}

func (j *SafeDeploymentSyncJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

// syncPendingSafes returns the number of wallets marked deployed
func (j *SafeDeploymentSyncJob) syncPendingSafes(ctx context.Context) int {
	if len(j.networks) == 0 {
		logger.Debug(ctx, "No RPC URLs configured, skipping Safe deployment sync")
		return 0
	}

	pending, err := j.repo.ListPendingSafeDeployments(ctx, j.cursor, j.networks, j.batchSize)
	if err != nil {
		logger.Error(ctx, "Error fetching pending Safe wallets", zap.Error(err), zap.Int64("after_id", j.cursor))
		return 0
	}
	if len(pending) < j.batchSize {
		j.cursor = 0
	} else {
		j.cursor = pending[len(pending)-1].ID
	}
	if len(pending) == 0 {
		return 0
	}

	marked := 0
	for _, wallet := range pending {
		if j.syncWallet(ctx, wallet) {
			marked++
		}
	}

	if marked > 0 {
		logger.Info(ctx, "Marked Safe wallets as deployed", zap.Int("count", marked), zap.Int("checked", len(pending)))
	}
	return marked
}

func (j *SafeDeploymentSyncJob) syncWallet(ctx context.Context, wallet *entities.Wallet) bool {
	fields := []zap.Field{
		zap.Int64("wallet_id", wallet.ID),
		zap.String("network", wallet.Network),
	}

	rpcURL, ok := j.rpcURLs[wallet.Network]
	if !ok || rpcURL == "" {
		logger.Debug(ctx, "No RPC URL configured for network, skipping", fields...)
		return false
	}

	network, ok := entities.LookupNetwork(wallet.Network)
	if !ok {
		logger.Warn(ctx, "Unsupported network on pending Safe, skipping", fields...)
		return false
	}

	client, err := j.clients.GetEVMClient(rpcURL)
	if err != nil {
		logger.Warn(ctx, "EVM client unavailable", append(fields, zap.Error(err))...)
		return false
	}
	if client.ChainID() == nil || client.ChainID().Int64() != network.ChainID {
		logger.Warn(ctx, "RPC URL serves a different chain, skipping",
			append(fields, zap.String("caip2", network.GetCAIP2ID()), zap.Stringer("rpc_chain_id", client.ChainID()))...)
		return false
	}

	deployed, err := client.IsContractDeployed(ctx, wallet.Address)
	if err != nil {
		logger.Warn(ctx, "Safe code lookup failed", append(fields, zap.Error(err))...)
		return false
	}
	if !deployed {
		return false
	}

	wallet.SafeDeployed = true
	if err := j.repo.Update(ctx, wallet, wallet.Version); err != nil {
		if errors.Is(err, domainerrors.ErrConcurrencyConflict) {
			logger.Info(ctx, "Safe wallet changed concurrently, retrying next tick", fields...)
			return false
		}
		logger.Error(ctx, "Error marking Safe wallet as deployed", append(fields, zap.Error(err))...)
		return false
	}
	return true
}
