package repositories

import (
	"context"
	"time"

	"go.uber.org/zap"
	"payflow.backend/internal/domain/entities"
	domainRepos "payflow.backend/internal/domain/repositories"
	"payflow.backend/pkg/logger"
	"payflow.backend/pkg/redis"
)

const walletCacheKeyPrefix = "wallet:"

var (
	cacheGetJSON = redis.GetJSON
	cacheSetJSON = redis.SetJSON
	cacheDel     = redis.Del
)

// CachedWalletRepository serves (network, address) lookups from Redis and
// invalidates them on every write. Cache failures are logged, never returned.
type CachedWalletRepository struct {
	domainRepos.WalletRepository
	ttl time.Duration
}

// NewCachedWalletRepository wraps next with a Redis lookup cache
func NewCachedWalletRepository(next domainRepos.WalletRepository, ttl time.Duration) *CachedWalletRepository {
	return &CachedWalletRepository{WalletRepository: next, ttl: ttl}
}

func walletCacheKey(network, address string) string {
	return walletCacheKeyPrefix + network + ":" + address
}

// FindByNetworkAndAddress reads through the cache. Misses are not cached.
func (r *CachedWalletRepository) FindByNetworkAndAddress(ctx context.Context, network, address string) (*entities.Wallet, error) {
	key := walletCacheKey(network, address)

	var cached entities.Wallet
	hit, err := cacheGetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warn(ctx, "Wallet cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return &cached, nil
	}

	wallet, err := r.WalletRepository.FindByNetworkAndAddress(ctx, network, address)
	if err != nil {
		return nil, err
	}

	if err := cacheSetJSON(ctx, key, wallet, r.ttl); err != nil {
		logger.Warn(ctx, "Wallet cache write failed", zap.String("key", key), zap.Error(err))
	}
	return wallet, nil
}

// Update delegates and then drops the cached entries for the stored and the
// new (network, address), whatever the outcome
func (r *CachedWalletRepository) Update(ctx context.Context, wallet *entities.Wallet, expectedVersion int64) error {
	var staleKeys []string
	if wallet != nil {
		if stored, err := r.WalletRepository.GetByID(ctx, wallet.ID); err == nil {
			staleKeys = append(staleKeys, walletCacheKey(stored.Network, stored.Address))
		}
	}

	err := r.WalletRepository.Update(ctx, wallet, expectedVersion)
	if wallet != nil {
		r.invalidate(ctx, append(staleKeys, walletCacheKey(wallet.Network, wallet.Address))...)
	}
	return err
}

// AttachMaster delegates and drops the wallet's cached entry
func (r *CachedWalletRepository) AttachMaster(ctx context.Context, wallet *entities.Wallet, account *entities.Account) error {
	err := r.WalletRepository.AttachMaster(ctx, wallet, account)
	if wallet != nil {
		r.invalidate(ctx, walletCacheKey(wallet.Network, wallet.Address))
	}
	return err
}

func (r *CachedWalletRepository) invalidate(ctx context.Context, keys ...string) {
	if err := cacheDel(ctx, keys...); err != nil {
		logger.Warn(ctx, "Wallet cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
