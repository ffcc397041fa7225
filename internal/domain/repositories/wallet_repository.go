package repositories

import (
	"context"

	"payflow.backend/internal/domain/entities"
	"payflow.backend/pkg/utils"
)

// WalletRepository defines wallet data operations
type WalletRepository interface {
	Create(ctx context.Context, wallet *entities.Wallet) error
	GetByID(ctx context.Context, id int64) (*entities.Wallet, error)
	FindByNetworkAndAddress(ctx context.Context, network, address string) (*entities.Wallet, error)
	ListByFlowID(ctx context.Context, flowID int64, pagination utils.PaginationParams) ([]*entities.Wallet, int64, error)
	// ListPendingSafeDeployments pages undeployed Safes by id; empty networks means all
	ListPendingSafeDeployments(ctx context.Context, afterID int64, networks []string, limit int) ([]*entities.Wallet, error)
	// Update persists wallet fields only if the stored version equals expectedVersion
	Update(ctx context.Context, wallet *entities.Wallet, expectedVersion int64) error
	AttachMaster(ctx context.Context, wallet *entities.Wallet, account *entities.Account) error
	Describe(ctx context.Context, wallet *entities.Wallet) (string, error)
}
