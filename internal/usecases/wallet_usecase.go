package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"payflow.backend/internal/domain/entities"
	domainerrors "payflow.backend/internal/domain/errors"
	"payflow.backend/internal/domain/repositories"
	"payflow.backend/internal/infrastructure/metrics"
	"payflow.backend/pkg/logger"
	"payflow.backend/pkg/utils"
)

// Store operation labels
const (
	opCreate       = "create"
	opFind         = "find_by_network_address"
	opGet          = "get"
	opList         = "list_by_flow"
	opUpdate       = "update"
	opAttachMaster = "attach_master"
	opDescribe     = "describe"
)

// WalletUsecase handles wallet business logic
type WalletUsecase struct {
	walletRepo  repositories.WalletRepository
	flowRepo    repositories.FlowRepository
	accountRepo repositories.AccountRepository
	metrics     *metrics.StoreMetrics
}

// NewWalletUsecase creates a new wallet usecase. m may be nil.
func NewWalletUsecase(
	walletRepo repositories.WalletRepository,
	flowRepo repositories.FlowRepository,
	accountRepo repositories.AccountRepository,
	m *metrics.StoreMetrics,
) *WalletUsecase {
	return &WalletUsecase{
		walletRepo:  walletRepo,
		flowRepo:    flowRepo,
		accountRepo: accountRepo,
		metrics:     m,
	}
}

// RegisterWallet validates input and stores a new wallet under the flow
func (u *WalletUsecase) RegisterWallet(ctx context.Context, flowID int64, input *entities.RegisterWalletInput) (*entities.Wallet, error) {
	if input == nil {
		return nil, domainerrors.BadRequest("input is required")
	}

	network, ok := entities.LookupNetwork(input.Network)
	if !ok {
		return nil, domainerrors.BadRequest(fmt.Sprintf("unsupported network %q (supported: %s)", input.Network, supportedNetworkNames()))
	}
	address := strings.TrimSpace(input.Address)
	if !common.IsHexAddress(address) {
		return nil, domainerrors.BadRequest(fmt.Sprintf("invalid address %q", input.Address))
	}
	if input.Safe {
		if !network.AACompatible {
			return nil, domainerrors.BadRequest(fmt.Sprintf("network %s does not support Safe accounts", network.Name))
		}
		if !input.SafeVersion.Valid || strings.TrimSpace(input.SafeVersion.String) == "" {
			return nil, domainerrors.BadRequest("safeVersion is required for Safe wallets")
		}
	}
	address = common.HexToAddress(address).Hex()

	flow, err := u.flowRepo.GetByID(ctx, flowID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ReferenceError(fmt.Sprintf("flow %d does not exist", flowID))
		}
		return nil, err
	}

	existing, err := u.walletRepo.FindByNetworkAndAddress(ctx, network.Name, address)
	u.metrics.Observe(opFind, ignoreNotFound(err))
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domainerrors.ConstraintViolation(fmt.Sprintf("wallet %s/%s already exists", network.Name, address))
	}

	wallet := entities.NewWallet(address, network.Name, input.Smart, input.Safe, input.SafeVersion, input.SafeSaltNonce, input.SafeDeployed)
	wallet.AttachFlow(flow)
	err = u.walletRepo.Create(ctx, wallet)
	u.metrics.Observe(opCreate, err)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Wallet registered",
		zap.Int64("wallet_id", wallet.ID),
		zap.String("network", wallet.Network),
		zap.String("address", network.PrefixedAddress(wallet.Address)),
	)
	return wallet, nil
}

func supportedNetworkNames() string {
	networks := entities.SupportedNetworks()
	names := make([]string, 0, len(networks))
	for _, n := range networks {
		names = append(names, n.Name)
	}
	return strings.Join(names, ", ")
}

// UpdateSafeMetadata changes a wallet's Safe fields at expectedVersion
func (u *WalletUsecase) UpdateSafeMetadata(ctx context.Context, walletID, expectedVersion int64, input *entities.UpdateSafeMetadataInput) (*entities.Wallet, error) {
	if input == nil {
		return nil, domainerrors.BadRequest("input is required")
	}

	wallet, err := u.getWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !wallet.Safe {
		return nil, domainerrors.BadRequest(fmt.Sprintf("wallet %d is not a Safe", walletID))
	}

	wallet.SafeVersion = input.SafeVersion
	wallet.SafeSaltNonce = input.SafeSaltNonce
	wallet.SafeDeployed = input.SafeDeployed

	err = u.walletRepo.Update(ctx, wallet, expectedVersion)
	u.metrics.Observe(opUpdate, err)
	if err != nil {
		if errors.Is(err, domainerrors.ErrConcurrencyConflict) {
			logger.Warn(ctx, "Stale Safe metadata update",
				zap.Int64("wallet_id", walletID),
				zap.Int64("expected_version", expectedVersion),
			)
		}
		return nil, err
	}
	return wallet, nil
}

// LinkAccount makes the account the wallet's master
func (u *WalletUsecase) LinkAccount(ctx context.Context, walletID, accountID int64) (*entities.Wallet, error) {
	wallet, err := u.getWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	account, err := u.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ReferenceError(fmt.Sprintf("account %d does not exist", accountID))
		}
		return nil, err
	}

	err = u.walletRepo.AttachMaster(ctx, wallet, account)
	u.metrics.Observe(opAttachMaster, err)
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// DescribeWallet renders the wallet summary
func (u *WalletUsecase) DescribeWallet(ctx context.Context, walletID int64) (string, error) {
	wallet, err := u.getWallet(ctx, walletID)
	if err != nil {
		return "", err
	}

	desc, err := u.walletRepo.Describe(ctx, wallet)
	u.metrics.Observe(opDescribe, err)
	return desc, err
}

// ListFlowWallets lists the wallets of a flow
func (u *WalletUsecase) ListFlowWallets(ctx context.Context, flowID int64, page, limit int) ([]*entities.Wallet, utils.PaginationMeta, error) {
	pagination := utils.GetPaginationParams(page, limit)
	wallets, total, err := u.walletRepo.ListByFlowID(ctx, flowID, pagination)
	u.metrics.Observe(opList, err)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return wallets, utils.CalculateMeta(total, pagination.Page, pagination.Limit), nil
}

func (u *WalletUsecase) getWallet(ctx context.Context, id int64) (*entities.Wallet, error) {
	wallet, err := u.walletRepo.GetByID(ctx, id)
	u.metrics.Observe(opGet, err)
	return wallet, err
}

// a lookup miss during registration is the expected path
func ignoreNotFound(err error) error {
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil
	}
	return err
}
