package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"payflow.backend/internal/domain/entities"
	domainerrors "payflow.backend/internal/domain/errors"
	"payflow.backend/internal/infrastructure/models"
	"payflow.backend/pkg/utils"
)

// WalletRepository implements wallet data operations.
// Writes use compare-and-swap on the version column; conflicts are reported,
// never retried.
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Create inserts a wallet with version 0 after checking its flow, optional
// master and (network, address) uniqueness in one transaction
func (r *WalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	if wallet == nil {
		return domainerrors.BadRequest("wallet is required")
	}

	m := r.toModel(wallet)
	m.ID = 0
	m.Version = 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireFlow(tx, m.FlowID); err != nil {
			return err
		}
		if m.MasterID != nil {
			if err := requireAccount(tx, *m.MasterID); err != nil {
				return err
			}
		}
		if err := ensureUniquePair(tx, m.Network, m.Address, 0); err != nil {
			return err
		}
		return translateWriteError("create wallet", tx.Create(m).Error)
	})
	if err != nil {
		return err
	}

	wallet.ID = m.ID
	wallet.Version = m.Version
	wallet.CreatedAt = m.CreatedAt
	wallet.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a wallet by ID
func (r *WalletRepository) GetByID(ctx context.Context, id int64) (*entities.Wallet, error) {
	var m models.Wallet
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound(fmt.Sprintf("wallet %d", id))
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// FindByNetworkAndAddress gets the wallet registered for an address on a network
func (r *WalletRepository) FindByNetworkAndAddress(ctx context.Context, network, address string) (*entities.Wallet, error) {
	var m models.Wallet
	err := r.db.WithContext(ctx).
		Where("network = ? AND address = ?", network, address).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound(fmt.Sprintf("wallet %s/%s", network, address))
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// ListByFlowID lists the wallets of a flow ordered by id
func (r *WalletRepository) ListByFlowID(ctx context.Context, flowID int64, pagination utils.PaginationParams) ([]*entities.Wallet, int64, error) {
	var totalCount int64
	query := r.db.WithContext(ctx).Model(&models.Wallet{}).Where("flow_id = ?", flowID)
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Wallet
	if err := query.Scopes(pagination.Scope()).Order("id ASC").Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	wallets := make([]*entities.Wallet, 0, len(ms))
	for i := range ms {
		wallets = append(wallets, r.toEntity(&ms[i]))
	}
	return wallets, totalCount, nil
}

// ListPendingSafeDeployments lists Safe wallets not yet marked as deployed
// with id > afterID, in id order. A non-empty networks restricts the page to
// those networks.
func (r *WalletRepository) ListPendingSafeDeployments(ctx context.Context, afterID int64, networks []string, limit int) ([]*entities.Wallet, error) {
	var ms []models.Wallet
	query := r.db.WithContext(ctx).
		Where("safe = ? AND safe_deployed = ? AND id > ?", true, false, afterID)
	if len(networks) > 0 {
		query = query.Where("network IN ?", networks)
	}
	query = query.Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}

	wallets := make([]*entities.Wallet, 0, len(ms))
	for i := range ms {
		wallets = append(wallets, r.toEntity(&ms[i]))
	}
	return wallets, nil
}

// Update persists the wallet's fields if the stored version still equals
// expectedVersion, then bumps the stored version by one
func (r *WalletRepository) Update(ctx context.Context, wallet *entities.Wallet, expectedVersion int64) error {
	if wallet == nil {
		return domainerrors.BadRequest("wallet is required")
	}

	now := time.Now()
	m := r.toModel(wallet)
	updates := map[string]interface{}{
		"address":         m.Address,
		"network":         m.Network,
		"smart":           m.Smart,
		"safe":            m.Safe,
		"safe_version":    m.SafeVersion,
		"safe_salt_nonce": m.SafeSaltNonce,
		"safe_deployed":   m.SafeDeployed,
		"flow_id":         m.FlowID,
		"version":         gorm.Expr("version + ?", 1),
		"updated_at":      now,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// version first so a stale writer gets ConcurrencyConflict
		if err := requireVersion(tx, m.ID, expectedVersion); err != nil {
			return err
		}
		if err := requireFlow(tx, m.FlowID); err != nil {
			return err
		}
		if err := ensureUniquePair(tx, m.Network, m.Address, m.ID); err != nil {
			return err
		}
		return compareAndSwap(tx, m.ID, expectedVersion, updates)
	})
	if err != nil {
		return err
	}

	wallet.Version = expectedVersion + 1
	wallet.UpdatedAt = now
	return nil
}

// AttachMaster links the wallet to an account. It is an update: the wallet's
// current version is the expected version.
func (r *WalletRepository) AttachMaster(ctx context.Context, wallet *entities.Wallet, account *entities.Account) error {
	if wallet == nil || account == nil {
		return domainerrors.BadRequest("wallet and account are required")
	}

	now := time.Now()
	expectedVersion := wallet.Version
	updates := map[string]interface{}{
		"account_id": account.ID,
		"version":    gorm.Expr("version + ?", 1),
		"updated_at": now,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireAccount(tx, account.ID); err != nil {
			return err
		}
		return compareAndSwap(tx, wallet.ID, expectedVersion, updates)
	})
	if err != nil {
		return err
	}

	wallet.MasterID = null.Int64From(account.ID)
	wallet.Master = account
	wallet.Version = expectedVersion + 1
	wallet.UpdatedAt = now
	return nil
}

// Describe resolves the wallet's flow and master and renders its summary.
// The caller's wallet is not modified.
func (r *WalletRepository) Describe(ctx context.Context, wallet *entities.Wallet) (string, error) {
	if wallet == nil {
		return "", domainerrors.BadRequest("wallet is required")
	}

	resolved := *wallet
	db := r.db.WithContext(ctx)

	if resolved.Flow == nil || resolved.Flow.ID != resolved.FlowID {
		var flow models.Flow
		if err := db.Where("id = ?", resolved.FlowID).First(&flow).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", domainerrors.ReferenceError(fmt.Sprintf("wallet %d: flow %d does not exist", resolved.ID, resolved.FlowID))
			}
			return "", err
		}
		resolved.Flow = flowToEntity(&flow)
	}

	if resolved.MasterID.Valid && (resolved.Master == nil || resolved.Master.ID != resolved.MasterID.Int64) {
		var account models.Account
		if err := db.Where("id = ?", resolved.MasterID.Int64).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", domainerrors.ReferenceError(fmt.Sprintf("wallet %d: account %d does not exist", resolved.ID, resolved.MasterID.Int64))
			}
			return "", err
		}
		resolved.Master = accountToEntity(&account)
	}

	return resolved.Describe()
}

// compareAndSwap applies updates to the wallet row only at expectedVersion
func compareAndSwap(tx *gorm.DB, id, expectedVersion int64, updates map[string]interface{}) error {
	result := tx.Model(&models.Wallet{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return translateWriteError("update wallet", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.Wallet{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.NotFound(fmt.Sprintf("wallet %d", id))
	}
	return domainerrors.ConcurrencyConflict(fmt.Sprintf("wallet %d is no longer at version %d", id, expectedVersion))
}

// requireVersion fails unless wallet id exists at expectedVersion
func requireVersion(tx *gorm.DB, id, expectedVersion int64) error {
	var stored models.Wallet
	err := tx.Select("id", "version").Where("id = ?", id).First(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.NotFound(fmt.Sprintf("wallet %d", id))
		}
		return err
	}
	if stored.Version != expectedVersion {
		return domainerrors.ConcurrencyConflict(fmt.Sprintf("wallet %d is at version %d, not %d", id, stored.Version, expectedVersion))
	}
	return nil
}

func requireFlow(tx *gorm.DB, flowID int64) error {
	var count int64
	if err := tx.Model(&models.Flow{}).Where("id = ?", flowID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ReferenceError(fmt.Sprintf("flow %d does not exist", flowID))
	}
	return nil
}

func requireAccount(tx *gorm.DB, accountID int64) error {
	var count int64
	if err := tx.Model(&models.Account{}).Where("id = ?", accountID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ReferenceError(fmt.Sprintf("account %d does not exist", accountID))
	}
	return nil
}

// ensureUniquePair fails if another wallet (id != excludeID) owns the pair
func ensureUniquePair(tx *gorm.DB, network, address string, excludeID int64) error {
	var count int64
	err := tx.Model(&models.Wallet{}).
		Where("network = ? AND address = ? AND id <> ?", network, address, excludeID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return domainerrors.ConstraintViolation(fmt.Sprintf("wallet %s/%s already exists", network, address))
	}
	return nil
}

func (r *WalletRepository) toModel(w *entities.Wallet) *models.Wallet {
	return &models.Wallet{
		ID:            w.ID,
		Address:       w.Address,
		Network:       w.Network,
		Smart:         w.Smart,
		Safe:          w.Safe,
		SafeVersion:   w.SafeVersion.Ptr(),
		SafeSaltNonce: w.SafeSaltNonce.Ptr(),
		SafeDeployed:  w.SafeDeployed,
		FlowID:        w.FlowID,
		MasterID:      w.MasterID.Ptr(),
		Version:       w.Version,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

func (r *WalletRepository) toEntity(m *models.Wallet) *entities.Wallet {
	return &entities.Wallet{
		ID:            m.ID,
		Address:       m.Address,
		Network:       m.Network,
		Smart:         m.Smart,
		Safe:          m.Safe,
		SafeVersion:   null.StringFromPtr(m.SafeVersion),
		SafeSaltNonce: null.StringFromPtr(m.SafeSaltNonce),
		SafeDeployed:  m.SafeDeployed,
		FlowID:        m.FlowID,
		MasterID:      null.Int64FromPtr(m.MasterID),
		Version:       m.Version,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
