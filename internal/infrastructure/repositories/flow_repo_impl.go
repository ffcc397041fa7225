package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"payflow.backend/internal/domain/entities"
	domainerrors "payflow.backend/internal/domain/errors"
	"payflow.backend/internal/infrastructure/models"
	"payflow.backend/pkg/utils"
)

// FlowRepository implements flow data operations
type FlowRepository struct {
	db *gorm.DB
}

// NewFlowRepository creates a new flow repository
func NewFlowRepository(db *gorm.DB) *FlowRepository {
	return &FlowRepository{db: db}
}

// Create creates a new flow, generating its UUID when unset
func (r *FlowRepository) Create(ctx context.Context, flow *entities.Flow) error {
	if flow.UUID == uuid.Nil {
		flow.UUID = utils.GenerateUUIDv7()
	}
	m := &models.Flow{
		UUID:           flow.UUID,
		Name:           flow.Name,
		WalletProvider: flow.WalletProvider,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateWriteError("create flow", err)
	}
	flow.ID = m.ID
	flow.Version = m.Version
	flow.CreatedAt = m.CreatedAt
	flow.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a flow by ID
func (r *FlowRepository) GetByID(ctx context.Context, id int64) (*entities.Flow, error) {
	var m models.Flow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound(fmt.Sprintf("flow %d", id))
		}
		return nil, err
	}
	return flowToEntity(&m), nil
}

// AccountRepository implements account data operations
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account; addresses are unique
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	m := &models.Account{Address: account.Address}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Where("address = ?", account.Address).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domainerrors.ConstraintViolation(fmt.Sprintf("account %s already exists", account.Address))
		}
		return translateWriteError("create account", tx.Create(m).Error)
	})
	if err != nil {
		return err
	}
	account.ID = m.ID
	account.Version = m.Version
	account.CreatedAt = m.CreatedAt
	account.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*entities.Account, error) {
	var m models.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.NotFound(fmt.Sprintf("account %d", id))
		}
		return nil, err
	}
	return accountToEntity(&m), nil
}

func flowToEntity(m *models.Flow) *entities.Flow {
	return &entities.Flow{
		ID:             m.ID,
		UUID:           m.UUID,
		Name:           m.Name,
		WalletProvider: m.WalletProvider,
		Version:        m.Version,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func accountToEntity(m *models.Account) *entities.Account {
	return &entities.Account{
		ID:        m.ID,
		Address:   m.Address,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
