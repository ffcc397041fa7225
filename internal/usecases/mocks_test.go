package usecases_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"payflow.backend/internal/domain/entities"
	"payflow.backend/pkg/utils"
)

// Mock WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	return m.Called(ctx, wallet).Error(0)
}

func (m *MockWalletRepository) GetByID(ctx context.Context, id int64) (*entities.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) FindByNetworkAndAddress(ctx context.Context, network, address string) (*entities.Wallet, error) {
	args := m.Called(ctx, network, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListByFlowID(ctx context.Context, flowID int64, pagination utils.PaginationParams) ([]*entities.Wallet, int64, error) {
	args := m.Called(ctx, flowID, pagination)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Wallet), args.Get(1).(int64), args.Error(2)
}

func (m *MockWalletRepository) ListPendingSafeDeployments(ctx context.Context, afterID int64, networks []string, limit int) ([]*entities.Wallet, error) {
	args := m.Called(ctx, afterID, networks, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Update(ctx context.Context, wallet *entities.Wallet, expectedVersion int64) error {
	return m.Called(ctx, wallet, expectedVersion).Error(0)
}

func (m *MockWalletRepository) AttachMaster(ctx context.Context, wallet *entities.Wallet, account *entities.Account) error {
	return m.Called(ctx, wallet, account).Error(0)
}

func (m *MockWalletRepository) Describe(ctx context.Context, wallet *entities.Wallet) (string, error) {
	args := m.Called(ctx, wallet)
	return args.String(0), args.Error(1)
}

// Mock FlowRepository
type MockFlowRepository struct {
	mock.Mock
}

func (m *MockFlowRepository) Create(ctx context.Context, flow *entities.Flow) error {
	return m.Called(ctx, flow).Error(0)
}

func (m *MockFlowRepository) GetByID(ctx context.Context, id int64) (*entities.Flow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Flow), args.Error(1)
}

// Mock AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *entities.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}
