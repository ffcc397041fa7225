package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"payflow.backend/internal/domain/entities"
	domainerrors "payflow.backend/internal/domain/errors"
	"payflow.backend/internal/infrastructure/metrics"
	"payflow.backend/internal/usecases"
	"payflow.backend/pkg/utils"
)

const (
	lowerAddress    = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
	checksumAddress = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
)

type walletFixture struct {
	wallets  *MockWalletRepository
	flows    *MockFlowRepository
	accounts *MockAccountRepository
	registry *prometheus.Registry
	uc       *usecases.WalletUsecase
}

func newWalletFixture() *walletFixture {
	f := &walletFixture{
		wallets:  new(MockWalletRepository),
		flows:    new(MockFlowRepository),
		accounts: new(MockAccountRepository),
		registry: prometheus.NewRegistry(),
	}
	f.uc = usecases.NewWalletUsecase(f.wallets, f.flows, f.accounts, metrics.NewStoreMetrics(f.registry))
	return f
}

func safeInput(network string) *entities.RegisterWalletInput {
	return &entities.RegisterWalletInput{
		Address:       lowerAddress,
		Network:       network,
		Smart:         true,
		Safe:          true,
		SafeVersion:   null.StringFrom("1.4.1"),
		SafeSaltNonce: null.StringFrom("42"),
	}
}

func TestWalletUsecase_RegisterWallet_Success(t *testing.T) {
	f := newWalletFixture()
	ctx := context.Background()
	flow := &entities.Flow{ID: 3, UUID: uuid.New()}

	f.flows.On("GetByID", ctx, int64(3)).Return(flow, nil).Once()
	f.wallets.On("FindByNetworkAndAddress", ctx, "base", checksumAddress).
		Return(nil, domainerrors.NotFound("wallet")).Once()
	f.wallets.On("Create", ctx, mock.MatchedBy(func(w *entities.Wallet) bool {
		return w.Address == checksumAddress && w.Network == "base" && w.FlowID == 3 && w.Flow == flow
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Wallet).ID = 1
	}).Return(nil).Once()

	got, err := f.uc.RegisterWallet(ctx, 3, safeInput(" Base "))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, checksumAddress, got.Address)
	assert.Equal(t, "1.4.1", got.SafeVersion.String)
	f.wallets.AssertExpectations(t)
	f.flows.AssertExpectations(t)

	count, err := testutil.GatherAndCount(f.registry, "payflow_wallet_store_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestWalletUsecase_RegisterWallet_Validation(t *testing.T) {
	f := newWalletFixture()
	ctx := context.Background()

	cases := map[string]*entities.RegisterWalletInput{
		"nil input":            nil,
		"unknown network":      safeInput("solana"),
		"bad address":          {Address: "0xabc", Network: "base"},
		"safe on non-AA":       safeInput("arbitrum-goerli"),
		"safe without version": {Address: lowerAddress, Network: "base", Safe: true},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.RegisterWallet(ctx, 1, input)
			assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
		})
	}
	f.wallets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.flows.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestWalletUsecase_RegisterWallet_UnknownNetworkListsSupported(t *testing.T) {
	f := newWalletFixture()

	_, err := f.uc.RegisterWallet(context.Background(), 1, safeInput("solana"))
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	for _, n := range entities.SupportedNetworks() {
		assert.Contains(t, err.Error(), n.Name)
	}
	assert.Contains(t, err.Error(), `"solana"`)
}

func TestWalletUsecase_RegisterWallet_EOAOnNonAANetwork(t *testing.T) {
	f := newWalletFixture()
	ctx := context.Background()
	flow := &entities.Flow{ID: 1}

	f.flows.On("GetByID", ctx, int64(1)).Return(flow, nil).Once()
	f.wallets.On("FindByNetworkAndAddress", ctx, "arbitrum-goerli", checksumAddress).
		Return(nil, domainerrors.NotFound("wallet")).Once()
	f.wallets.On("Create", ctx, mock.AnythingOfType("*entities.Wallet")).Return(nil).Once()

	_, err := f.uc.RegisterWallet(ctx, 1, &entities.RegisterWalletInput{Address: lowerAddress, Network: "arbitrum-goerli"})
	require.NoError(t, err)
}

func TestWalletUsecase_RegisterWallet_MissingFlow(t *testing.T) {
	f := newWalletFixture()
	ctx := context.Background()

	f.flows.On("GetByID", ctx, int64(9)).Return(nil, domainerrors.NotFound("flow 9")).Once()
	_, err := f.uc.RegisterWallet(ctx, 9, safeInput("base"))
	assert.ErrorIs(t, err, domainerrors.ErrReference)

	f.flows.On("GetByID", ctx, int64(10)).Return(nil, errors.New("db down")).Once()
	_, err = f.uc.RegisterWallet(ctx, 10, safeInput("base"))
	assert.EqualError(t, err, "db down")
}

func TestWalletUsecase_RegisterWallet_Duplicate(t *testing.T) {
	f := newWalletFixture()
	ctx := context.Background()

	f.flows.On("GetByID", ctx, int64(1)).Return(&entities.Flow{ID: 1}, nil)
	f.wallets.On("FindByNetworkAndAddress", ctx, "base", checksumAddress).
		Return(&entities.Wallet{ID: 5}, nil).Once()

	_, err := f.uc.RegisterWallet(ctx, 1, safeInput("base"))
	assert.ErrorIs(t, err, domainerrors.ErrConstraintViolation)
	f.wallets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	f.wallets.On("FindByNetworkAndAddress", ctx, "base", checksumAddress).
		Return(nil, domainerrors.NotFound("wallet")).Once()
	f.wallets.On("Create", ctx, mock.Anything).Return(domainerrors.ConstraintViolation("raced")).Once()

	_, err = f.uc.RegisterWallet(ctx, 1, safeInput("base"))
	assert.ErrorIs(t, err, domainerrors.ErrConstraintViolation)

	f.wallets.On("FindByNetworkAndAddress", ctx, "base", checksumAddress).
		Return(nil, errors.New("db down")).Once()
	_, err = f.uc.RegisterWallet(ctx, 1, safeInput("base"))
	assert.EqualError(t, err, "db down")
}

func TestWalletUsecase_UpdateSafeMetadata(t *testing.T) {
	f := newWalletFixture()
	ctx := context.Background()
	wallet := &entities.Wallet{ID: 1, Safe: true, Version: 2}
	input := &entities.UpdateSafeMetadataInput{
		SafeVersion:   null.StringFrom("1.4.1"),
		SafeSaltNonce: null.StringFrom("7"),
		SafeDeployed:  true,
	}

	f.wallets.On("GetByID", ctx, int64(1)).Return(wallet, nil).Once()
	f.wallets.On("Update", ctx, wallet, int64(2)).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Wallet).Version = 3
	}).Return(nil).Once()

	got, err := f.uc.UpdateSafeMetadata(ctx, 1, 2, input)
	require.NoError(t, err)
	assert.True(t, got.SafeDeployed)
	assert.Equal(t, "7", got.SafeSaltNonce.String)
	assert.Equal(t, int64(3), got.Version)
}

func TestWalletUsecase_UpdateSafeMetadata_Errors(t *testing.T) {
	f := newWalletFixture()
	ctx := context.Background()

	_, err := f.uc.UpdateSafeMetadata(ctx, 1, 0, nil)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	f.wallets.On("GetByID", ctx, int64(404)).Return(nil, domainerrors.NotFound("wallet 404")).Once()
	_, err = f.uc.UpdateSafeMetadata(ctx, 404, 0, &entities.UpdateSafeMetadataInput{})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	f.wallets.On("GetByID", ctx, int64(2)).Return(&entities.Wallet{ID: 2}, nil).Once()
	_, err = f.uc.UpdateSafeMetadata(ctx, 2, 0, &entities.UpdateSafeMetadataInput{})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	stale := &entities.Wallet{ID: 3, Safe: true, Version: 1}
	f.wallets.On("GetByID", ctx, int64(3)).Return(stale, nil).Once()
	f.wallets.On("Update", ctx, stale, int64(0)).Return(domainerrors.ConcurrencyConflict("stale")).Once()
	_, err = f.uc.UpdateSafeMetadata(ctx, 3, 0, &entities.UpdateSafeMetadataInput{SafeDeployed: true})
	assert.ErrorIs(t, err, domainerrors.ErrConcurrencyConflict)
}

func TestWalletUsecase_LinkAccount(t *testing.T) {
	f := newWalletFixture()
	ctx := context.Background()
	wallet := &entities.Wallet{ID: 1}
	account := &entities.Account{ID: 7, Address: "0xowner"}

	f.wallets.On("GetByID", ctx, int64(1)).Return(wallet, nil)
	f.accounts.On("GetByID", ctx, int64(7)).Return(account, nil).Once()
	f.wallets.On("AttachMaster", ctx, wallet, account).Return(nil).Once()

	got, err := f.uc.LinkAccount(ctx, 1, 7)
	require.NoError(t, err)
	assert.Same(t, wallet, got)

	f.accounts.On("GetByID", ctx, int64(8)).Return(nil, domainerrors.NotFound("account 8")).Once()
	_, err = f.uc.LinkAccount(ctx, 1, 8)
	assert.ErrorIs(t, err, domainerrors.ErrReference)

	f.accounts.On("GetByID", ctx, int64(7)).Return(account, nil).Once()
	f.wallets.On("AttachMaster", ctx, wallet, account).Return(domainerrors.ConcurrencyConflict("stale")).Once()
	_, err = f.uc.LinkAccount(ctx, 1, 7)
	assert.ErrorIs(t, err, domainerrors.ErrConcurrencyConflict)

	f.wallets.On("GetByID", ctx, int64(2)).Return(nil, domainerrors.NotFound("wallet 2")).Once()
	_, err = f.uc.LinkAccount(ctx, 2, 7)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestWalletUsecase_DescribeWallet(t *testing.T) {
	f := newWalletFixture()
	ctx := context.Background()
	wallet := &entities.Wallet{ID: 1}

	f.wallets.On("GetByID", ctx, int64(1)).Return(wallet, nil)
	f.wallets.On("Describe", ctx, wallet).Return("Wallet [id=1, master=null]", nil).Once()

	desc, err := f.uc.DescribeWallet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Wallet [id=1, master=null]", desc)

	f.wallets.On("Describe", ctx, wallet).Return("", domainerrors.ReferenceError("flow missing")).Once()
	_, err = f.uc.DescribeWallet(ctx, 1)
	assert.ErrorIs(t, err, domainerrors.ErrReference)

	f.wallets.On("GetByID", ctx, int64(2)).Return(nil, domainerrors.NotFound("wallet 2")).Once()
	_, err = f.uc.DescribeWallet(ctx, 2)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestWalletUsecase_ListFlowWallets(t *testing.T) {
	f := newWalletFixture()
	ctx := context.Background()
	wallets := []*entities.Wallet{{ID: 1}, {ID: 2}}

	f.wallets.On("ListByFlowID", ctx, int64(3), utils.PaginationParams{Page: 1, Limit: 2}).
		Return(wallets, int64(5), nil).Once()

	got, meta, err := f.uc.ListFlowWallets(ctx, 3, 0, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, utils.PaginationMeta{Page: 1, Limit: 2, TotalCount: 5, TotalPages: 3}, meta)

	f.wallets.On("ListByFlowID", ctx, int64(4), utils.PaginationParams{Page: 1, Limit: 0}).
		Return(nil, int64(0), errors.New("db down")).Once()
	_, _, err = f.uc.ListFlowWallets(ctx, 4, 1, 0)
	assert.EqualError(t, err, "db down")
}

func TestWalletUsecase_NilMetrics(t *testing.T) {
	wallets := new(MockWalletRepository)
	uc := usecases.NewWalletUsecase(wallets, new(MockFlowRepository), new(MockAccountRepository), nil)
	ctx := context.Background()

	wallets.On("GetByID", ctx, int64(1)).Return(&entities.Wallet{ID: 1}, nil).Once()
	wallets.On("Describe", ctx, mock.Anything).Return("ok", nil).Once()

	desc, err := uc.DescribeWallet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ok", desc)
}
