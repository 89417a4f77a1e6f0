package directory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kaivancodes/TrustportMobileWallet/internal/domain"
	pkgerrors "github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/logger"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockRepository) FindByWalletID(ctx context.Context, walletID string) (*domain.Account, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockRepository) Search(ctx context.Context, prefix string, limit int) ([]*domain.Account, error) {
	args := m.Called(ctx, prefix, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

func testAccount(username string) *domain.Account {
	return &domain.Account{ID: uuid.New(), Username: username, WalletID: "WLT-0001-0001"}
}

func TestResolve_WalletByUsername(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, logger.NewNop())
	ctx := context.Background()

	account := testAccount("alexjordan")
	repo.On("FindByUsername", ctx, "alexjordan").Return(account, nil)

	got, err := svc.Resolve(ctx, "alexjordan", domain.ChannelWallet)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	repo.AssertNotCalled(t, "FindByWalletID", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "FindByAccountNumber", mock.Anything, mock.Anything)
}

func TestResolve_WalletFallsBackToWalletID(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, logger.NewNop())
	ctx := context.Background()

	account := testAccount("sarahchen")
	repo.On("FindByUsername", ctx, "WLT-5521-0374").Return(nil, pkgerrors.ErrAccountNotFound)
	repo.On("FindByWalletID", ctx, "WLT-5521-0374").Return(account, nil)

	got, err := svc.Resolve(ctx, "WLT-5521-0374", domain.ChannelWallet)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestResolve_WalletFallsBackToAccountNumber(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, logger.NewNop())
	ctx := context.Background()

	account := testAccount("mikebrown")
	repo.On("FindByUsername", ctx, "1000223366").Return(nil, pkgerrors.ErrAccountNotFound)
	repo.On("FindByWalletID", ctx, "1000223366").Return(nil, pkgerrors.ErrAccountNotFound)
	repo.On("FindByAccountNumber", ctx, "1000223366").Return(account, nil)

	got, err := svc.Resolve(ctx, "1000223366", domain.ChannelWallet)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestResolve_BankUsesAccountNumberOnly(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, logger.NewNop())
	ctx := context.Background()

	account := testAccount("linamwale")
	repo.On("FindByAccountNumber", ctx, "1000223377").Return(account, nil)

	got, err := svc.Resolve(ctx, "1000223377", domain.ChannelBank)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	repo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "FindByWalletID", mock.Anything, mock.Anything)
}

func TestResolve_BankIgnoresUsernameMatches(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, logger.NewNop())
	ctx := context.Background()

	// A username exists for this token but bank only matches account numbers.
	repo.On("FindByAccountNumber", ctx, "alexjordan").Return(nil, pkgerrors.ErrAccountNotFound)

	_, err := svc.Resolve(ctx, "alexjordan", domain.ChannelBank)
	assert.ErrorIs(t, err, pkgerrors.ErrRecipientNotFound)
}

func TestResolve_TrimsToken(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, logger.NewNop())
	ctx := context.Background()

	account := testAccount("alexjordan")
	repo.On("FindByUsername", ctx, "alexjordan").Return(account, nil)

	got, err := svc.Resolve(ctx, "  alexjordan  ", domain.ChannelWallet)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestResolve_EmptyToken(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, logger.NewNop())

	_, err := svc.Resolve(context.Background(), "   ", domain.ChannelWallet)
	assert.ErrorIs(t, err, pkgerrors.ErrRecipientNotFound)
	repo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
}

func TestResolve_NotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, logger.NewNop())
	ctx := context.Background()

	repo.On("FindByUsername", ctx, "ghost").Return(nil, pkgerrors.ErrAccountNotFound)
	repo.On("FindByWalletID", ctx, "ghost").Return(nil, pkgerrors.ErrAccountNotFound)
	repo.On("FindByAccountNumber", ctx, "ghost").Return(nil, pkgerrors.ErrAccountNotFound)

	_, err := svc.Resolve(ctx, "ghost", domain.ChannelQR)
	assert.ErrorIs(t, err, pkgerrors.ErrRecipientNotFound)
}

func TestSearch_CapsLimit(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, logger.NewNop())
	ctx := context.Background()

	repo.On("Search", ctx, "al", 5).Return([]*domain.Account{testAccount("alexjordan")}, nil)

	got, err := svc.Search(ctx, "al", 50)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	repo.AssertCalled(t, "Search", ctx, "al", 5)
}

func TestSearch_EmptyPrefix(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, logger.NewNop())

	got, err := svc.Search(context.Background(), "  ", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}
