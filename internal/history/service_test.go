package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

func (m *MockRepository) FindByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

type fixture struct {
	service  *Service
	repo     *MockRepository
	accounts *MockAccounts
	user     uuid.UUID
	peer     uuid.UUID
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := new(MockRepository)
	accounts := new(MockAccounts)
	svc := NewService(repo, accounts, logger.NewNop())

	// Fixed wall clock: 2026-09-01 15:00 local time.
	now := time.Date(2026, time.September, 1, 15, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	f := &fixture{
		service:  svc,
		repo:     repo,
		accounts: accounts,
		user:     uuid.New(),
		peer:     uuid.New(),
		now:      now,
	}

	accounts.On("FindByID", mock.Anything, f.peer).Return(&domain.Account{
		ID:       f.peer,
		Username: "sarahchen",
	}, nil)

	return f
}

func (f *fixture) tx(sender, recipient uuid.UUID, amount int64, channel domain.Channel, description string, at time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:          uuid.New(),
		SenderID:    sender,
		RecipientID: recipient,
		Amount:      decimal.NewFromInt(amount),
		Channel:     channel,
		Status:      domain.TransactionStatusCompleted,
		Description: description,
		CreatedAt:   at,
	}
}

func TestListFor_DirectionAndCounterparty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sent := f.tx(f.user, f.peer, 100, domain.ChannelWallet, "Payment to sarahchen", f.now.Add(-time.Hour))
	received := f.tx(f.peer, f.user, 50, domain.ChannelQR, "Payment to alexjordan", f.now.Add(-2*time.Hour))

	f.repo.On("FindByParticipant", ctx, f.user).Return([]*domain.Transaction{sent, received}, nil)

	entries, err := f.service.ListFor(ctx, f.user, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, DirectionSent, entries[0].Direction)
	assert.Equal(t, "sarahchen", entries[0].Counterparty)
	assert.Equal(t, "Wallet Transfer", entries[0].ChannelLabel)

	assert.Equal(t, DirectionReceived, entries[1].Direction)
	assert.Equal(t, "sarahchen", entries[1].Counterparty)
	assert.Equal(t, "QR Payment", entries[1].ChannelLabel)
}

func TestListFor_ChannelFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	wallet := f.tx(f.user, f.peer, 100, domain.ChannelWallet, "", f.now.Add(-time.Hour))
	bank := f.tx(f.user, f.peer, 200, domain.ChannelBank, "", f.now.Add(-2*time.Hour))

	f.repo.On("FindByParticipant", ctx, f.user).Return([]*domain.Transaction{wallet, bank}, nil)

	entries, err := f.service.ListFor(ctx, f.user, Filter{Channel: domain.ChannelBank})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, bank.ID, entries[0].ID)
}

func TestListFor_QueryMatchesCounterpartyAndDescription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	toPeer := f.tx(f.user, f.peer, 100, domain.ChannelWallet, "Payment to sarahchen", f.now.Add(-time.Hour))
	groceries := f.tx(f.user, f.peer, 40, domain.ChannelQR, "Groceries split", f.now.Add(-2*time.Hour))

	f.repo.On("FindByParticipant", ctx, f.user).Return([]*domain.Transaction{toPeer, groceries}, nil)

	entries, err := f.service.ListFor(ctx, f.user, Filter{Query: "SARAH"})
	require.NoError(t, err)
	// Both match: "sarahchen" is the counterparty on each.
	assert.Len(t, entries, 2)

	entries, err = f.service.ListFor(ctx, f.user, Filter{Query: "groceries"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, groceries.ID, entries[0].ID)

	entries, err = f.service.ListFor(ctx, f.user, Filter{Query: "no such thing"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListFor_DateBuckets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	midnight := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.Local)

	today := f.tx(f.user, f.peer, 1, domain.ChannelWallet, "", midnight.Add(9*time.Hour))
	yesterday := f.tx(f.user, f.peer, 2, domain.ChannelWallet, "", midnight.Add(-3*time.Hour))
	fiveDaysAgo := f.tx(f.user, f.peer, 3, domain.ChannelWallet, "", midnight.AddDate(0, 0, -5).Add(12*time.Hour))
	twentyDaysAgo := f.tx(f.user, f.peer, 4, domain.ChannelWallet, "", midnight.AddDate(0, 0, -20).Add(12*time.Hour))
	fortyDaysAgo := f.tx(f.user, f.peer, 5, domain.ChannelWallet, "", midnight.AddDate(0, 0, -40))

	all := []*domain.Transaction{today, yesterday, fiveDaysAgo, twentyDaysAgo, fortyDaysAgo}
	f.repo.On("FindByParticipant", ctx, f.user).Return(all, nil)

	tests := []struct {
		name      string
		dateRange DateRange
		want      []uuid.UUID
	}{
		{"today", RangeToday, []uuid.UUID{today.ID}},
		{"yesterday", RangeYesterday, []uuid.UUID{yesterday.ID}},
		{"last 7 days", RangeLast7Days, []uuid.UUID{today.ID, yesterday.ID, fiveDaysAgo.ID}},
		{"last 30 days", RangeLast30Days, []uuid.UUID{today.ID, yesterday.ID, fiveDaysAgo.ID, twentyDaysAgo.ID}},
		{"all", RangeAll, []uuid.UUID{today.ID, yesterday.ID, fiveDaysAgo.ID, twentyDaysAgo.ID, fortyDaysAgo.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := f.service.ListFor(ctx, f.user, Filter{DateRange: tt.dateRange})
			require.NoError(t, err)

			got := make([]uuid.UUID, 0, len(entries))
			for _, entry := range entries {
				got = append(got, entry.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListFor_UnknownCounterparty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	removed := uuid.New()
	f.accounts.On("FindByID", mock.Anything, removed).Return(nil, pkgerrors.ErrAccountNotFound)

	tx := f.tx(f.user, removed, 100, domain.ChannelWallet, "", f.now.Add(-time.Hour))
	f.repo.On("FindByParticipant", ctx, f.user).Return([]*domain.Transaction{tx}, nil)

	entries, err := f.service.ListFor(ctx, f.user, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Unknown", entries[0].Counterparty)
}

func TestListFor_Empty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.On("FindByParticipant", ctx, f.user).Return([]*domain.Transaction{}, nil)

	entries, err := f.service.ListFor(ctx, f.user, Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}
