// Package history projects the transaction ledger into the per-user activity
// view: direction, counterparty and display labels, with search and filters.
package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaivancodes/TrustportMobileWallet/internal/domain"
	pkgerrors "github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/logger"
)

// Direction is the user's side of a transaction.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// DateRange buckets are computed against local midnights, not rolling
// 24-hour windows.
type DateRange string

const (
	RangeAll        DateRange = ""
	RangeToday      DateRange = "today"
	RangeYesterday  DateRange = "yesterday"
	RangeLast7Days  DateRange = "last-7-days"
	RangeLast30Days DateRange = "last-30-days"
)

// Filter narrows the listing. Zero values mean no restriction.
type Filter struct {
	Query     string
	Channel   domain.Channel
	DateRange DateRange
}

// Entry is one row of the activity view.
type Entry struct {
	ID           uuid.UUID                `json:"id"`
	Direction    Direction                `json:"direction"`
	Counterparty string                   `json:"counterparty"`
	Amount       decimal.Decimal          `json:"amount"`
	Channel      domain.Channel           `json:"channel"`
	ChannelLabel string                   `json:"channel_label"`
	Status       domain.TransactionStatus `json:"status"`
	Description  string                   `json:"description"`
	CreatedAt    time.Time                `json:"created_at"`
}

// Repository loads transactions where the user is sender or recipient,
// newest first.
type Repository interface {
	FindByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error)
}

// Accounts resolves counterparty display names.
type Accounts interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

type Service struct {
	repo     Repository
	accounts Accounts
	logger   logger.Logger

	now func() time.Time
}

func NewService(repo Repository, accounts Accounts, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		logger:   log,
		now:      time.Now,
	}
}

// ListFor returns the user's activity, newest first, after applying the
// filter. The text query matches counterparty name and description,
// case-insensitive.
func (s *Service) ListFor(ctx context.Context, userID uuid.UUID, filter Filter) ([]*Entry, error) {
	transactions, err := s.repo.FindByParticipant(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load transactions")
	}

	names := make(map[uuid.UUID]string)
	entries := make([]*Entry, 0, len(transactions))

	for _, tx := range transactions {
		entry, err := s.project(ctx, userID, tx, names)
		if err != nil {
			return nil, err
		}
		if s.matches(entry, filter) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *Service) project(ctx context.Context, userID uuid.UUID, tx *domain.Transaction, names map[uuid.UUID]string) (*Entry, error) {
	direction := DirectionSent
	counterpartyID := tx.RecipientID
	if tx.RecipientID == userID {
		direction = DirectionReceived
		counterpartyID = tx.SenderID
	}

	name, ok := names[counterpartyID]
	if !ok {
		account, err := s.accounts.FindByID(ctx, counterpartyID)
		switch {
		case err == nil:
			name = account.Username
		case errors.Is(err, pkgerrors.ErrAccountNotFound):
			// Counterparty account removed since the transaction.
			name = "Unknown"
		default:
			return nil, pkgerrors.Wrap(err, "failed to resolve counterparty")
		}
		names[counterpartyID] = name
	}

	return &Entry{
		ID:           tx.ID,
		Direction:    direction,
		Counterparty: name,
		Amount:       tx.Amount,
		Channel:      tx.Channel,
		ChannelLabel: tx.Channel.Label(),
		Status:       tx.Status,
		Description:  tx.Description,
		CreatedAt:    tx.CreatedAt,
	}, nil
}

func (s *Service) matches(entry *Entry, filter Filter) bool {
	if filter.Channel != "" && entry.Channel != filter.Channel {
		return false
	}
	if !s.inRange(entry.CreatedAt, filter.DateRange) {
		return false
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		q = strings.ToLower(q)
		if !strings.Contains(strings.ToLower(entry.Counterparty), q) &&
			!strings.Contains(strings.ToLower(entry.Description), q) {
			return false
		}
	}
	return true
}

func (s *Service) inRange(at time.Time, dateRange DateRange) bool {
	if dateRange == RangeAll {
		return true
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch dateRange {
	case RangeToday:
		return !at.Before(midnight)
	case RangeYesterday:
		yesterday := midnight.AddDate(0, 0, -1)
		return !at.Before(yesterday) && at.Before(midnight)
	case RangeLast7Days:
		return !at.Before(midnight.AddDate(0, 0, -6))
	case RangeLast30Days:
		return !at.Before(midnight.AddDate(0, 0, -29))
	}
	return true
}
