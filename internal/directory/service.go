// Package directory resolves recipient tokens to accounts.
package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/kaivancodes/TrustportMobileWallet/internal/domain"
	pkgerrors "github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/logger"
)

type Service struct {
	repo   Repository
	logger logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log,
	}
}

// Resolve maps a recipient token to a unique account.
//
// Bank transfers match the account number only, exact and case-sensitive
// after trimming. Wallet and QR transfers try username, then wallet id, then
// account number; the three fields are collectively unique so at most one
// account can match.
func (s *Service) Resolve(ctx context.Context, token string, channel domain.Channel) (*domain.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.ErrRecipientNotFound
	}

	if channel == domain.ChannelBank {
		account, err := s.repo.FindByAccountNumber(ctx, token)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrAccountNotFound) {
				return nil, pkgerrors.ErrRecipientNotFound
			}
			return nil, pkgerrors.Wrap(err, "account number lookup failed")
		}
		return account, nil
	}

	lookups := []func(context.Context, string) (*domain.Account, error){
		s.repo.FindByUsername,
		s.repo.FindByWalletID,
		s.repo.FindByAccountNumber,
	}

	for _, lookup := range lookups {
		account, err := lookup(ctx, token)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrAccountNotFound) {
				continue
			}
			return nil, pkgerrors.Wrap(err, "recipient lookup failed")
		}
		return account, nil
	}

	s.logger.Debug("Recipient token matched nothing", map[string]interface{}{
		"channel": channel,
	})
	return nil, pkgerrors.ErrRecipientNotFound
}

// Search returns up to limit accounts whose username, wallet id or account
// number contains the prefix. Used by the send-money form for suggestions.
func (s *Service) Search(ctx context.Context, prefix string, limit int) ([]*domain.Account, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []*domain.Account{}, nil
	}
	if limit <= 0 || limit > 5 {
		limit = 5
	}
	return s.repo.Search(ctx, prefix, limit)
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.repo.FindByID(ctx, id)
}

type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByWalletID(ctx context.Context, walletID string) (*domain.Account, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	Search(ctx context.Context, prefix string, limit int) ([]*domain.Account, error)
}
