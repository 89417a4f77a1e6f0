// Package settlement executes verified transfers: precondition checks, the
// atomic ledger posting, and the audit record for both outcomes.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaivancodes/TrustportMobileWallet/internal/domain"
	"github.com/kaivancodes/TrustportMobileWallet/internal/ledger"
	pkgerrors "github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/logger"
)

// Ledger applies the balance mutation and the COMPLETED record atomically.
type Ledger interface {
	PostTransfer(ctx context.Context, posting *ledger.Posting) error
}

// Recorder persists FAILED audit records. Completed records never go through
// here; they are written inside the ledger posting.
type Recorder interface {
	Create(ctx context.Context, transaction *domain.Transaction) error
}

type Service struct {
	ledger   Ledger
	recorder Recorder
	logger   logger.Logger
}

func NewService(l Ledger, recorder Recorder, log logger.Logger) *Service {
	return &Service{
		ledger:   l,
		recorder: recorder,
		logger:   log,
	}
}

// ValidateAmount rejects non-positive amounts and amounts with more than two
// decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return pkgerrors.ErrInvalidAmount
	}
	if amount.Exponent() < -2 {
		return pkgerrors.ErrInvalidAmount
	}
	return nil
}

// Execute settles a verified transfer from sender to recipient. On success the
// debit, credit and COMPLETED record are applied in one database transaction.
// On failure a FAILED record is appended best-effort and the balances are
// untouched.
func (s *Service) Execute(ctx context.Context, sender, recipient *domain.Account, amount decimal.Decimal, channel domain.Channel) (*domain.Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if sender.ID == recipient.ID {
		return nil, pkgerrors.ErrSelfTransferNotAllowed
	}

	record := &domain.Transaction{
		ID:          uuid.New(),
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Amount:      amount,
		Channel:     channel,
		Status:      domain.TransactionStatusCompleted,
		Description: describe(recipient, channel),
		CreatedAt:   time.Now(),
	}

	err := s.ledger.PostTransfer(ctx, &ledger.Posting{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Amount:      amount,
		Record:      record,
	})
	if err != nil {
		s.recordFailure(ctx, record)

		if errors.Is(err, pkgerrors.ErrInsufficientFunds) {
			return nil, pkgerrors.ErrInsufficientFunds
		}
		s.logger.Error("Settlement failed", map[string]interface{}{
			"transaction_id": record.ID,
			"sender_id":      sender.ID,
			"error":          err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrSettlementFailed, err)
	}

	s.logger.Info("Transfer settled", map[string]interface{}{
		"transaction_id": record.ID,
		"sender_id":      sender.ID,
		"recipient_id":   recipient.ID,
		"amount":         amount.String(),
		"channel":        channel,
	})
	return record, nil
}

// recordFailure appends a FAILED audit record. Best effort: a write error here
// must not mask the settlement error already being returned.
func (s *Service) recordFailure(ctx context.Context, record *domain.Transaction) {
	failed := *record
	failed.ID = uuid.New()
	failed.Status = domain.TransactionStatusFailed
	failed.CreatedAt = time.Now()

	if err := s.recorder.Create(ctx, &failed); err != nil {
		s.logger.Error("Failed to record failed transaction", map[string]interface{}{
			"sender_id": record.SenderID,
			"error":     err.Error(),
		})
	}
}

func describe(recipient *domain.Account, channel domain.Channel) string {
	if channel == domain.ChannelBank {
		return "Bank transfer to " + recipient.Username
	}
	return "Payment to " + recipient.Username
}
