// Package transfer orchestrates the send-money flow: recipient resolution,
// amount checks, tiered step-up verification and final settlement.
package transfer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaivancodes/TrustportMobileWallet/internal/domain"
	"github.com/kaivancodes/TrustportMobileWallet/internal/notification"
	"github.com/kaivancodes/TrustportMobileWallet/internal/settlement"
	"github.com/kaivancodes/TrustportMobileWallet/internal/verification"
	pkgerrors "github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/logger"
)

// Directory resolves recipient tokens to accounts.
type Directory interface {
	Resolve(ctx context.Context, token string, channel domain.Channel) (*domain.Account, error)
}

// Accounts loads the sender account.
type Accounts interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

// Verifier decides the step-up tier and manages challenges.
type Verifier interface {
	RequiredStep(amount decimal.Decimal, channel domain.Channel) domain.StepUp
	IssueOTP(ctx context.Context, attemptID uuid.UUID) (*verification.Challenge, error)
	VerifyOTP(ctx context.Context, attemptID uuid.UUID, submitted string) error
	VerifyPIN(submitted string) error
	CountdownSeconds(challenge *verification.Challenge) int
	Clear(ctx context.Context, attemptID uuid.UUID) error
}

// Settler executes the verified transfer.
type Settler interface {
	Execute(ctx context.Context, sender, recipient *domain.Account, amount decimal.Decimal, channel domain.Channel) (*domain.Transaction, error)
}

// Attempt is one in-flight transfer. Attempts live in memory for the duration
// of the flow; nothing is persisted until the settlement decision.
type Attempt struct {
	ID        uuid.UUID
	SenderID  uuid.UUID
	Recipient *domain.Account
	Amount    decimal.Decimal
	Channel   domain.Channel
	State     domain.AttemptState
	StepUp    domain.StepUp
	Contact   string
	CreatedAt time.Time
}

// SendRequest starts a transfer. Contact overrides the sender's stored phone
// number as the OTP destination and is required for bank transfers.
type SendRequest struct {
	Recipient string          `json:"recipient" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Channel   domain.Channel  `json:"channel" validate:"required,channel"`
	Contact   string          `json:"contact,omitempty" validate:"omitempty,phone"`
}

// Outcome reports the flow position after each operation. When verification is
// still pending, Transaction is nil and StepUp names what the caller must
// submit next. FallbackCode is populated only when OTP delivery failed and the
// code must be shown on screen.
type Outcome struct {
	AttemptID        uuid.UUID             `json:"attempt_id"`
	State            domain.AttemptState   `json:"state"`
	StepUp           domain.StepUp         `json:"step_up"`
	Delivery         domain.DeliveryStatus `json:"delivery,omitempty"`
	FallbackCode     string                `json:"fallback_code,omitempty"`
	CountdownSeconds int                   `json:"countdown_seconds,omitempty"`
	Transaction      *domain.Transaction   `json:"transaction,omitempty"`
}

type Service struct {
	directory Directory
	accounts  Accounts
	verifier  Verifier
	notifier  notification.Service
	settler   Settler
	logger    logger.Logger

	mu       sync.RWMutex
	attempts map[uuid.UUID]*Attempt
}

func NewService(directory Directory, accounts Accounts, verifier Verifier, notifier notification.Service, settler Settler, log logger.Logger) *Service {
	return &Service{
		directory: directory,
		accounts:  accounts,
		verifier:  verifier,
		notifier:  notifier,
		settler:   settler,
		logger:    log,
		attempts:  make(map[uuid.UUID]*Attempt),
	}
}

// SendMoney starts a transfer. Depending on amount and channel it either
// settles immediately or parks the attempt awaiting a PIN or OTP.
func (s *Service) SendMoney(ctx context.Context, senderID uuid.UUID, req SendRequest) (*Outcome, error) {
	if !req.Channel.Valid() {
		return nil, pkgerrors.ErrInvalidChannel
	}
	if err := settlement.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}

	sender, err := s.accounts.FindByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	recipient, err := s.directory.Resolve(ctx, req.Recipient, req.Channel)
	if err != nil {
		return nil, err
	}
	if recipient.ID == sender.ID {
		return nil, pkgerrors.ErrSelfTransferNotAllowed
	}

	// Early balance check so the user is not walked through verification
	// for a transfer that cannot settle. The ledger re-checks under lock.
	if req.Amount.GreaterThan(sender.Balance) {
		return nil, pkgerrors.ErrInsufficientFunds
	}

	step := s.verifier.RequiredStep(req.Amount, req.Channel)

	attempt := &Attempt{
		ID:        uuid.New(),
		SenderID:  sender.ID,
		Recipient: recipient,
		Amount:    req.Amount,
		Channel:   req.Channel,
		StepUp:    step,
		CreatedAt: time.Now(),
	}

	switch step {
	case domain.StepUpNone:
		attempt.State = domain.AttemptSettling
		s.register(attempt)
		return s.settle(ctx, attempt)

	case domain.StepUpPIN:
		attempt.State = domain.AttemptAwaitingPIN
		s.register(attempt)
		return &Outcome{
			AttemptID: attempt.ID,
			State:     attempt.State,
			StepUp:    domain.StepUpPIN,
		}, nil

	case domain.StepUpOTP:
		destination, err := otpDestination(sender, req)
		if err != nil {
			return nil, err
		}
		attempt.State = domain.AttemptAwaitingOTP
		attempt.Contact = destination
		s.register(attempt)
		return s.issueAndDeliver(ctx, attempt)
	}

	return nil, pkgerrors.ErrSettlementFailed
}

// ConfirmPIN completes a PIN-gated transfer.
func (s *Service) ConfirmPIN(ctx context.Context, senderID, attemptID uuid.UUID, pin string) (*Outcome, error) {
	attempt, err := s.claim(senderID, attemptID, domain.AttemptAwaitingPIN)
	if err != nil {
		return nil, err
	}

	if err := s.verifier.VerifyPIN(pin); err != nil {
		s.park(attempt, domain.AttemptAwaitingPIN)
		return nil, err
	}

	return s.settle(ctx, attempt)
}

// ConfirmOTP completes an OTP-gated transfer. An expired or wrong code leaves
// the attempt waiting so the user can resend or retry.
func (s *Service) ConfirmOTP(ctx context.Context, senderID, attemptID uuid.UUID, code string) (*Outcome, error) {
	attempt, err := s.claim(senderID, attemptID, domain.AttemptAwaitingOTP)
	if err != nil {
		return nil, err
	}

	if err := s.verifier.VerifyOTP(ctx, attempt.ID, code); err != nil {
		s.park(attempt, domain.AttemptAwaitingOTP)
		return nil, err
	}

	return s.settle(ctx, attempt)
}

// ResendOTP issues a fresh code for an attempt awaiting OTP. The previous code
// is invalidated by the replacement.
func (s *Service) ResendOTP(ctx context.Context, senderID, attemptID uuid.UUID) (*Outcome, error) {
	attempt, err := s.lookup(senderID, attemptID, domain.AttemptAwaitingOTP)
	if err != nil {
		return nil, err
	}

	return s.issueAndDeliver(ctx, attempt)
}

// Cancel abandons an attempt awaiting verification. Nothing is recorded: only
// settled and failed settlements appear in history, not abandoned flows.
func (s *Service) Cancel(ctx context.Context, senderID, attemptID uuid.UUID) error {
	s.mu.Lock()
	attempt, ok := s.attempts[attemptID]
	if !ok || attempt.SenderID != senderID {
		s.mu.Unlock()
		return pkgerrors.ErrAttemptNotFound
	}
	if attempt.State == domain.AttemptSettling {
		s.mu.Unlock()
		return pkgerrors.ErrAttemptNotWaiting
	}
	delete(s.attempts, attemptID)
	s.mu.Unlock()

	_ = s.verifier.Clear(ctx, attemptID)

	s.logger.Info("Transfer attempt cancelled", map[string]interface{}{
		"attempt_id": attemptID,
		"sender_id":  senderID,
	})
	return nil
}

func (s *Service) register(attempt *Attempt) {
	s.mu.Lock()
	s.attempts[attempt.ID] = attempt
	s.mu.Unlock()
}

// claim moves an attempt from its waiting state to SETTLING. The state check
// and the transition happen under one lock so concurrent confirmations of the
// same attempt cannot both pass; the loser gets ErrAttemptNotWaiting.
func (s *Service) claim(senderID, attemptID uuid.UUID, from domain.AttemptState) (*Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Attempts are scoped to their sender; another user's id behaves as
	// if the attempt does not exist.
	attempt, ok := s.attempts[attemptID]
	if !ok || attempt.SenderID != senderID {
		return nil, pkgerrors.ErrAttemptNotFound
	}
	if attempt.State != from {
		return nil, pkgerrors.ErrAttemptNotWaiting
	}

	attempt.State = domain.AttemptSettling
	return attempt, nil
}

// park returns a claimed attempt to its waiting state after a failed
// verification so the user can retry or resend.
func (s *Service) park(attempt *Attempt, state domain.AttemptState) {
	s.mu.Lock()
	attempt.State = state
	s.mu.Unlock()
}

// finish records the terminal state and discards the attempt. Attempts are
// session state; once settled or failed only the transaction record remains,
// and any later confirmation sees ErrAttemptNotFound.
func (s *Service) finish(attempt *Attempt, state domain.AttemptState) {
	s.mu.Lock()
	attempt.State = state
	delete(s.attempts, attempt.ID)
	s.mu.Unlock()
}

func (s *Service) lookup(senderID, attemptID uuid.UUID, want domain.AttemptState) (*Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attempt, ok := s.attempts[attemptID]
	if !ok || attempt.SenderID != senderID {
		return nil, pkgerrors.ErrAttemptNotFound
	}
	if attempt.State != want {
		return nil, pkgerrors.ErrAttemptNotWaiting
	}
	return attempt, nil
}

// otpDestination picks where the code goes. Bank transfers must supply a
// contact explicitly; wallet and QR fall back to the sender's stored phone.
func otpDestination(sender *domain.Account, req SendRequest) (string, error) {
	contact := strings.TrimSpace(req.Contact)
	if req.Channel == domain.ChannelBank {
		if contact == "" {
			return "", pkgerrors.ErrContactRequired
		}
		return contact, nil
	}
	if contact != "" {
		return contact, nil
	}
	if sender.PhoneNumber == nil || strings.TrimSpace(*sender.PhoneNumber) == "" {
		return "", pkgerrors.ErrContactRequired
	}
	return *sender.PhoneNumber, nil
}

// issueAndDeliver generates a code and sends it. Delivery happens outside any
// lock; a failed send degrades to returning the code for on-screen display.
func (s *Service) issueAndDeliver(ctx context.Context, attempt *Attempt) (*Outcome, error) {
	challenge, err := s.verifier.IssueOTP(ctx, attempt.ID)
	if err != nil {
		return nil, err
	}

	delivery := s.notifier.SendOTP(ctx, attempt.Contact, challenge.Code)

	outcome := &Outcome{
		AttemptID:        attempt.ID,
		State:            domain.AttemptAwaitingOTP,
		StepUp:           domain.StepUpOTP,
		Delivery:         delivery,
		CountdownSeconds: s.verifier.CountdownSeconds(challenge),
	}
	if delivery == domain.DeliveryFailed {
		outcome.FallbackCode = challenge.Code
	}
	return outcome, nil
}

// settle runs the settlement and finalizes the attempt. Both outcomes are
// terminal: the attempt is discarded and only the settler's record survives.
func (s *Service) settle(ctx context.Context, attempt *Attempt) (*Outcome, error) {
	sender, err := s.accounts.FindByID(ctx, attempt.SenderID)
	if err != nil {
		s.finish(attempt, domain.AttemptFailed)
		_ = s.verifier.Clear(ctx, attempt.ID)
		return nil, err
	}

	record, err := s.settler.Execute(ctx, sender, attempt.Recipient, attempt.Amount, attempt.Channel)
	if err != nil {
		s.finish(attempt, domain.AttemptFailed)
		_ = s.verifier.Clear(ctx, attempt.ID)
		return nil, err
	}

	s.finish(attempt, domain.AttemptCompleted)
	_ = s.verifier.Clear(ctx, attempt.ID)

	s.logger.Info("Transfer completed", map[string]interface{}{
		"attempt_id":     attempt.ID,
		"transaction_id": record.ID,
	})

	return &Outcome{
		AttemptID:   attempt.ID,
		State:       domain.AttemptCompleted,
		StepUp:      attempt.StepUp,
		Transaction: record,
	}, nil
}
