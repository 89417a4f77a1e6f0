// Package verification implements the tiered step-up gate: deciding whether a
// transfer needs no verification, a PIN, or a one-time passcode, and managing
// the OTP lifecycle.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaivancodes/TrustportMobileWallet/internal/domain"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/config"
	pkgerrors "github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/logger"
)

// Challenge is a PIN or OTP verification instance scoped to one transfer
// attempt. A challenge is single use: once verified or expired it cannot be
// replayed.
type Challenge struct {
	Kind      domain.StepUp `json:"kind"`
	Code      string        `json:"code"`
	IssuedAt  time.Time     `json:"issued_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	Consumed  bool          `json:"consumed"`
}

// ChallengeStore keeps at most one active challenge per transfer attempt.
type ChallengeStore interface {
	Put(ctx context.Context, attemptID uuid.UUID, challenge *Challenge) error
	Get(ctx context.Context, attemptID uuid.UUID) (*Challenge, error)
	Delete(ctx context.Context, attemptID uuid.UUID) error
}

type Service struct {
	store        ChallengeStore
	logger       logger.Logger
	pinThreshold decimal.Decimal
	otpThreshold decimal.Decimal
	validity     time.Duration

	// now is swappable so expiry can be tested without sleeping.
	now func() time.Time
}

func NewService(store ChallengeStore, cfg config.VerificationConfig, log logger.Logger) *Service {
	return &Service{
		store:        store,
		logger:       log,
		pinThreshold: cfg.PINThreshold,
		otpThreshold: cfg.OTPThreshold,
		validity:     cfg.OTPValidity,
		now:          time.Now,
	}
}

// RequiredStep decides the step-up tier for a transfer. Bank transfers always
// require an OTP. On wallet and QR the OTP threshold takes precedence over
// the PIN threshold, so a high-value transfer never downgrades to PIN.
func (s *Service) RequiredStep(amount decimal.Decimal, channel domain.Channel) domain.StepUp {
	if channel == domain.ChannelBank {
		return domain.StepUpOTP
	}
	if amount.GreaterThan(s.otpThreshold) {
		return domain.StepUpOTP
	}
	if amount.GreaterThan(s.pinThreshold) {
		return domain.StepUpPIN
	}
	return domain.StepUpNone
}

// IssueOTP generates a fresh 6-digit code for the attempt and stores it with
// a validity window. Any previously issued code for the attempt is
// invalidated by the replacement.
func (s *Service) IssueOTP(ctx context.Context, attemptID uuid.UUID) (*Challenge, error) {
	code, err := generateCode()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to generate verification code")
	}

	issuedAt := s.now()
	challenge := &Challenge{
		Kind:      domain.StepUpOTP,
		Code:      code,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.validity),
	}

	if err := s.store.Put(ctx, attemptID, challenge); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to store verification challenge")
	}

	s.logger.Info("OTP issued", map[string]interface{}{
		"attempt_id": attemptID,
		"expires_at": challenge.ExpiresAt,
	})

	return challenge, nil
}

// VerifyOTP checks the submitted code against the attempt's active challenge.
// Expiry is checked here against the wall clock, never trusted from a UI
// countdown. A successful verification consumes the challenge.
func (s *Service) VerifyOTP(ctx context.Context, attemptID uuid.UUID, submitted string) error {
	challenge, err := s.store.Get(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrChallengeNotFound) {
			return pkgerrors.ErrChallengeNotFound
		}
		return pkgerrors.Wrap(err, "failed to load verification challenge")
	}

	if challenge.Consumed {
		return pkgerrors.ErrChallengeRejected
	}

	if s.now().After(challenge.ExpiresAt) {
		_ = s.store.Delete(ctx, attemptID)
		return pkgerrors.ErrChallengeExpired
	}

	if submitted != challenge.Code {
		return pkgerrors.ErrChallengeRejected
	}

	challenge.Consumed = true
	if err := s.store.Put(ctx, attemptID, challenge); err != nil {
		return pkgerrors.Wrap(err, "failed to consume verification challenge")
	}
	return nil
}

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// VerifyPIN accepts any syntactically valid 4-digit PIN. There is no
// server-held secret; this is a documented demo-mode gate, not real
// authentication.
func (s *Service) VerifyPIN(submitted string) error {
	if !pinPattern.MatchString(submitted) {
		return pkgerrors.ErrChallengeRejected
	}
	return nil
}

// CountdownSeconds reports the remaining validity of a challenge for UI
// display. The authoritative expiry check happens in VerifyOTP.
func (s *Service) CountdownSeconds(challenge *Challenge) int {
	remaining := challenge.ExpiresAt.Sub(s.now())
	if remaining < 0 {
		return 0
	}
	return int(remaining / time.Second)
}

// Clear drops the active challenge for an attempt, if any.
func (s *Service) Clear(ctx context.Context, attemptID uuid.UUID) error {
	return s.store.Delete(ctx, attemptID)
}

// generateCode returns a uniform-random numeric string in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return big.NewInt(0).Add(n, big.NewInt(100000)).String(), nil
}
