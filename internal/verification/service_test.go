package verification

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaivancodes/TrustportMobileWallet/internal/domain"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/config"
	pkgerrors "github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/logger"
)

type fakeStore struct {
	challenges map[uuid.UUID]*Challenge
}

func newFakeStore() *fakeStore {
	return &fakeStore{challenges: make(map[uuid.UUID]*Challenge)}
}

func (s *fakeStore) Put(ctx context.Context, attemptID uuid.UUID, challenge *Challenge) error {
	copied := *challenge
	s.challenges[attemptID] = &copied
	return nil
}

func (s *fakeStore) Get(ctx context.Context, attemptID uuid.UUID) (*Challenge, error) {
	challenge, ok := s.challenges[attemptID]
	if !ok {
		return nil, pkgerrors.ErrChallengeNotFound
	}
	copied := *challenge
	return &copied, nil
}

func (s *fakeStore) Delete(ctx context.Context, attemptID uuid.UUID) error {
	delete(s.challenges, attemptID)
	return nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	cfg := config.VerificationConfig{
		PINThreshold: decimal.NewFromInt(500),
		OTPThreshold: decimal.NewFromInt(5000),
		OTPValidity:  300 * time.Second,
	}
	return NewService(store, cfg, logger.NewNop()), store
}

func TestRequiredStep(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name    string
		amount  string
		channel domain.Channel
		want    domain.StepUp
	}{
		{"wallet small amount", "100", domain.ChannelWallet, domain.StepUpNone},
		{"wallet at pin threshold", "500", domain.ChannelWallet, domain.StepUpNone},
		{"wallet above pin threshold", "500.01", domain.ChannelWallet, domain.StepUpPIN},
		{"wallet at otp threshold", "5000", domain.ChannelWallet, domain.StepUpPIN},
		{"wallet above otp threshold", "5000.01", domain.ChannelWallet, domain.StepUpOTP},
		{"qr above otp threshold", "9999", domain.ChannelQR, domain.StepUpOTP},
		{"bank small amount still otp", "1", domain.ChannelBank, domain.StepUpOTP},
		{"bank large amount otp", "100000", domain.ChannelBank, domain.StepUpOTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, svc.RequiredStep(amount, tt.channel))
		})
	}
}

func TestIssueOTP_CodeFormat(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	codePattern := regexp.MustCompile(`^[1-9][0-9]{5}$`)
	for i := 0; i < 50; i++ {
		challenge, err := svc.IssueOTP(ctx, uuid.New())
		require.NoError(t, err)
		assert.Regexp(t, codePattern, challenge.Code)
	}
}

func TestVerifyOTP_RoundTrip(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	attemptID := uuid.New()

	challenge, err := svc.IssueOTP(ctx, attemptID)
	require.NoError(t, err)

	err = svc.VerifyOTP(ctx, attemptID, challenge.Code)
	assert.NoError(t, err)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	attemptID := uuid.New()

	challenge, err := svc.IssueOTP(ctx, attemptID)
	require.NoError(t, err)

	wrong := "000000"
	if wrong == challenge.Code {
		wrong = "000001"
	}

	err = svc.VerifyOTP(ctx, attemptID, wrong)
	assert.ErrorIs(t, err, pkgerrors.ErrChallengeRejected)

	// Correct code still works after a failed try.
	err = svc.VerifyOTP(ctx, attemptID, challenge.Code)
	assert.NoError(t, err)
}

func TestVerifyOTP_Expired(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	attemptID := uuid.New()

	challenge, err := svc.IssueOTP(ctx, attemptID)
	require.NoError(t, err)

	svc.now = func() time.Time { return challenge.ExpiresAt.Add(time.Second) }

	err = svc.VerifyOTP(ctx, attemptID, challenge.Code)
	assert.ErrorIs(t, err, pkgerrors.ErrChallengeExpired)

	// Expired challenge is dropped; the next try reports not found.
	_, ok := store.challenges[attemptID]
	assert.False(t, ok)
	err = svc.VerifyOTP(ctx, attemptID, challenge.Code)
	assert.ErrorIs(t, err, pkgerrors.ErrChallengeNotFound)
}

func TestVerifyOTP_ValidJustBeforeExpiry(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	attemptID := uuid.New()

	challenge, err := svc.IssueOTP(ctx, attemptID)
	require.NoError(t, err)

	svc.now = func() time.Time { return challenge.ExpiresAt }

	err = svc.VerifyOTP(ctx, attemptID, challenge.Code)
	assert.NoError(t, err)
}

func TestVerifyOTP_ConsumedCodeRejected(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	attemptID := uuid.New()

	challenge, err := svc.IssueOTP(ctx, attemptID)
	require.NoError(t, err)

	require.NoError(t, svc.VerifyOTP(ctx, attemptID, challenge.Code))

	err = svc.VerifyOTP(ctx, attemptID, challenge.Code)
	assert.ErrorIs(t, err, pkgerrors.ErrChallengeRejected)
}

func TestIssueOTP_ReissueInvalidatesPrevious(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	attemptID := uuid.New()

	first, err := svc.IssueOTP(ctx, attemptID)
	require.NoError(t, err)

	var second *Challenge
	for i := 0; i < 20; i++ {
		second, err = svc.IssueOTP(ctx, attemptID)
		require.NoError(t, err)
		if second.Code != first.Code {
			break
		}
	}
	require.NotEqual(t, first.Code, second.Code)

	err = svc.VerifyOTP(ctx, attemptID, first.Code)
	assert.ErrorIs(t, err, pkgerrors.ErrChallengeRejected)

	err = svc.VerifyOTP(ctx, attemptID, second.Code)
	assert.NoError(t, err)
}

func TestVerifyOTP_NoChallenge(t *testing.T) {
	svc, _ := newTestService()

	err := svc.VerifyOTP(context.Background(), uuid.New(), "123456")
	assert.ErrorIs(t, err, pkgerrors.ErrChallengeNotFound)
}

func TestVerifyPIN(t *testing.T) {
	svc, _ := newTestService()

	assert.NoError(t, svc.VerifyPIN("1234"))
	assert.NoError(t, svc.VerifyPIN("0000"))

	assert.ErrorIs(t, svc.VerifyPIN("123"), pkgerrors.ErrChallengeRejected)
	assert.ErrorIs(t, svc.VerifyPIN("12345"), pkgerrors.ErrChallengeRejected)
	assert.ErrorIs(t, svc.VerifyPIN("12a4"), pkgerrors.ErrChallengeRejected)
	assert.ErrorIs(t, svc.VerifyPIN(""), pkgerrors.ErrChallengeRejected)
}

func TestCountdownSeconds(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	attemptID := uuid.New()

	challenge, err := svc.IssueOTP(ctx, attemptID)
	require.NoError(t, err)

	svc.now = func() time.Time { return challenge.IssuedAt }
	assert.Equal(t, 300, svc.CountdownSeconds(challenge))

	svc.now = func() time.Time { return challenge.IssuedAt.Add(100 * time.Second) }
	assert.Equal(t, 200, svc.CountdownSeconds(challenge))

	svc.now = func() time.Time { return challenge.ExpiresAt.Add(time.Minute) }
	assert.Equal(t, 0, svc.CountdownSeconds(challenge))
}
