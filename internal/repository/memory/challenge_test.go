package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaivancodes/TrustportMobileWallet/internal/domain"
	"github.com/kaivancodes/TrustportMobileWallet/internal/verification"
	pkgerrors "github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
)

func TestChallengeStore_RoundTrip(t *testing.T) {
	store := NewChallengeStore()
	ctx := context.Background()
	attemptID := uuid.New()

	challenge := &verification.Challenge{
		Kind:      domain.StepUpOTP,
		Code:      "482915",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}

	require.NoError(t, store.Put(ctx, attemptID, challenge))

	got, err := store.Get(ctx, attemptID)
	require.NoError(t, err)
	assert.Equal(t, challenge.Code, got.Code)

	// The store hands out copies; mutating one does not affect the stored value.
	got.Consumed = true
	again, err := store.Get(ctx, attemptID)
	require.NoError(t, err)
	assert.False(t, again.Consumed)

	require.NoError(t, store.Delete(ctx, attemptID))
	_, err = store.Get(ctx, attemptID)
	assert.ErrorIs(t, err, pkgerrors.ErrChallengeNotFound)
}

func TestChallengeStore_GetMissing(t *testing.T) {
	store := NewChallengeStore()

	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, pkgerrors.ErrChallengeNotFound)
}
