// Package redis backs the verification challenge store with a TTL so
// abandoned challenges expire on their own.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kaivancodes/TrustportMobileWallet/internal/verification"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
)

const challengeKeyPrefix = "challenge:"

type ChallengeStore struct {
	client *redis.Client
}

func NewChallengeStore(client *redis.Client) *ChallengeStore {
	return &ChallengeStore{client: client}
}

func (s *ChallengeStore) Put(ctx context.Context, attemptID uuid.UUID, challenge *verification.Challenge) error {
	data, err := json.Marshal(challenge)
	if err != nil {
		return errors.Wrap(err, "failed to encode challenge")
	}

	// Keep the key a little past expiry so VerifyOTP can still report
	// expired instead of not-found right at the boundary.
	ttl := time.Until(challenge.ExpiresAt) + time.Minute
	if ttl < time.Minute {
		ttl = time.Minute
	}

	err = s.client.Set(ctx, challengeKeyPrefix+attemptID.String(), data, ttl).Err()
	return errors.Wrap(err, "failed to store challenge")
}

func (s *ChallengeStore) Get(ctx context.Context, attemptID uuid.UUID) (*verification.Challenge, error) {
	data, err := s.client.Get(ctx, challengeKeyPrefix+attemptID.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.ErrChallengeNotFound
		}
		return nil, errors.Wrap(err, "failed to load challenge")
	}

	challenge := &verification.Challenge{}
	if err := json.Unmarshal(data, challenge); err != nil {
		return nil, errors.Wrap(err, "failed to decode challenge")
	}
	return challenge, nil
}

func (s *ChallengeStore) Delete(ctx context.Context, attemptID uuid.UUID) error {
	err := s.client.Del(ctx, challengeKeyPrefix+attemptID.String()).Err()
	return errors.Wrap(err, "failed to delete challenge")
}
