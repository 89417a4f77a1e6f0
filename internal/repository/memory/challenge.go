// Package memory provides in-process stores used in tests and local runs
// without Redis.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kaivancodes/TrustportMobileWallet/internal/verification"
	"github.com/kaivancodes/TrustportMobileWallet/pkg/errors"
)

type ChallengeStore struct {
	mu         sync.RWMutex
	challenges map[uuid.UUID]*verification.Challenge
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		challenges: make(map[uuid.UUID]*verification.Challenge),
	}
}

func (s *ChallengeStore) Put(ctx context.Context, attemptID uuid.UUID, challenge *verification.Challenge) error {
	copied := *challenge
	s.mu.Lock()
	s.challenges[attemptID] = &copied
	s.mu.Unlock()
	return nil
}

func (s *ChallengeStore) Get(ctx context.Context, attemptID uuid.UUID) (*verification.Challenge, error) {
	s.mu.RLock()
	challenge, ok := s.challenges[attemptID]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.ErrChallengeNotFound
	}
	copied := *challenge
	return &copied, nil
}

func (s *ChallengeStore) Delete(ctx context.Context, attemptID uuid.UUID) error {
	s.mu.Lock()
	delete(s.challenges, attemptID)
	s.mu.Unlock()
	return nil
}
