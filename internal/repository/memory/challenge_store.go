package memory

import (
	"compliance_checker/internal/domain"
	"compliance_checker/internal/repository"
	"context"
	"fmt"
	"sync"
	"time"
)

type storedChallenge struct {
	challenge domain.OTPChallenge
	expiresAt time.Time
}

type sendWindow struct {
	count   int
	resetAt time.Time
}

// ChallengeStore keeps OTP challenges in process memory. Expired entries are
// dropped lazily on access.
type ChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]storedChallenge
	sends      map[string]sendWindow
	now        func() time.Time
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		challenges: make(map[string]storedChallenge),
		sends:      make(map[string]sendWindow),
		now:        time.Now,
	}
}

func (s *ChallengeStore) Put(ctx context.Context, challenge *domain.OTPChallenge, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[challenge.ClientID] = storedChallenge{
		challenge: *challenge,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *ChallengeStore) Get(ctx context.Context, clientID string) (*domain.OTPChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.lookup(clientID)
	if err != nil {
		return nil, err
	}
	c := entry.challenge
	return &c, nil
}

func (s *ChallengeStore) IncrementAttempts(ctx context.Context, clientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.lookup(clientID)
	if err != nil {
		return 0, err
	}
	entry.challenge.Attempts++
	s.challenges[clientID] = entry
	return entry.challenge.Attempts, nil
}

func (s *ChallengeStore) Delete(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.challenges, clientID)
	return nil
}

func (s *ChallengeStore) AllowSend(ctx context.Context, destination string, limit int, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, exists := s.sends[destination]
	if !exists || !now.Before(w.resetAt) {
		w = sendWindow{resetAt: now.Add(window)}
	}
	if w.count >= limit {
		s.sends[destination] = w
		return false, nil
	}
	w.count++
	s.sends[destination] = w

	return true, nil
}

func (s *ChallengeStore) lookup(clientID string) (storedChallenge, error) {
	entry, exists := s.challenges[clientID]
	if !exists {
		return storedChallenge{}, fmt.Errorf("%w: challenge for client %s", repository.ErrNotFound, clientID)
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.challenges, clientID)
		return storedChallenge{}, fmt.Errorf("%w: challenge for client %s expired", repository.ErrNotFound, clientID)
	}
	return entry, nil
}
