package auth

import (
	"compliance_checker/internal/repository"
	"compliance_checker/pkg/crypto"
	"context"
	"errors"
	"fmt"
	"time"
)

// CodeVerifier decides whether a well-formed six-digit code logs the client in.
type CodeVerifier interface {
	Verify(ctx context.Context, clientID, code string) error
}

// DemoVerifier accepts every well-formed code, matching the original demo
// login where no real OTP is checked.
type DemoVerifier struct{}

func (DemoVerifier) Verify(ctx context.Context, clientID, code string) error {
	return nil
}

// StoredCodeVerifier compares the code with the digest of the client's
// pending challenge and locks the challenge after maxAttempts failures.
type StoredCodeVerifier struct {
	challenges  repository.ChallengeStore
	maxAttempts int
	now         func() time.Time
}

func NewStoredCodeVerifier(challenges repository.ChallengeStore, maxAttempts int) *StoredCodeVerifier {
	return &StoredCodeVerifier{
		challenges:  challenges,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

func (v *StoredCodeVerifier) Verify(ctx context.Context, clientID, code string) error {
	challenge, err := v.challenges.Get(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNoChallenge
	}
	if err != nil {
		return fmt.Errorf("load challenge: %w", err)
	}

	if challenge.Attempts >= v.maxAttempts {
		return ErrTooManyAttempts
	}
	if challenge.Expired(v.now()) {
		_ = v.challenges.Delete(ctx, clientID)
		return ErrCodeExpired
	}

	if !crypto.CheckCode(challenge.CodeDigest, code) {
		attempts, err := v.challenges.IncrementAttempts(ctx, clientID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("record attempt: %w", err)
		}
		if attempts >= v.maxAttempts {
			return ErrTooManyAttempts
		}
		return ErrInvalidCode
	}

	return nil
}
