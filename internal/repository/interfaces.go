package repository

import (
	"compliance_checker/internal/domain"
	"context"
	"errors"
	"time"
)

// SessionRepository persists the per-client login flag.
type SessionRepository interface {
	// GetState returns SessionUnset for clients that never wrote a state.
	GetState(ctx context.Context, clientID string) (domain.SessionState, error)
	SetState(ctx context.Context, clientID string, state domain.SessionState) error
}

// CheckRepository keeps the most recent compliance report per client.
type CheckRepository interface {
	SaveLatest(ctx context.Context, report *domain.CheckReport) error
	// GetLatest returns ErrNotFound when the client has never run a check.
	GetLatest(ctx context.Context, clientID string) (*domain.CheckReport, error)
}

// ChallengeStore holds pending OTP challenges, at most one per client.
type ChallengeStore interface {
	Put(ctx context.Context, challenge *domain.OTPChallenge, ttl time.Duration) error
	Get(ctx context.Context, clientID string) (*domain.OTPChallenge, error)
	// IncrementAttempts records a failed verification and returns the new count.
	IncrementAttempts(ctx context.Context, clientID string) (int, error)
	Delete(ctx context.Context, clientID string) error
	// AllowSend reports whether another code may be sent to destination within
	// the current window, and counts the send when it may.
	AllowSend(ctx context.Context, destination string, limit int, window time.Duration) (bool, error)
}

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)
