// Package auth implements the optional OTP login that gates the dashboard.
// The compliance matcher never reads any of this state.
package auth

import (
	"compliance_checker/internal/domain"
	"compliance_checker/internal/repository"
	"compliance_checker/pkg/crypto"
	"compliance_checker/pkg/validator"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"
)

var (
	ErrIncompleteCode  = errors.New("Please enter the complete 6-digit OTP")
	ErrInvalidCode     = errors.New("Invalid OTP. Please try again")
	ErrCodeExpired     = errors.New("OTP has expired. Please request a new one")
	ErrTooManyAttempts = errors.New("Too many incorrect attempts. Please request a new OTP")
	ErrNoChallenge     = errors.New("No OTP has been sent. Please request a new one")
	ErrRateLimited     = errors.New("Too many OTP requests. Please try again later")
	ErrAlreadyLoggedIn = errors.New("already logged in")
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// Challenges outlive their code by this long so that a late verify reports
// ErrCodeExpired instead of ErrNoChallenge.
const expiredChallengeGrace = 10 * time.Minute

// Notifier delivers a code to the destination.
type Notifier interface {
	SendOTP(ctx context.Context, method domain.ContactMethod, destination, code string) error
}

type MetricsRecorder interface {
	RecordOTPSent(method domain.ContactMethod, outcome string)
	RecordOTPVerification(outcome string)
	RecordSessionTransition(state domain.SessionState)
}

type noopRecorder struct{}

func (noopRecorder) RecordOTPSent(domain.ContactMethod, string) {}
func (noopRecorder) RecordOTPVerification(string) {}
func (noopRecorder) RecordSessionTransition(domain.SessionState) {}

type Options struct {
	CodeTTL     time.Duration
	SendLimit   int
	SendWindow  time.Duration
	SendDelay   time.Duration
	VerifyDelay time.Duration
	ResendDelay time.Duration
}

// OTPSent describes a code that was issued, without the code itself.
type OTPSent struct {
	Method      domain.ContactMethod `json:"method"`
	Destination string               `json:"destination"`
	ExpiresAt   time.Time            `json:"expires_at"`
}

type OTPService struct {
	sessions   repository.SessionRepository
	challenges repository.ChallengeStore
	verifier   CodeVerifier
	notifier   Notifier
	contacts   *validator.ContactValidator
	metrics    MetricsRecorder
	opts       Options
	now        func() time.Time
	logger     *slog.Logger
}

func NewOTPService(
	sessions repository.SessionRepository,
	challenges repository.ChallengeStore,
	verifier CodeVerifier,
	notifier Notifier,
	metrics MetricsRecorder,
	opts Options,
	logger *slog.Logger,
) *OTPService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	if verifier == nil {
		verifier = DemoVerifier{}
	}

	return &OTPService{
		sessions:   sessions,
		challenges: challenges,
		verifier:   verifier,
		notifier:   notifier,
		contacts:   validator.NewContactValidator(),
		metrics:    metrics,
		opts:       opts,
		now:        time.Now,
		logger:     logger,
	}
}

// SendOTP validates the destination, issues a fresh code and queues it for
// delivery. Any earlier pending code for the client is replaced.
func (s *OTPService) SendOTP(ctx context.Context, clientID string, method domain.ContactMethod, destination string) (*OTPSent, error) {
	if _, err := domain.ParseContactMethod(string(method)); err != nil {
		return nil, err
	}
	normalized, err := s.contacts.Normalize(method, destination)
	if err != nil {
		return nil, err
	}

	if err := sleep(ctx, s.opts.SendDelay); err != nil {
		return nil, err
	}
	return s.issue(ctx, clientID, method, normalized)
}

// ResendOTP issues a new code to the destination of the pending challenge.
func (s *OTPService) ResendOTP(ctx context.Context, clientID string) (*OTPSent, error) {
	pending, err := s.challenges.Get(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoChallenge
	}
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}

	if err := sleep(ctx, s.opts.ResendDelay); err != nil {
		return nil, err
	}
	return s.issue(ctx, clientID, pending.Method, pending.Destination)
}

func (s *OTPService) issue(ctx context.Context, clientID string, method domain.ContactMethod, destination string) (*OTPSent, error) {
	allowed, err := s.challenges.AllowSend(ctx, destination, s.opts.SendLimit, s.opts.SendWindow)
	if err != nil {
		s.metrics.RecordOTPSent(method, "failed")
		return nil, fmt.Errorf("check send limit: %w", err)
	}
	if !allowed {
		s.metrics.RecordOTPSent(method, "rate_limited")
		s.logger.WarnContext(ctx, "OTP send rate limited",
			slog.String("client_id", clientID),
			slog.String("method", string(method)))
		return nil, ErrRateLimited
	}

	code, err := crypto.GenerateCode()
	if err != nil {
		return nil, err
	}
	digest, err := crypto.HashCode(code)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	challenge := &domain.OTPChallenge{
		ClientID:    clientID,
		Method:      method,
		Destination: destination,
		CodeDigest:  digest,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.opts.CodeTTL),
	}
	if err := s.challenges.Put(ctx, challenge, s.opts.CodeTTL+expiredChallengeGrace); err != nil {
		s.metrics.RecordOTPSent(method, "failed")
		return nil, fmt.Errorf("store challenge: %w", err)
	}

	if err := s.notifier.SendOTP(ctx, method, destination, code); err != nil {
		s.metrics.RecordOTPSent(method, "failed")
		return nil, fmt.Errorf("deliver code: %w", err)
	}

	s.metrics.RecordOTPSent(method, "sent")
	s.logger.InfoContext(ctx, "OTP issued",
		slog.String("client_id", clientID),
		slog.String("method", string(method)),
		slog.Time("expires_at", challenge.ExpiresAt))

	return &OTPSent{Method: method, Destination: destination, ExpiresAt: challenge.ExpiresAt}, nil
}

// VerifyOTP checks the code and marks the client logged in on success.
func (s *OTPService) VerifyOTP(ctx context.Context, clientID, code string) error {
	if !codePattern.MatchString(code) {
		s.metrics.RecordOTPVerification("incomplete")
		return ErrIncompleteCode
	}

	if err := sleep(ctx, s.opts.VerifyDelay); err != nil {
		return err
	}

	if err := s.verifier.Verify(ctx, clientID, code); err != nil {
		s.metrics.RecordOTPVerification(verificationOutcome(err))
		s.logger.InfoContext(ctx, "OTP verification failed",
			slog.String("client_id", clientID),
			slog.String("error", err.Error()))
		return err
	}

	if err := s.challenges.Delete(ctx, clientID); err != nil {
		return fmt.Errorf("clear challenge: %w", err)
	}
	if err := s.transition(ctx, clientID, domain.SessionLoggedIn); err != nil {
		return err
	}

	s.metrics.RecordOTPVerification("success")
	return nil
}

// Skip lets a client use the dashboard without logging in. A logged-in
// client cannot downgrade to skipped; it has to log out first.
func (s *OTPService) Skip(ctx context.Context, clientID string) error {
	state, err := s.Status(ctx, clientID)
	if err != nil {
		return err
	}
	switch state {
	case domain.SessionLoggedIn:
		return ErrAlreadyLoggedIn
	case domain.SessionSkipped:
		return nil
	}
	return s.transition(ctx, clientID, domain.SessionSkipped)
}

// Logout returns the client to the login screen and drops any pending code.
func (s *OTPService) Logout(ctx context.Context, clientID string) error {
	if err := s.challenges.Delete(ctx, clientID); err != nil {
		return fmt.Errorf("clear challenge: %w", err)
	}
	return s.transition(ctx, clientID, domain.SessionUnset)
}

func (s *OTPService) Status(ctx context.Context, clientID string) (domain.SessionState, error) {
	state, err := s.sessions.GetState(ctx, clientID)
	if err != nil {
		return "", fmt.Errorf("get session state: %w", err)
	}
	return state, nil
}

func (s *OTPService) transition(ctx context.Context, clientID string, state domain.SessionState) error {
	if err := s.sessions.SetState(ctx, clientID, state); err != nil {
		return fmt.Errorf("set session state: %w", err)
	}
	s.metrics.RecordSessionTransition(state)
	s.logger.InfoContext(ctx, "Session state changed",
		slog.String("client_id", clientID),
		slog.String("state", string(state)))
	return nil
}

func verificationOutcome(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCode):
		return "invalid"
	case errors.Is(err, ErrCodeExpired):
		return "expired"
	case errors.Is(err, ErrTooManyAttempts):
		return "locked"
	case errors.Is(err, ErrNoChallenge):
		return "no_challenge"
	default:
		return "error"
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
