package auth

import (
	"compliance_checker/internal/domain"
	"compliance_checker/internal/repository/memory"
	"compliance_checker/pkg/validator"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedCode struct {
	method      domain.ContactMethod
	destination string
	code        string
}

type captureNotifier struct {
	mu    sync.Mutex
	codes []capturedCode
}

func (n *captureNotifier) SendOTP(ctx context.Context, method domain.ContactMethod, destination, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codes = append(n.codes, capturedCode{method, destination, code})
	return nil
}

func (n *captureNotifier) last(t *testing.T) capturedCode {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.codes)
	return n.codes[len(n.codes)-1]
}

type fixture struct {
	svc        *OTPService
	sessions   *memory.SessionRepository
	challenges *memory.ChallengeStore
	notifier   *captureNotifier
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()
	sessions := memory.NewSessionRepository()
	challenges := memory.NewChallengeStore()
	notifier := &captureNotifier{}

	var verifier CodeVerifier = DemoVerifier{}
	if strict {
		verifier = NewStoredCodeVerifier(challenges, 3)
	}

	svc := NewOTPService(sessions, challenges, verifier, notifier, nil, Options{
		CodeTTL:    5 * time.Minute,
		SendLimit:  3,
		SendWindow: time.Hour,
	}, nil)

	return &fixture{svc: svc, sessions: sessions, challenges: challenges, notifier: notifier}
}

func TestOTPService_DemoLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	sent, err := f.svc.SendOTP(ctx, "client1", domain.ContactEmail, " owner@example.in ")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.in", sent.Destination)
	assert.Equal(t, "owner@example.in", f.notifier.last(t).destination)

	// Any well-formed code is accepted in demo mode.
	require.NoError(t, f.svc.VerifyOTP(ctx, "client1", "000000"))

	state, err := f.svc.Status(ctx, "client1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionLoggedIn, state)
}

func TestOTPService_IncompleteCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "client1", code), ErrIncompleteCode, code)
	}

	state, _ := f.svc.Status(ctx, "client1")
	assert.Equal(t, domain.SessionUnset, state)
}

func TestOTPService_InvalidContact(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	_, err := f.svc.SendOTP(ctx, "client1", domain.ContactEmail, "user@mailinator.com")
	assert.ErrorIs(t, err, validator.ErrDisposableEmail)

	_, err = f.svc.SendOTP(ctx, "client1", domain.ContactPhone, "12345")
	assert.ErrorIs(t, err, validator.ErrInvalidPhone)

	_, err = f.svc.SendOTP(ctx, "client1", "carrier-pigeon", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidContact)
}

func TestOTPService_StrictLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)

	_, err := f.svc.SendOTP(ctx, "client1", domain.ContactPhone, "9876543210")
	require.NoError(t, err)
	code := f.notifier.last(t).code

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "client1", wrong), ErrInvalidCode)

	require.NoError(t, f.svc.VerifyOTP(ctx, "client1", code))
	state, _ := f.svc.Status(ctx, "client1")
	assert.Equal(t, domain.SessionLoggedIn, state)

	// The challenge is consumed.
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "client1", code), ErrNoChallenge)
}

func TestOTPService_StrictLockout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)

	_, err := f.svc.SendOTP(ctx, "client1", domain.ContactEmail, "owner@example.in")
	require.NoError(t, err)
	code := f.notifier.last(t).code

	wrong := "999999"
	if code == wrong {
		wrong = "888888"
	}
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "client1", wrong), ErrInvalidCode)
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "client1", wrong), ErrInvalidCode)
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "client1", wrong), ErrTooManyAttempts)
	assert.ErrorIs(t, f.svc.VerifyOTP(ctx, "client1", code), ErrTooManyAttempts)

	// Resending issues a fresh challenge with a clean attempt counter.
	_, err = f.svc.ResendOTP(ctx, "client1")
	require.NoError(t, err)
	fresh := f.notifier.last(t)
	assert.Equal(t, "owner@example.in", fresh.destination)
	require.NoError(t, f.svc.VerifyOTP(ctx, "client1", fresh.code))
}

func TestOTPService_ResendWithoutChallenge(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.ResendOTP(context.Background(), "client1")
	assert.ErrorIs(t, err, ErrNoChallenge)
}

func TestOTPService_SendRateLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	for i := 0; i < 3; i++ {
		_, err := f.svc.SendOTP(ctx, "client1", domain.ContactPhone, "9876543210")
		require.NoError(t, err)
	}
	_, err := f.svc.SendOTP(ctx, "client2", domain.ContactPhone, "9876543210")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestOTPService_SkipAndLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	require.NoError(t, f.svc.Skip(ctx, "client1"))
	require.NoError(t, f.svc.Skip(ctx, "client1"))
	state, _ := f.svc.Status(ctx, "client1")
	assert.Equal(t, domain.SessionSkipped, state)

	require.NoError(t, f.svc.Logout(ctx, "client1"))
	state, _ = f.svc.Status(ctx, "client1")
	assert.Equal(t, domain.SessionUnset, state)

	_, err := f.svc.SendOTP(ctx, "client1", domain.ContactEmail, "owner@example.in")
	require.NoError(t, err)
	require.NoError(t, f.svc.VerifyOTP(ctx, "client1", "123456"))
	assert.ErrorIs(t, f.svc.Skip(ctx, "client1"), ErrAlreadyLoggedIn)

	require.NoError(t, f.svc.Logout(ctx, "client1"))
	state, _ = f.svc.Status(ctx, "client1")
	assert.Equal(t, domain.SessionUnset, state)
}

func TestOTPService_DelayHonorsContext(t *testing.T) {
	sessions := memory.NewSessionRepository()
	svc := NewOTPService(sessions, memory.NewChallengeStore(), nil, &captureNotifier{}, nil,
		Options{CodeTTL: time.Minute, SendLimit: 1, SendWindow: time.Minute, VerifyDelay: time.Hour}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := svc.VerifyOTP(ctx, "client1", "123456")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	state, _ := sessions.GetState(context.Background(), "client1")
	assert.Equal(t, domain.SessionUnset, state)
}

func TestStoredCodeVerifier_Expired(t *testing.T) {
	ctx := context.Background()
	store := memory.NewChallengeStore()
	v := NewStoredCodeVerifier(store, 3)
	issued := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return issued.Add(10 * time.Minute) }

	require.NoError(t, store.Put(ctx, &domain.OTPChallenge{
		ClientID:  "client1",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(5 * time.Minute),
	}, time.Hour))

	assert.ErrorIs(t, v.Verify(ctx, "client1", "123456"), ErrCodeExpired)
	assert.ErrorIs(t, v.Verify(ctx, "client1", "123456"), ErrNoChallenge)
}

func TestOTPService_ExpiredCodeReported(t *testing.T) {
	ctx := context.Background()
	challenges := memory.NewChallengeStore()
	notifier := &captureNotifier{}
	svc := NewOTPService(memory.NewSessionRepository(), challenges, NewStoredCodeVerifier(challenges, 3), notifier, nil,
		Options{CodeTTL: 20 * time.Millisecond, SendLimit: 3, SendWindow: time.Hour}, nil)

	_, err := svc.SendOTP(ctx, "client1", domain.ContactEmail, "user@example.com")
	require.NoError(t, err)
	code := notifier.last(t).code

	time.Sleep(50 * time.Millisecond)

	assert.ErrorIs(t, svc.VerifyOTP(ctx, "client1", code), ErrCodeExpired)
	assert.ErrorIs(t, svc.VerifyOTP(ctx, "client1", code), ErrNoChallenge)

	state, _ := svc.Status(ctx, "client1")
	assert.Equal(t, domain.SessionUnset, state)
}
