package domain

import (
	"fmt"
	"time"
)

type SessionState string

const (
	SessionUnset    SessionState = "unset"
	SessionLoggedIn SessionState = "logged-in"
	SessionSkipped  SessionState = "skipped"
)

func ParseSessionState(s string) (SessionState, error) {
	switch st := SessionState(s); st {
	case SessionUnset, SessionLoggedIn, SessionSkipped:
		return st, nil
	case "":
		return SessionUnset, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionState, s)
	}
}

// Authenticated reports whether the client may use the dashboard, either by
// logging in or by skipping the login screen.
func (s SessionState) Authenticated() bool {
	return s == SessionLoggedIn || s == SessionSkipped
}

type ContactMethod string

const (
	ContactEmail ContactMethod = "email"
	ContactPhone ContactMethod = "phone"
)

func ParseContactMethod(s string) (ContactMethod, error) {
	switch m := ContactMethod(s); m {
	case ContactEmail, ContactPhone:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidContact, s)
	}
}

// OTPChallenge is a pending one-time-password login for a single client.
type OTPChallenge struct {
	ClientID    string        `json:"client_id"`
	Method      ContactMethod `json:"method"`
	Destination string        `json:"destination"`
	CodeDigest  string        `json:"code_digest"`
	Attempts    int           `json:"attempts"`
	IssuedAt    time.Time     `json:"issued_at"`
	ExpiresAt   time.Time     `json:"expires_at"`
}

func (c *OTPChallenge) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
