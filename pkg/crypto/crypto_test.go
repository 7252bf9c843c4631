package crypto

import (
	"errors"
	"regexp"
	"testing"
)

func TestSigner_ClientID(t *testing.T) {
	s := NewSigner("secret", nil)

	token := s.SignClientID("3f1c2a9e-client")
	got, err := s.VerifyClientID(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "3f1c2a9e-client" {
		t.Errorf("expected client id back, got %q", got)
	}
}

func TestSigner_ClientIDTampered(t *testing.T) {
	s := NewSigner("secret", nil)
	other := NewSigner("other-secret", nil)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no signature", "client1"},
		{"trailing dot", "client1."},
		{"swapped id", "client2." + s.Sign([]byte("client:client1"))},
		{"foreign key", other.SignClientID("client1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.VerifyClientID(tt.token); !errors.Is(err, ErrInvalidSignature) {
				t.Errorf("expected ErrInvalidSignature, got %v", err)
			}
		})
	}
}

func TestGenerateCode(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("expected 6 digits, got %q", code)
		}
	}
}

func TestHashCode(t *testing.T) {
	digest, err := HashCode("123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if digest == "123456" {
		t.Fatal("digest must not equal the code")
	}
	if !CheckCode(digest, "123456") {
		t.Error("expected matching code to verify")
	}
	if CheckCode(digest, "654321") {
		t.Error("expected other code to fail")
	}
}
