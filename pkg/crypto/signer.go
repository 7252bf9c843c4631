package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var ErrInvalidSignature = errors.New("invalid signature")

type Signer struct {
	secretKey []byte
	logger    *slog.Logger
}

func NewSigner(secretKey string, logger *slog.Logger) *Signer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Signer{
		secretKey: []byte(secretKey),
		logger:    logger,
	}
}

func (s *Signer) Sign(data []byte) string {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write(data)
	signature := mac.Sum(nil)
	return hex.EncodeToString(signature)
}

func (s *Signer) Verify(data []byte, signature string) (bool, error) {
	expectedSignature := s.Sign(data)

	if !hmac.Equal([]byte(expectedSignature), []byte(signature)) {
		s.logger.Warn("Signature verification failed",
			slog.Int("data_len", len(data)),
			slog.String("received", signature))
		return false, ErrInvalidSignature
	}

	return true, nil
}

// SignClientID returns the cookie token for a client id: "<id>.<hex hmac>".
func (s *Signer) SignClientID(clientID string) string {
	return clientID + "." + s.Sign([]byte("client:"+clientID))
}

// VerifyClientID extracts the client id from a token made by SignClientID.
func (s *Signer) VerifyClientID(token string) (string, error) {
	i := strings.LastIndexByte(token, '.')
	if i <= 0 || i == len(token)-1 {
		return "", fmt.Errorf("%w: malformed client token", ErrInvalidSignature)
	}

	clientID, signature := token[:i], token[i+1:]
	if _, err := s.Verify([]byte("client:"+clientID), signature); err != nil {
		return "", err
	}
	return clientID, nil
}
