// Package redisstore keeps OTP challenges in Redis so that several server
// replicas share pending logins and send limits.
package redisstore

import (
	"compliance_checker/internal/domain"
	"compliance_checker/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	challengeKeyPrefix = "compliance:otp:challenge:"
	attemptsKeyPrefix  = "compliance:otp:attempts:"
	sendKeyPrefix      = "compliance:otp:send:"
)

var _ repository.ChallengeStore = (*ChallengeStore)(nil)

// incrementAttemptsScript bumps the attempt counter only while the challenge
// exists and keeps both keys expiring together. Returns -1 when missing.
var incrementAttemptsScript = redis.NewScript(`
	local ttl = redis.call('PTTL', KEYS[1])
	if ttl <= 0 then
		return -1
	end
	local n = redis.call('INCR', KEYS[2])
	redis.call('PEXPIRE', KEYS[2], ttl)
	return n
`)

var allowSendScript = redis.NewScript(`
	local limit = tonumber(ARGV[1])
	local windowMs = tonumber(ARGV[2])

	local current = tonumber(redis.call('GET', KEYS[1]) or '0')
	if current >= limit then
		return 0
	end

	local n = redis.call('INCR', KEYS[1])
	if n == 1 then
		redis.call('PEXPIRE', KEYS[1], windowMs)
	end
	return 1
`)

type ChallengeStore struct {
	client redis.UniversalClient
}

func NewChallengeStore(client redis.UniversalClient) *ChallengeStore {
	return &ChallengeStore{client: client}
}

func (s *ChallengeStore) Put(ctx context.Context, challenge *domain.OTPChallenge, ttl time.Duration) error {
	b, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("encode challenge: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, challengeKeyPrefix+challenge.ClientID, b, ttl)
		pipe.Set(ctx, attemptsKeyPrefix+challenge.ClientID, challenge.Attempts, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put challenge: %w", err)
	}
	return nil
}

func (s *ChallengeStore) Get(ctx context.Context, clientID string) (*domain.OTPChallenge, error) {
	pipe := s.client.Pipeline()
	challengeCmd := pipe.Get(ctx, challengeKeyPrefix+clientID)
	attemptsCmd := pipe.Get(ctx, attemptsKeyPrefix+clientID)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis get challenge: %w", err)
	}

	raw, err := challengeCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: challenge for client %s", repository.ErrNotFound, clientID)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get challenge: %w", err)
	}

	var c domain.OTPChallenge
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode challenge: %w", err)
	}
	if n, err := attemptsCmd.Int(); err == nil {
		c.Attempts = n
	}
	return &c, nil
}

func (s *ChallengeStore) IncrementAttempts(ctx context.Context, clientID string) (int, error) {
	keys := []string{challengeKeyPrefix + clientID, attemptsKeyPrefix + clientID}
	n, err := incrementAttemptsScript.Run(ctx, s.client, keys).Int()
	if err != nil {
		return 0, fmt.Errorf("redis increment attempts: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: challenge for client %s", repository.ErrNotFound, clientID)
	}
	return n, nil
}

func (s *ChallengeStore) Delete(ctx context.Context, clientID string) error {
	return s.client.Del(ctx, challengeKeyPrefix+clientID, attemptsKeyPrefix+clientID).Err()
}

func (s *ChallengeStore) AllowSend(ctx context.Context, destination string, limit int, window time.Duration) (bool, error) {
	result, err := allowSendScript.Run(ctx, s.client, []string{sendKeyPrefix + destination},
		limit, window.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis allow send: %w", err)
	}
	return result == 1, nil
}
