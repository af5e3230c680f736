package goMFA

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goMFA/internal"
)

// ChallengeInfo is the safe introspection view for a pending challenge.
// It intentionally excludes the code itself and the raw provider session.
type ChallengeInfo struct {
	Principal          string
	Email              string
	CreatedAt          int64
	ExpiresAt          int64
	Attempts           int
	HasProviderSession bool
}

// HealthStatus is an on-demand backend health result.
type HealthStatus struct {
	RedisAvailable bool
	RedisLatency   time.Duration
}

// GetChallengeInfo describes the getchallengeinfo operation and its observable behavior.
//
// GetChallengeInfo may return an error when input validation, dependency calls, or security checks fail.
// GetChallengeInfo does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) GetChallengeInfo(ctx context.Context, sessionToken string) (*ChallengeInfo, error) {
	if e == nil || e.codeStore == nil {
		return nil, ErrEngineNotReady
	}
	if _, err := internal.ParseSessionToken(sessionToken); err != nil {
		return nil, ErrInvalidOrExpiredCode
	}

	record, err := e.codeStore.Get(ctx, sessionToken)
	if err != nil {
		// Introspection does not consume attempts; expired and missing
		// challenges both read as ErrInvalidOrExpiredCode.
		if errors.Is(err, errMFACodeExpired) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, mapMFACodeStoreError(err)
	}

	return &ChallengeInfo{
		Principal:          record.Principal,
		Email:              maskEmail(record.Email),
		CreatedAt:          record.CreatedAt,
		ExpiresAt:          record.ExpiresAt,
		Attempts:           int(record.Attempts),
		HasProviderSession: record.ProviderSession != "",
	}, nil
}

// Health describes the health operation and its observable behavior.
//
// Health may return an error when input validation, dependency calls, or security checks fail.
// Health does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	if e == nil || e.codeStore == nil {
		return HealthStatus{}
	}

	latency, err := e.codeStore.Ping(ctx)
	return HealthStatus{
		RedisAvailable: err == nil,
		RedisLatency:   latency,
	}
}
