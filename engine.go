package goMFA

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goMFA/internal/rate"
)

// Engine defines a public type used by goMFA APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config      Config
	codeStore   *mfaCodeStore
	rateLimiter *rate.Limiter
	audit       *auditDispatcher
	metrics     *Metrics
	generator   CodeGenerator
	provider    IdentityProvider
	sender      CodeSender
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// LoginAttempts describes the loginattempts operation and its observable behavior.
//
// LoginAttempts may return an error when input validation, dependency calls, or security checks fail.
// LoginAttempts does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) LoginAttempts(ctx context.Context, identifier string) (int, error) {
	if e == nil || e.rateLimiter == nil {
		return 0, nil
	}
	attempts, err := e.rateLimiter.GetLoginAttempts(ctx, identifier)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrChallengeStoreUnavailable, err)
	}
	return attempts, nil
}

func mapMFACodeStoreError(err error) error {
	switch {
	case errors.Is(err, errMFACodeNotFound):
		return ErrInvalidOrExpiredCode
	case errors.Is(err, errMFACodeExpired):
		return ErrInvalidOrExpiredCode
	case errors.Is(err, errMFACodeBackend):
		return ErrChallengeStoreUnavailable
	default:
		return ErrChallengeStoreUnavailable
	}
}

// providerFault wraps any identity-provider error that is not a credential
// verdict. The original error text stays inside the wrap; callers match on
// ErrProviderUnavailable.
func providerFault(err error) error {
	if errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrPrincipalNotFound) ||
		errors.Is(err, ErrProviderUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}
