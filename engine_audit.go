package goMFA

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	auditEventLoginSuccess        = "login_success"
	auditEventLoginFailure        = "login_failure"
	auditEventLoginRateLimited    = "login_rate_limited"
	auditEventChallengeIssued     = "challenge_issued"
	auditEventChallengeSuppressed = "challenge_suppressed"
	auditEventCodeDeliveryFailed  = "code_delivery_failed"
	auditEventVerifySuccess       = "verify_success"
	auditEventVerifyFailure       = "verify_failure"
	auditEventAttemptsExceeded    = "verify_attempts_exceeded"
	auditEventReplayDetected      = "replay_detected"
	auditEventTokensIssued        = "tokens_issued"
	auditEventTokenRefresh        = "token_refresh"
	auditEventSignOut             = "sign_out"
	auditEventRateLimitTriggered  = "rate_limit_triggered"
	auditEventLimiterResetFailed  = "limiter_reset_failed"
)

// AuditErrorCode defines a public type used by goMFA APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrPrincipalNotFound  AuditErrorCode = "principal_not_found"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrCodeInvalid        AuditErrorCode = "code_invalid"
	auditErrAttemptsExceeded   AuditErrorCode = "attempts_exceeded"
	auditErrDeliveryFailed     AuditErrorCode = "delivery_failed"
	auditErrStoreUnavailable   AuditErrorCode = "store_unavailable"
	auditErrProvider           AuditErrorCode = "provider_error"
	auditErrTagUnknown         AuditErrorCode = "tag_unknown"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	principal string,
	sessionToken string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		EventID:      uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		EventType:    eventType,
		Principal:    principal,
		SessionToken: sessionToken,
		IP:           clientIPFromContext(ctx),
		Success:      success,
		Metadata:     metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitRateLimit(
	ctx context.Context,
	scope string,
	metadataBuilder func() map[string]string,
) {
	e.metricInc(MetricRateLimitHit)
	e.emitAudit(ctx, auditEventRateLimitTriggered, false, "", "", nil, func() map[string]string {
		base := map[string]string{
			"scope": scope,
		}
		if metadataBuilder == nil {
			return base
		}
		for k, v := range metadataBuilder() {
			base[k] = v
		}
		return base
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrPrincipalNotFound):
		return auditErrPrincipalNotFound
	case errors.Is(err, ErrAuthenticationFailed):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrLoginRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrInvalidOrExpiredCode):
		return auditErrCodeInvalid
	case errors.Is(err, ErrCodeAttemptsExceeded):
		return auditErrAttemptsExceeded
	case errors.Is(err, ErrCodeDeliveryFailed):
		return auditErrDeliveryFailed
	case errors.Is(err, ErrChallengeStoreUnavailable):
		return auditErrStoreUnavailable
	case errors.Is(err, ErrProviderUnavailable):
		return auditErrProvider
	case errors.Is(err, ErrChallengeTagUnknown):
		return auditErrTagUnknown
	default:
		return auditErrInternal
	}
}
