package goMFA

import (
	"context"
	"errors"

	"github.com/MrEthical07/goMFA/internal"
)

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	if e == nil || e.provider == nil {
		return nil, ErrEngineNotReady
	}
	ip := clientIPFromContext(ctx)

	if e.rateLimiter != nil {
		if err := e.rateLimiter.CheckLogin(ctx, identifier, ip); err != nil {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, "", "", ErrLoginRateLimited, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			e.emitRateLimit(ctx, "login", func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			return nil, ErrLoginRateLimited
		}
	}

	if password == "" {
		return nil, e.failLoginAttempt(ctx, identifier, ip, "empty_password")
	}

	cred, err := e.provider.VerifyPassword(ctx, identifier, password)
	if err != nil {
		// Wrong password and unknown principal collapse into one verdict so
		// the response never reveals whether the account exists.
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, e.failLoginAttempt(ctx, identifier, ip, "password_mismatch")
		}
		if errors.Is(err, ErrPrincipalNotFound) {
			return nil, e.failLoginAttempt(ctx, identifier, ip, "principal_not_found")
		}
		mapped := providerFault(err)
		e.metricInc(MetricProviderError)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", "", mapped, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "provider_fault",
			}
		})
		return nil, mapped
	}
	password = ""

	decision, err := e.DefineAuthChallenge(ctx, DefineChallengeRequest{})
	if err != nil {
		return nil, err
	}
	if decision.FailAuthentication || decision.ChallengeName != ChallengeCustom {
		return nil, ErrAuthenticationFailed
	}

	created, err := e.CreateAuthChallenge(ctx, CreateChallengeRequest{
		Principal: cred.Subject,
		UserAttributes: map[string]string{
			challengeParamEmail: cred.Email,
		},
		ProviderSession: cred.Session,
	})
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, err
	}

	return &LoginResult{
		SessionToken: created.PrivateChallengeParameters[challengeParamSessionToken],
		MFARequired:  true,
	}, nil
}

// CompleteLogin describes the completelogin operation and its observable behavior.
//
// CompleteLogin may return an error when input validation, dependency calls, or security checks fail.
// CompleteLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CompleteLogin(ctx context.Context, sessionToken, identifier, code string) (*TokenSet, error) {
	if e == nil || e.codeStore == nil || e.provider == nil {
		return nil, ErrEngineNotReady
	}
	ip := clientIPFromContext(ctx)

	// Malformed tokens never hit Redis; they are indistinguishable from
	// unknown tokens to the caller.
	if _, err := internal.ParseSessionToken(sessionToken); err != nil {
		e.metricInc(MetricVerifyFailure)
		e.emitAudit(ctx, auditEventVerifyFailure, false, "", "", ErrInvalidOrExpiredCode, func() map[string]string {
			return map[string]string{
				"reason": "malformed_session_token",
			}
		})
		return nil, ErrInvalidOrExpiredCode
	}

	record, err := e.codeStore.Get(ctx, sessionToken)
	if err != nil {
		mapped := mapMFACodeStoreError(err)
		if errors.Is(err, errMFACodeExpired) {
			e.metricInc(MetricVerifyExpired)
		}
		e.metricInc(MetricVerifyFailure)
		e.emitAudit(ctx, auditEventVerifyFailure, false, "", sessionToken, mapped, func() map[string]string {
			return map[string]string{
				"reason": "challenge_load_failed",
			}
		})
		return nil, mapped
	}

	if record.Principal != identifier {
		return nil, e.failVerifyAttempt(ctx, sessionToken, record.Principal, "principal_mismatch")
	}

	verdict := e.VerifyAuthChallengeResponse(ctx, VerifyChallengeRequest{
		PrivateChallengeParameters: map[string]string{
			challengeParamCode: record.Code,
		},
		ChallengeAnswer: code,
	})
	if !verdict.AnswerCorrect {
		return nil, e.failVerifyAttempt(ctx, sessionToken, record.Principal, "code_mismatch")
	}

	if e.config.Challenge.EnforceSingleUse {
		deleted, err := e.codeStore.Delete(ctx, sessionToken)
		if err != nil {
			mapped := mapMFACodeStoreError(err)
			e.metricInc(MetricVerifyFailure)
			e.emitAudit(ctx, auditEventVerifyFailure, false, record.Principal, sessionToken, mapped, nil)
			return nil, mapped
		}
		if !deleted {
			// A concurrent verification consumed the code first.
			e.metricInc(MetricReplayAttempt)
			e.metricInc(MetricVerifyFailure)
			e.emitAudit(ctx, auditEventReplayDetected, false, record.Principal, sessionToken, ErrInvalidOrExpiredCode, nil)
			return nil, ErrInvalidOrExpiredCode
		}
	}

	tokens, err := e.respondToProvider(ctx, record)
	if err != nil {
		mapped := providerFault(err)
		e.metricInc(MetricProviderError)
		e.metricInc(MetricVerifyFailure)
		e.emitAudit(ctx, auditEventVerifyFailure, false, record.Principal, sessionToken, mapped, func() map[string]string {
			return map[string]string{
				"reason": "provider_exchange_failed",
			}
		})
		return nil, mapped
	}

	// The authentication already succeeded and the code is consumed; a
	// limiter fault must not discard the minted tokens. The stale counter
	// expires with its window.
	if e.rateLimiter != nil {
		if err := e.rateLimiter.ResetLogin(ctx, identifier, ip); err != nil {
			e.metricInc(MetricLimiterResetFailure)
			e.emitAudit(ctx, auditEventLimiterResetFailed, false, record.Principal, sessionToken, ErrChallengeStoreUnavailable, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
		}
	}

	e.metricInc(MetricVerifySuccess)
	e.metricInc(MetricTokensIssued)
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventVerifySuccess, true, record.Principal, sessionToken, nil, nil)
	e.emitAudit(ctx, auditEventLoginSuccess, true, record.Principal, sessionToken, nil, nil)
	e.emitAudit(ctx, auditEventTokensIssued, true, record.Principal, sessionToken, nil, func() map[string]string {
		meta := map[string]string{
			"identifier": identifier,
		}
		if ua := userAgentFromContext(ctx); ua != "" {
			meta["user_agent"] = ua
		}
		return meta
	})

	return tokens, nil
}

// respondToProvider finishes the provider-side exchange. A challenge that was
// started inside a provider session answers that session; one started without
// it mints tokens for the principal directly.
func (e *Engine) respondToProvider(ctx context.Context, record *mfaCodeRecord) (*TokenSet, error) {
	if record.ProviderSession != "" {
		return e.provider.RespondToChallenge(ctx, record.ProviderSession, "valid")
	}
	return e.provider.IssueTokens(ctx, record.Principal)
}

func (e *Engine) failLoginAttempt(ctx context.Context, identifier, ip, reason string) error {
	if e.rateLimiter != nil {
		if err := e.rateLimiter.IncrementLogin(ctx, identifier, ip); err != nil {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, "", "", ErrLoginRateLimited, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			e.emitRateLimit(ctx, "login", func() map[string]string {
				return map[string]string{
					"identifier": identifier,
				}
			})
			return ErrLoginRateLimited
		}
	}
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, "", "", ErrAuthenticationFailed, func() map[string]string {
		return map[string]string{
			"identifier": identifier,
			"reason":     reason,
		}
	})
	return ErrAuthenticationFailed
}

func (e *Engine) failVerifyAttempt(ctx context.Context, sessionToken, principal, reason string) error {
	exceeded, recErr := e.codeStore.RecordFailure(ctx, sessionToken, e.config.Challenge.MaxAttempts)
	if recErr != nil {
		mapped := mapMFACodeStoreError(recErr)
		e.metricInc(MetricVerifyFailure)
		e.emitAudit(ctx, auditEventVerifyFailure, false, principal, sessionToken, mapped, nil)
		return mapped
	}
	if exceeded {
		e.metricInc(MetricVerifyAttemptsExceeded)
		e.metricInc(MetricVerifyFailure)
		e.emitAudit(ctx, auditEventAttemptsExceeded, false, principal, sessionToken, ErrCodeAttemptsExceeded, func() map[string]string {
			return map[string]string{
				"reason": reason,
			}
		})
		return ErrCodeAttemptsExceeded
	}
	e.metricInc(MetricVerifyFailure)
	e.emitAudit(ctx, auditEventVerifyFailure, false, principal, sessionToken, ErrInvalidOrExpiredCode, func() map[string]string {
		return map[string]string{
			"reason": reason,
		}
	})
	return ErrInvalidOrExpiredCode
}

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	if e == nil || e.provider == nil {
		return nil, ErrEngineNotReady
	}
	if refreshToken == "" {
		return nil, ErrTokenInvalid
	}

	tokens, err := e.provider.Refresh(ctx, refreshToken)
	if err != nil {
		mapped := providerFault(err)
		e.metricInc(MetricProviderError)
		e.emitAudit(ctx, auditEventTokenRefresh, false, "", "", mapped, nil)
		return nil, mapped
	}

	e.emitAudit(ctx, auditEventTokenRefresh, true, "", "", nil, nil)
	return tokens, nil
}

// SignOut describes the signout operation and its observable behavior.
//
// SignOut may return an error when input validation, dependency calls, or security checks fail.
// SignOut does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SignOut(ctx context.Context, accessToken string) error {
	if e == nil || e.provider == nil {
		return ErrEngineNotReady
	}
	if accessToken == "" {
		return ErrTokenInvalid
	}

	if err := e.provider.SignOut(ctx, accessToken); err != nil {
		mapped := providerFault(err)
		e.metricInc(MetricProviderError)
		e.emitAudit(ctx, auditEventSignOut, false, "", "", mapped, nil)
		return mapped
	}

	e.emitAudit(ctx, auditEventSignOut, true, "", "", nil, nil)
	return nil
}
