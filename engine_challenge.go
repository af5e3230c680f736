package goMFA

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/MrEthical07/goMFA/internal"
)

const (
	challengeParamCode         = "code"
	challengeParamSessionToken = "sessionToken"
	challengeParamEmail        = "email"
	challengeParamDelivery     = "deliveryMedium"

	challengeDeliveryEmail = "EMAIL"
)

// DefineAuthChallenge describes the defineauthchallenge operation and its observable behavior.
//
// DefineAuthChallenge may return an error when input validation, dependency calls, or security checks fail.
// DefineAuthChallenge does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) DefineAuthChallenge(ctx context.Context, req DefineChallengeRequest) (DefineChallengeResponse, error) {
	if e == nil {
		return DefineChallengeResponse{FailAuthentication: true}, ErrEngineNotReady
	}

	for _, attempt := range req.Session {
		if attempt.Tag > TagFailedChallenge {
			return DefineChallengeResponse{FailAuthentication: true}, ErrChallengeTagUnknown
		}
	}

	return decideChallenge(req.Session), nil
}

// CreateAuthChallenge describes the createauthchallenge operation and its observable behavior.
//
// CreateAuthChallenge may return an error when input validation, dependency calls, or security checks fail.
// CreateAuthChallenge does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CreateAuthChallenge(ctx context.Context, req CreateChallengeRequest) (*CreateChallengeResponse, error) {
	if e == nil || e.codeStore == nil || e.generator == nil || e.sender == nil {
		return nil, ErrEngineNotReady
	}

	// A failed prior attempt produces a terminal marker instead of a fresh
	// challenge, so the define phase fails the flow on the next round trip.
	if len(req.Session) > 0 && !req.Session[len(req.Session)-1].Passed {
		e.emitAudit(ctx, auditEventChallengeSuppressed, false, req.Principal, "", nil, nil)
		return &CreateChallengeResponse{
			Metadata: TagFailedChallenge,
		}, nil
	}

	email := req.UserAttributes[challengeParamEmail]

	code, err := e.generator.GenerateCode(e.config.Challenge.CodeDigits)
	if err != nil {
		e.emitAudit(ctx, auditEventChallengeIssued, false, req.Principal, "", err, func() map[string]string {
			return map[string]string{
				"reason": "code_generation_failed",
			}
		})
		return nil, err
	}

	token, err := internal.NewSessionToken()
	if err != nil {
		e.emitAudit(ctx, auditEventChallengeIssued, false, req.Principal, "", err, func() map[string]string {
			return map[string]string{
				"reason": "session_token_generation",
			}
		})
		return nil, err
	}
	sessionToken := token.String()

	now := time.Now()
	ttl := e.config.Challenge.CodeTTL
	record := &mfaCodeRecord{
		Principal:       req.Principal,
		Email:           email,
		Code:            code,
		ProviderSession: req.ProviderSession,
		CreatedAt:       now.Unix(),
		ExpiresAt:       now.Add(ttl).Unix(),
	}

	if err := e.codeStore.Save(ctx, sessionToken, record, ttl); err != nil {
		mapped := mapMFACodeStoreError(err)
		e.emitAudit(ctx, auditEventChallengeIssued, false, req.Principal, "", mapped, func() map[string]string {
			return map[string]string{
				"reason": "challenge_save_failed",
			}
		})
		return nil, mapped
	}

	// The code counts as issued the moment it is stored. A delivery failure
	// fails this attempt, but the record stays behind its TTL.
	if err := e.sender.SendCode(ctx, email, code); err != nil {
		e.metricInc(MetricCodeDeliveryFailure)
		e.emitAudit(ctx, auditEventCodeDeliveryFailed, false, req.Principal, sessionToken, ErrCodeDeliveryFailed, func() map[string]string {
			return map[string]string{
				"recipient": maskEmail(email),
			}
		})
		return nil, ErrCodeDeliveryFailed
	}

	e.metricInc(MetricChallengeIssued)
	e.emitAudit(ctx, auditEventChallengeIssued, true, req.Principal, sessionToken, nil, func() map[string]string {
		return map[string]string{
			"recipient": maskEmail(email),
		}
	})

	return &CreateChallengeResponse{
		Metadata: TagMFAChallenge,
		PublicChallengeParameters: map[string]string{
			challengeParamDelivery: challengeDeliveryEmail,
			challengeParamEmail:    maskEmail(email),
		},
		PrivateChallengeParameters: map[string]string{
			challengeParamCode:         code,
			challengeParamSessionToken: sessionToken,
		},
	}, nil
}

// VerifyAuthChallengeResponse describes the verifyauthchallengeresponse operation and its observable behavior.
//
// VerifyAuthChallengeResponse may return an error when input validation, dependency calls, or security checks fail.
// VerifyAuthChallengeResponse does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyAuthChallengeResponse(ctx context.Context, req VerifyChallengeRequest) VerifyChallengeResponse {
	// Exact match only: callers normalize user input before handing it over.
	expected := req.PrivateChallengeParameters[challengeParamCode]
	answer := req.ChallengeAnswer

	if expected == "" || answer == "" || !isNumericString(answer) {
		return VerifyChallengeResponse{}
	}

	match := subtle.ConstantTimeCompare([]byte(expected), []byte(answer)) == 1
	return VerifyChallengeResponse{AnswerCorrect: match}
}

// maskEmail keeps the first character of the local part and the full domain.
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
