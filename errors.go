package goMFA

import "errors"

var (
	// ErrAuthenticationFailed is the single caller-facing verdict for both a
	// wrong password and an unknown principal, to prevent user enumeration.
	ErrAuthenticationFailed = errors.New("incorrect email or password")
	// ErrInvalidCredentials is returned by identity providers when the
	// password does not match. Collapsed into ErrAuthenticationFailed at the
	// engine boundary.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPrincipalNotFound is returned by identity providers for an unknown
	// identity. Collapsed into ErrAuthenticationFailed at the engine boundary.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrInvalidOrExpiredCode covers a missing, expired, replayed, or
	// mismatched challenge; recovery is a fresh Login call.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	// ErrCodeAttemptsExceeded terminates a challenge after too many wrong
	// answers.
	ErrCodeAttemptsExceeded = errors.New("code attempts exceeded")
	// ErrCodeDeliveryFailed aborts a login whose one-time code could not be
	// delivered out-of-band.
	ErrCodeDeliveryFailed = errors.New("code delivery failed")
	// ErrChallengeStoreUnavailable signals a storage-layer fault while
	// persisting or loading challenge state.
	ErrChallengeStoreUnavailable = errors.New("challenge store unavailable")
	// ErrProviderUnavailable wraps identity-provider faults that are not
	// credential verdicts.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	// ErrLoginRateLimited is returned when the identifier or source address
	// exceeded the login attempt budget.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrChallengeTagUnknown rejects provider-carried challenge metadata that
	// does not map onto a known tag.
	ErrChallengeTagUnknown = errors.New("unknown challenge tag")
	// ErrEngineNotReady is returned when an Engine is used before Build
	// completed or without required collaborators.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrTokenInvalid is returned by token verification for malformed,
	// mis-signed, or expired tokens.
	ErrTokenInvalid = errors.New("invalid token")
)
