package goMFA

import "context"

// ChallengeName identifies the provider-level challenge step requested from
// or reported by the identity provider.
type ChallengeName string

const (
	// ChallengeCustom is the provider's custom-challenge step carrying the
	// email one-time code.
	ChallengeCustom ChallengeName = "CUSTOM_CHALLENGE"
	// ChallengePassword is the provider's native password verification step.
	ChallengePassword ChallengeName = "PASSWORD_VERIFIER"
)

// ChallengeTag is the closed set of metadata markers threaded through the
// provider's opaque challenge session. Unknown metadata never falls through
// silently: [ParseChallengeTag] rejects it and the define phase fails the
// authentication.
type ChallengeTag uint8

const (
	// TagNone marks a session entry without custom metadata, e.g. a native
	// provider challenge.
	TagNone ChallengeTag = iota
	// TagMFAChallenge marks an entry produced by the create phase when a code
	// was issued.
	TagMFAChallenge
	// TagFailedChallenge marks a terminal entry produced by the create phase
	// after a failed attempt; no challenge material exists behind it.
	TagFailedChallenge
)

const (
	tagMFAChallengeMetadata    = "MFA_CHALLENGE"
	tagFailedChallengeMetadata = "FAILED_CHALLENGE"
)

// String returns the wire metadata string for the tag.
func (t ChallengeTag) String() string {
	switch t {
	case TagNone:
		return ""
	case TagMFAChallenge:
		return tagMFAChallengeMetadata
	case TagFailedChallenge:
		return tagFailedChallengeMetadata
	default:
		return ""
	}
}

// ParseChallengeTag maps provider-carried challenge metadata onto the closed
// tag set. An unrecognized string returns ErrChallengeTagUnknown.
func ParseChallengeTag(metadata string) (ChallengeTag, error) {
	switch metadata {
	case "":
		return TagNone, nil
	case tagMFAChallengeMetadata:
		return TagMFAChallenge, nil
	case tagFailedChallengeMetadata:
		return TagFailedChallenge, nil
	default:
		return TagNone, ErrChallengeTagUnknown
	}
}

// ChallengeAttempt is one entry of the provider-owned challenge session
// history handed to the define and create phases.
type ChallengeAttempt struct {
	ChallengeName ChallengeName
	Tag           ChallengeTag
	Passed        bool
}

// DefineChallengeRequest carries the accumulated session history into the
// define phase.
type DefineChallengeRequest struct {
	Session []ChallengeAttempt
}

// DefineChallengeResponse is the define-phase transition decision. At most
// one of IssueTokens and FailAuthentication is set; when neither is,
// ChallengeName names the next challenge step.
type DefineChallengeResponse struct {
	ChallengeName      ChallengeName
	IssueTokens        bool
	FailAuthentication bool
}

// CreateChallengeRequest carries the session history and the principal's
// provider-held attributes into the create phase.
type CreateChallengeRequest struct {
	Session        []ChallengeAttempt
	Principal      string
	UserAttributes map[string]string

	// ProviderSession optionally binds the provider's native session handle
	// to the stored challenge so CompleteLogin can finish the provider-side
	// exchange.
	ProviderSession string
}

// CreateChallengeResponse is the materialized challenge. Private parameters
// never reach the caller; the public parameters describe the challenge
// category only.
type CreateChallengeResponse struct {
	Metadata                   ChallengeTag
	PublicChallengeParameters  map[string]string
	PrivateChallengeParameters map[string]string
}

// VerifyChallengeRequest carries the create-phase private parameters and the
// caller-supplied answer into the verify phase.
type VerifyChallengeRequest struct {
	PrivateChallengeParameters map[string]string
	ChallengeAnswer            string
}

// VerifyChallengeResponse is the verify-phase verdict. The verdict alone
// drives the next define-phase transition.
type VerifyChallengeResponse struct {
	AnswerCorrect bool
}

// CredentialResult is returned by [IdentityProvider.VerifyPassword] on
// success. Session is the provider's opaque handle for continuing a
// multi-step challenge; Email is the principal's verified delivery address.
type CredentialResult struct {
	Session string
	Subject string
	Email   string
}

// TokenSet is the final token triple minted by the identity provider and
// returned verbatim.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
}

// LoginResult is returned by [Engine.Login]. Tokens are never present; the
// caller must complete the MFA challenge referenced by SessionToken.
type LoginResult struct {
	SessionToken string
	MFARequired  bool
}

// IdentityProvider is the trusted external collaborator that owns
// credentials and token minting. Implementations must return
// ErrInvalidCredentials or ErrPrincipalNotFound (possibly wrapped) for
// credential verdicts; any other error is treated as a provider fault.
type IdentityProvider interface {
	VerifyPassword(ctx context.Context, principal, password string) (*CredentialResult, error)
	RespondToChallenge(ctx context.Context, session, answer string) (*TokenSet, error)
	IssueTokens(ctx context.Context, principal string) (*TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
	SignOut(ctx context.Context, accessToken string) error
}

// CodeSender delivers a one-time code to a recipient out-of-band. Delivery
// failure during login is fatal to the attempt: the caller would otherwise
// wait for a code that never arrives.
type CodeSender interface {
	SendCode(ctx context.Context, recipient, code string) error
}
