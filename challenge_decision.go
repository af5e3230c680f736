package goMFA

// decideChallenge inspects the recorded challenge session and determines the
// next step of the custom authentication flow. It is pure: no clock, no
// store, no provider.
//
// Decision table, evaluated against the most recent attempt:
//
//	empty session                        -> present CUSTOM_CHALLENGE
//	last tag FAILED_CHALLENGE            -> fail authentication
//	last attempt not passed              -> fail authentication
//	last tag MFA_CHALLENGE and passed    -> issue tokens
//	any other step passed                -> present CUSTOM_CHALLENGE
//
// Tokens are only ever issued through the passed MFA challenge; a passed
// step of any other kind (e.g. the native password verifier) continues into
// the custom challenge. Unrecognized tags never reach this function: callers
// reject them before deciding.
func decideChallenge(session []ChallengeAttempt) DefineChallengeResponse {
	if len(session) == 0 {
		return DefineChallengeResponse{
			ChallengeName: ChallengeCustom,
		}
	}

	last := session[len(session)-1]

	if last.Tag == TagFailedChallenge {
		return DefineChallengeResponse{FailAuthentication: true}
	}
	if !last.Passed {
		return DefineChallengeResponse{FailAuthentication: true}
	}
	if last.ChallengeName == ChallengeCustom && last.Tag == TagMFAChallenge {
		return DefineChallengeResponse{IssueTokens: true}
	}

	return DefineChallengeResponse{ChallengeName: ChallengeCustom}
}
