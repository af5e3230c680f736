// Package goMFA orchestrates a custom email-code multi-factor login flow on
// top of an external identity provider's challenge-response extension points.
//
// The engine implements the three provider-invoked callback phases
// ([Engine.DefineAuthChallenge], [Engine.CreateAuthChallenge],
// [Engine.VerifyAuthChallengeResponse]) plus the request-facing coordinator
// ([Engine.Login], [Engine.CompleteLogin]) that binds password verification
// to one-time-code issuance and final token exchange. Codes live in Redis
// under a high-entropy session token with a fixed expiry window and are
// consumed on first successful verification.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goMFA is the public surface. It exposes [Engine], [Builder], [Config], the
// collaborator interfaces ([IdentityProvider], [CodeSender]), and value types
// for the challenge callback contract. Rate limiting and token generation
// primitives live under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Store or hash passwords; credential verification belongs to the
//     identity provider.
//   - Sign tokens. The provider mints the final token set; the jwt/
//     sub-package only verifies provider-issued tokens.
//   - Expose Redis clients, record encodings, or store internals in its
//     public API.
//
// # Performance contract
//
// Every engine operation is a bounded number of sequential network round
// trips (provider call, store read/write, code delivery). No operation fans
// out internally or blocks on another request.
package goMFA
