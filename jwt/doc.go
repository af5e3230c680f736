// Package jwt verifies access tokens minted by the external identity
// provider. The module never holds signing material; this package carries
// only public or shared verification keys.
//
// # Supported algorithms
//
//   - EdDSA (ed25519), raw 32-byte or PEM-encoded public keys
//   - HS256, for providers that share a symmetric verification secret
//
// Multi-key verification is supported through Config.VerifyKeys keyed by
// kid, for providers that rotate keys.
//
// # What this package must NOT do
//
//   - Sign or mint tokens.
//   - Reach the network; key material is supplied up front.
package jwt
