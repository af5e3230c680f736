// Package internal contains helper utilities that are intentionally private to goMFA,
// including secure session token generation.
//
// # Sub-packages
//
//   - rate — Redis-backed login rate limit primitives
//
// # What this package must NOT do
//
//   - Export types that appear in the public goMFA API.
//   - Be imported by any package outside the goMFA module.
package internal
