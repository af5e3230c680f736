// Package middleware provides net/http guards built on the jwt verifier:
// RequireAuth for bearer-token authentication and RequireGroup for
// group-based route gating.
package middleware
