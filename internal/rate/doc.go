// Package rate provides internal primitives used to build Redis-backed rate limit keys,
// errors, and limiter behavior for the login path of the challenge engine.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - ml:  — login per-identifier
//   - mli: — login per-IP
//
// # What this package must NOT do
//
//   - Track challenge verification attempts (those live in the code store record).
//   - Be imported outside the goMFA module.
package rate
