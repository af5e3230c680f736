package goMFA

import (
	"errors"
	"time"
)

// Config defines a public type used by goMFA APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Challenge ChallengeConfig
	Security  SecurityConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
CHALLENGE CONFIG
====================================
*/

// ChallengeConfig tunes one-time code generation and storage.
//
// ChallengeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ChallengeConfig struct {
	CodeDigits  int
	CodeTTL     time.Duration
	MaxAttempts int
	RedisPrefix string

	// EnforceSingleUse deletes the stored challenge on the first matching
	// verification so a code can never be replayed. Disabling it leaves
	// expiry as the only bound.
	EnforceSingleUse bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig tunes the login attempt limiter.
//
// SecurityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityConfig struct {
	EnableRateLimiting    bool
	EnableIPThrottle      bool
	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process counters.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Challenge: ChallengeConfig{
			CodeDigits:       6,
			CodeTTL:          5 * time.Minute,
			MaxAttempts:      3,
			RedisPrefix:      "mfc",
			EnforceSingleUse: true,
		},
		Security: SecurityConfig{
			EnableRateLimiting:    true,
			EnableIPThrottle:      true,
			MaxLoginAttempts:      10,
			LoginCooldownDuration: 15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Challenge.CodeDigits < 6 || c.Challenge.CodeDigits > 10 {
		return errors.New("Challenge.CodeDigits must be between 6 and 10")
	}
	if c.Challenge.CodeTTL <= 0 {
		return errors.New("Challenge.CodeTTL must be positive")
	}
	if c.Challenge.CodeTTL > time.Hour {
		return errors.New("Challenge.CodeTTL must not exceed one hour")
	}
	if c.Challenge.MaxAttempts < 1 {
		return errors.New("Challenge.MaxAttempts must be at least 1")
	}
	if c.Challenge.RedisPrefix == "" {
		return errors.New("Challenge.RedisPrefix must not be empty")
	}
	if c.Security.EnableRateLimiting {
		if c.Security.MaxLoginAttempts < 1 {
			return errors.New("Security.MaxLoginAttempts must be at least 1 when rate limiting is enabled")
		}
		if c.Security.LoginCooldownDuration <= 0 {
			return errors.New("Security.LoginCooldownDuration must be positive when rate limiting is enabled")
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}
