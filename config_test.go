package goMFA

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"digits too small", func(c *Config) { c.Challenge.CodeDigits = 4 }},
		{"digits too large", func(c *Config) { c.Challenge.CodeDigits = 12 }},
		{"zero ttl", func(c *Config) { c.Challenge.CodeTTL = 0 }},
		{"ttl too long", func(c *Config) { c.Challenge.CodeTTL = 2 * time.Hour }},
		{"zero attempts", func(c *Config) { c.Challenge.MaxAttempts = 0 }},
		{"empty prefix", func(c *Config) { c.Challenge.RedisPrefix = "" }},
		{"rate limit attempts", func(c *Config) { c.Security.MaxLoginAttempts = 0 }},
		{"rate limit cooldown", func(c *Config) { c.Security.LoginCooldownDuration = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestConfigValidateSkipsRateChecksWhenDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Security.EnableRateLimiting = false
	cfg.Security.MaxLoginAttempts = 0
	cfg.Security.LoginCooldownDuration = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled rate limiting to skip checks, got %v", err)
	}
}

func TestBuilderRequiresCollaborators(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected build failure without redis")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	cfg := challengeTestConfig()
	provider := newFakeProvider()
	sender := &recordingSender{}

	engine, _, _, done := newTestEngine(t, cfg, provider, sender)
	defer done()
	_ = engine

	// The harness consumed the builder internally; a fresh builder reused
	// twice must refuse the second build.
	b := New().WithConfig(cfg)
	if _, err := b.Build(); err == nil {
		t.Fatal("expected build failure without redis")
	}
}
