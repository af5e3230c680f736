package goMFA

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGetChallengeInfoRedactsSecrets(t *testing.T) {
	cfg := challengeTestConfig()
	provider := newFakeProvider()
	provider.putUser("alice@example.com", "correct-horse")
	sender := &recordingSender{}

	engine, _, _, done := newTestEngine(t, cfg, provider, sender)
	defer done()

	session := startLogin(t, engine, "alice@example.com", "correct-horse")

	info, err := engine.GetChallengeInfo(context.Background(), session)
	if err != nil {
		t.Fatalf("GetChallengeInfo failed: %v", err)
	}
	if info.Principal != "alice@example.com" {
		t.Fatalf("unexpected principal %q", info.Principal)
	}
	if info.Email != "a***@example.com" {
		t.Fatalf("expected masked email, got %q", info.Email)
	}
	if info.Attempts != 0 {
		t.Fatalf("expected zero attempts, got %d", info.Attempts)
	}
	if info.ExpiresAt <= info.CreatedAt {
		t.Fatal("expected expiry after creation")
	}
	if strings.Contains(info.Email, sender.lastCode(t)) {
		t.Fatal("challenge info must not leak the code")
	}
}

func TestGetChallengeInfoDoesNotConsumeAttempts(t *testing.T) {
	cfg := challengeTestConfig()
	provider := newFakeProvider()
	provider.putUser("alice@example.com", "correct-horse")
	sender := &recordingSender{}

	engine, _, _, done := newTestEngine(t, cfg, provider, sender)
	defer done()

	session := startLogin(t, engine, "alice@example.com", "correct-horse")

	if _, err := engine.CompleteLogin(context.Background(), session, "alice@example.com", "000000"); !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Fatalf("expected wrong-code rejection, got %v", err)
	}

	info, err := engine.GetChallengeInfo(context.Background(), session)
	if err != nil {
		t.Fatalf("GetChallengeInfo failed: %v", err)
	}
	if info.Attempts != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", info.Attempts)
	}

	again, err := engine.GetChallengeInfo(context.Background(), session)
	if err != nil {
		t.Fatalf("second GetChallengeInfo failed: %v", err)
	}
	if again.Attempts != 1 {
		t.Fatalf("introspection must not count attempts, got %d", again.Attempts)
	}
}

func TestGetChallengeInfoUnknownAndMalformedTokens(t *testing.T) {
	cfg := challengeTestConfig()
	engine, _, _, done := newTestEngine(t, cfg, newFakeProvider(), &recordingSender{})
	defer done()

	if _, err := engine.GetChallengeInfo(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Fatalf("expected rejection for malformed token, got %v", err)
	}
	if _, err := engine.GetChallengeInfo(context.Background(), strings.Repeat("ab", 32)); !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Fatalf("expected rejection for unknown token, got %v", err)
	}
}

func TestHealthReportsRedisState(t *testing.T) {
	cfg := challengeTestConfig()
	engine, _, mr, done := newTestEngine(t, cfg, newFakeProvider(), &recordingSender{})
	defer done()

	status := engine.Health(context.Background())
	if !status.RedisAvailable {
		t.Fatal("expected healthy redis")
	}

	mr.Close()

	status = engine.Health(context.Background())
	if status.RedisAvailable {
		t.Fatal("expected unhealthy redis after close")
	}
}
