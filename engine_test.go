package goMFA

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeProvider struct {
	mu        sync.Mutex
	passwords map[string]string
	sessions  map[string]string
	minted    int

	failVerify    error
	failRespond   error
	withSession   bool
	respondCalls  int
	issueCalls    int
	refreshCalls  int
	signOutCalls  int
	lastAnswer    string
	lastSessionID string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		passwords: make(map[string]string),
		sessions:  make(map[string]string),
	}
}

func (p *fakeProvider) putUser(email, password string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.passwords[email] = password
}

func (p *fakeProvider) VerifyPassword(_ context.Context, principal, password string) (*CredentialResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failVerify != nil {
		return nil, p.failVerify
	}
	stored, ok := p.passwords[principal]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	if stored != password {
		return nil, ErrInvalidCredentials
	}

	cred := &CredentialResult{
		Subject: principal,
		Email:   principal,
	}
	if p.withSession {
		session := fmt.Sprintf("provider-session-%d", len(p.sessions)+1)
		p.sessions[session] = principal
		cred.Session = session
	}
	return cred, nil
}

func (p *fakeProvider) RespondToChallenge(_ context.Context, session, answer string) (*TokenSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.respondCalls++
	p.lastSessionID = session
	p.lastAnswer = answer
	if p.failRespond != nil {
		return nil, p.failRespond
	}
	if _, ok := p.sessions[session]; !ok {
		return nil, fmt.Errorf("unknown provider session")
	}
	return p.mintLocked(), nil
}

func (p *fakeProvider) IssueTokens(_ context.Context, _ string) (*TokenSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.issueCalls++
	if p.failRespond != nil {
		return nil, p.failRespond
	}
	return p.mintLocked(), nil
}

func (p *fakeProvider) Refresh(_ context.Context, refreshToken string) (*TokenSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.refreshCalls++
	if refreshToken == "bad" {
		return nil, fmt.Errorf("refresh rejected")
	}
	return p.mintLocked(), nil
}

func (p *fakeProvider) SignOut(_ context.Context, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOutCalls++
	return nil
}

func (p *fakeProvider) mintLocked() *TokenSet {
	p.minted++
	return &TokenSet{
		AccessToken:  fmt.Sprintf("access-%d", p.minted),
		RefreshToken: fmt.Sprintf("refresh-%d", p.minted),
		IDToken:      fmt.Sprintf("id-%d", p.minted),
	}
}

type recordingSender struct {
	mu    sync.Mutex
	sent  []sentCode
	fail  error
	calls int
}

type sentCode struct {
	recipient string
	code      string
}

func (s *recordingSender) SendCode(_ context.Context, recipient, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, sentCode{recipient: recipient, code: code})
	return nil
}

func (s *recordingSender) lastCode(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		t.Fatal("expected at least one sent code")
	}
	return s.sent[len(s.sent)-1].code
}

func challengeTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Audit.Enabled = false
	return cfg
}

func newTestEngine(t *testing.T, cfg Config, provider *fakeProvider, sender *recordingSender) (*Engine, *redis.Client, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityProvider(provider).
		WithCodeSender(sender).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("engine build failed: %v", err)
	}

	done := func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
	return engine, rdb, mr, done
}

func startLogin(t *testing.T, engine *Engine, identifier, password string) string {
	t.Helper()

	result, err := engine.Login(context.Background(), identifier, password)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !result.MFARequired {
		t.Fatal("expected MFA to be required")
	}
	if result.SessionToken == "" {
		t.Fatal("expected non-empty session token")
	}
	if strings.ContainsAny(result.SessionToken, " :") {
		t.Fatalf("unexpected session token format: %q", result.SessionToken)
	}
	return result.SessionToken
}

func fastForwardPastTTL(mr *miniredis.Miniredis, cfg Config) {
	mr.FastForward(cfg.Challenge.CodeTTL + time.Second)
}
