package jwt

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestVerifier(t *testing.T, mutate func(*Config)) *Verifier {
	t.Helper()

	cfg := Config{
		SigningMethod: MethodHS256,
		Key:           testKey,
		Issuer:        "https://issuer.example.com",
		Audience:      "client-1",
	}
	if mutate != nil {
		mutate(&cfg)
	}

	v, err := NewVerifier(cfg)
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}
	return v
}

func signTestToken(t *testing.T, key []byte, mutate func(*Claims)) string {
	t.Helper()

	claims := &Claims{
		Email:  "alice@example.com",
		Groups: []string{"users"},
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "https://issuer.example.com",
			Audience:  jwtlib.ClaimStrings{"client-1"},
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}
	if mutate != nil {
		mutate(claims)
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return signed
}

func TestVerifyAcceptsValidToken(t *testing.T) {
	v := newTestVerifier(t, nil)
	tokenStr := signTestToken(t, testKey, nil)

	claims, err := v.Verify(tokenStr)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.HasGroup("users") || claims.HasGroup("admins") {
		t.Fatalf("unexpected group membership: %v", claims.Groups)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	v := newTestVerifier(t, nil)
	tokenStr := signTestToken(t, []byte("another-key-another-key-another!"), nil)

	if _, err := v.Verify(tokenStr); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v := newTestVerifier(t, nil)
	tokenStr := signTestToken(t, testKey, func(c *Claims) {
		c.ExpiresAt = jwtlib.NewNumericDate(time.Now().Add(-time.Hour))
	})

	if _, err := v.Verify(tokenStr); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsWrongIssuerAndAudience(t *testing.T) {
	v := newTestVerifier(t, nil)

	badIssuer := signTestToken(t, testKey, func(c *Claims) {
		c.Issuer = "https://evil.example.com"
	})
	if _, err := v.Verify(badIssuer); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected issuer rejection, got %v", err)
	}

	badAudience := signTestToken(t, testKey, func(c *Claims) {
		c.Audience = jwtlib.ClaimStrings{"someone-else"}
	})
	if _, err := v.Verify(badAudience); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected audience rejection, got %v", err)
	}
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	v := newTestVerifier(t, nil)

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, &Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "https://issuer.example.com",
			Audience:  jwtlib.ClaimStrings{"client-1"},
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tokenStr, err := token.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := v.Verify(tokenStr); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected alg rejection, got %v", err)
	}
}

func TestVerifyRejectsFutureIAT(t *testing.T) {
	v := newTestVerifier(t, nil)
	tokenStr := signTestToken(t, testKey, func(c *Claims) {
		c.IssuedAt = jwtlib.NewNumericDate(time.Now().Add(time.Hour))
	})

	if _, err := v.Verify(tokenStr); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected future-iat rejection, got %v", err)
	}
}

func TestVerifyKidSelection(t *testing.T) {
	v := newTestVerifier(t, func(cfg *Config) {
		cfg.Key = nil
		cfg.VerifyKeys = map[string][]byte{"key-1": testKey}
	})

	claims := &Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "https://issuer.example.com",
			Audience:  jwtlib.ClaimStrings{"client-1"},
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	token.Header["kid"] = "key-1"
	signed, err := token.SignedString(testKey)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := v.Verify(signed); err != nil {
		t.Fatalf("Verify with kid failed: %v", err)
	}

	noKid := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signedNoKid, err := noKid.SignedString(testKey)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := v.Verify(signedNoKid); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected missing-kid rejection, got %v", err)
	}
}

func TestNewVerifierValidation(t *testing.T) {
	if _, err := NewVerifier(Config{SigningMethod: "rs256"}); err == nil {
		t.Fatal("expected unsupported method rejection")
	}
	if _, err := NewVerifier(Config{SigningMethod: MethodHS256}); err == nil {
		t.Fatal("expected missing key rejection")
	}
	if _, err := NewVerifier(Config{SigningMethod: MethodEd25519}); err == nil {
		t.Fatal("expected missing public key rejection")
	}
	if _, err := NewVerifier(Config{SigningMethod: MethodHS256, Key: testKey, Leeway: 5 * time.Minute}); err == nil {
		t.Fatal("expected leeway rejection")
	}
}
