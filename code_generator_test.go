package goMFA

import "testing"

func TestGenerateCodeLengthAndCharset(t *testing.T) {
	gen := newHOTPCodeGenerator()

	for _, digits := range []int{6, 8, 10} {
		code, err := gen.GenerateCode(digits)
		if err != nil {
			t.Fatalf("GenerateCode(%d) failed: %v", digits, err)
		}
		if len(code) != digits {
			t.Fatalf("expected %d digits, got %q", digits, code)
		}
		if !isNumericString(code) {
			t.Fatalf("expected numeric code, got %q", code)
		}
	}
}

func TestGenerateCodeRejectsInvalidDigits(t *testing.T) {
	gen := newHOTPCodeGenerator()

	for _, digits := range []int{0, 5, 11} {
		if _, err := gen.GenerateCode(digits); err == nil {
			t.Fatalf("expected error for %d digits", digits)
		}
	}
}

func TestGenerateCodeVariesAcrossCalls(t *testing.T) {
	gen := newHOTPCodeGenerator()

	seen := make(map[string]int)
	const rounds = 50
	for i := 0; i < rounds; i++ {
		code, err := gen.GenerateCode(6)
		if err != nil {
			t.Fatalf("GenerateCode failed: %v", err)
		}
		seen[code]++
	}

	// Coincidental collisions are possible; a constant output is not.
	if len(seen) < rounds/2 {
		t.Fatalf("expected varied codes, got %d distinct of %d", len(seen), rounds)
	}
}

func TestHOTPCodeDeterministicForFixedInput(t *testing.T) {
	secret := []byte("12345678901234567890")

	a, err := hotpCode(secret, 42, 6)
	if err != nil {
		t.Fatalf("hotpCode failed: %v", err)
	}
	b, err := hotpCode(secret, 42, 6)
	if err != nil {
		t.Fatalf("hotpCode failed: %v", err)
	}
	if a != b {
		t.Fatalf("expected deterministic derivation, got %q and %q", a, b)
	}

	c, err := hotpCode(secret, 43, 6)
	if err != nil {
		t.Fatalf("hotpCode failed: %v", err)
	}
	if a == c {
		t.Fatal("expected different counters to change the code")
	}
}

func TestIsNumericString(t *testing.T) {
	if !isNumericString("012345") {
		t.Fatal("expected digits to pass")
	}
	for _, s := range []string{"", "12a456", " 123456", "12345６"} {
		if isNumericString(s) {
			t.Fatalf("expected %q to fail", s)
		}
	}
}
