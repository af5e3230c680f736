package goMFA

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"time"
)

const codeSecretBytes = 20

// CodeGenerator produces one-time MFA codes. Implementations must return
// codes composed only of ASCII digits with the configured length.
type CodeGenerator interface {
	GenerateCode(digits int) (string, error)
}

// hotpCodeGenerator derives each code from a freshly generated HMAC secret,
// so two consecutive calls share no state and collisions are coincidental.
type hotpCodeGenerator struct {
	now func() time.Time
}

func newHOTPCodeGenerator() *hotpCodeGenerator {
	return &hotpCodeGenerator{now: time.Now}
}

func (g *hotpCodeGenerator) GenerateCode(digits int) (string, error) {
	if g == nil {
		return "", ErrEngineNotReady
	}
	if digits < 6 || digits > 10 {
		return "", fmt.Errorf("invalid code digits %d", digits)
	}

	secret := make([]byte, codeSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generate code secret: %w", err)
	}

	counter := g.now().UnixNano()
	return hotpCode(secret, counter, digits)
}

func hotpCode(secret []byte, counter int64, digits int) (string, error) {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, secret)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	mod := 1
	for i := 0; i < digits; i++ {
		mod *= 10
	}

	code := bin % mod
	return fmt.Sprintf("%0*d", digits, code), nil
}

func isNumericString(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
