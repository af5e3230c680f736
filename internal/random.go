package internal

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

const sessionTokenBytes = 32

// SessionToken is the engine-minted handle binding a pending login to its
// stored challenge. 256 bits of entropy, hex on the wire.
type SessionToken [sessionTokenBytes]byte

// NewSessionToken draws a fresh token from crypto/rand.
func NewSessionToken() (SessionToken, error) {
	var token SessionToken
	_, err := rand.Read(token[:])
	return token, err
}

func (t SessionToken) Bytes() []byte {
	return t[:]
}

func (t SessionToken) String() string {
	return hex.EncodeToString(t[:])
}

// ParseSessionToken decodes a wire-format token. Any malformed input is an
// error; callers treat it the same as an unknown token.
func ParseSessionToken(sessionToken string) (SessionToken, error) {
	var token SessionToken

	raw, err := hex.DecodeString(sessionToken)
	if err != nil {
		return token, err
	}
	if len(raw) != len(token) {
		return token, errors.New("invalid session token size")
	}

	copy(token[:], raw)
	return token, nil
}
