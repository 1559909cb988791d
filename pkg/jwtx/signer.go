package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret is returned when an HMAC key is empty.
var ErrEmptySecret = errors.New("jwtx: empty signing secret")

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs tokens with a shared HMAC SHA-256 secret.
type HS256Signer struct {
	key []byte
}

// NewSignerHS256 returns a signer for secret. The secret must not be empty.
func NewSignerHS256(secret string) (*HS256Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &HS256Signer{key: []byte(secret)}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}
