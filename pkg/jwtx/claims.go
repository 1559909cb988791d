package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Services override them through configuration.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the payload of both token kinds. Access tokens carry the account
// id, role and email. Refresh tokens carry the account id only.
type Claims struct {
	jwt.RegisteredClaims

	// AccountID is the authenticated account.
	AccountID string `json:"id"`

	// Role is the account role at issue time, lower case.
	Role string `json:"role,omitempty"`

	// Email is the account email at issue time, empty when none was on record.
	Email string `json:"email,omitempty"`
}

// NewAccessClaims builds the claims for a short lived access token.
func NewAccessClaims(
	accountID, role, email string,
	issuer, jti string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: registered(accountID, issuer, jti, ttl, now),
		AccountID:        accountID,
		Role:             role,
		Email:            email,
	}
}

// NewRefreshClaims builds the claims for a refresh token.
func NewRefreshClaims(accountID, issuer, jti string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: registered(accountID, issuer, jti, ttl, now),
		AccountID:        accountID,
	}
}

func registered(subject, issuer, jti string, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        jti,
	}
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}
