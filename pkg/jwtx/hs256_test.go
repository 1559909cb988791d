package jwtx_test

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/campusid/auth/pkg/jwtx"
)

func newPair(t *testing.T, secret, issuer string) (*jwtx.HS256Signer, *jwtx.HS256Verifier) {
	t.Helper()

	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(secret, issuer)
	require.NoError(t, err)
	return signer, verifier
}

func TestHS256_RoundTrip(t *testing.T) {
	signer, verifier := newPair(t, "test_jwt_secret", "campus-auth")
	require.Equal(t, "HS256", signer.Alg())

	now := time.Now()
	token, err := signer.Sign(jwtx.NewAccessClaims("acc-1", "teacher", "t@example.com", "campus-auth", "jti", time.Minute, now))
	require.NoError(t, err)

	claims, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "acc-1", claims.AccountID)
	require.Equal(t, "teacher", claims.Role)
	require.Equal(t, "t@example.com", claims.Email)

	// The payload uses the short field names clients read.
	payload, err := base64.RawURLEncoding.DecodeString(strings.Split(token, ".")[1])
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))
	require.Equal(t, "acc-1", raw["id"])
	require.Equal(t, "teacher", raw["role"])
	require.Equal(t, "t@example.com", raw["email"])
}

func TestHS256_Rejects(t *testing.T) {
	signer, verifier := newPair(t, "test_jwt_secret", "campus-auth")
	otherSigner, _ := newPair(t, "test_jwt_secret_refresh", "campus-auth")
	now := time.Now()

	sign := func(s *jwtx.HS256Signer, c jwtx.Claims) string {
		tok, err := s.Sign(c)
		require.NoError(t, err)
		return tok
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone,
		jwtx.NewRefreshClaims("acc-1", "campus-auth", "jti", time.Minute, now),
	).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:    "malformed",
			token:   "not-a-jwt",
			wantErr: jwtx.ErrMalformed,
		},
		{
			name:    "wrong secret",
			token:   sign(otherSigner, jwtx.NewRefreshClaims("acc-1", "campus-auth", "jti", time.Minute, now)),
			wantErr: jwtx.ErrInvalidSig,
		},
		{
			name:    "expired",
			token:   sign(signer, jwtx.NewRefreshClaims("acc-1", "campus-auth", "jti", time.Minute, now.Add(-time.Hour))),
			wantErr: jwtx.ErrExpired,
		},
		{
			name:    "issuer mismatch",
			token:   sign(signer, jwtx.NewRefreshClaims("acc-1", "elsewhere", "jti", time.Minute, now)),
			wantErr: jwtx.ErrIssuer,
		},
		{
			name:    "missing account id",
			token:   sign(signer, jwtx.NewRefreshClaims("", "campus-auth", "jti", time.Minute, now)),
			wantErr: jwtx.ErrInvalidClaim,
		},
		{
			name:    "alg none",
			token:   noneToken,
			wantErr: jwtx.ErrInvalidSig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHS256_Clock(t *testing.T) {
	signer, verifier := newPair(t, "test_jwt_secret", "")
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := signer.Sign(jwtx.NewRefreshClaims("acc-1", "", "jti", 15*time.Minute, issued))
	require.NoError(t, err)

	verifier.Now = func() time.Time { return issued.Add(14 * time.Minute) }
	_, err = verifier.Verify(token)
	require.NoError(t, err)

	verifier.Now = func() time.Time { return issued.Add(16 * time.Minute) }
	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestHS256_EmptySecret(t *testing.T) {
	_, err := jwtx.NewSignerHS256("")
	require.ErrorIs(t, err, jwtx.ErrEmptySecret)

	_, err = jwtx.NewVerifierHS256("", "")
	require.ErrorIs(t, err, jwtx.ErrEmptySecret)
}
