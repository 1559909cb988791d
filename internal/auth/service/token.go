package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusid/auth/internal/auth/domain"
	"github.com/campusid/auth/internal/auth/metrics"
	"github.com/campusid/auth/internal/auth/registry"
	"github.com/campusid/auth/internal/auth/store"
	"github.com/campusid/auth/pkg/cryptox"
	"github.com/campusid/auth/pkg/jwtx"
)

// Development secrets. Config validation refuses them in production.
const (
	DefaultAccessSecret  = "test_jwt_secret"
	refreshSecretSuffix  = "_refresh"
	DefaultRefreshSecret = DefaultAccessSecret + refreshSecretSuffix
)

// DeriveRefreshSecret returns the refresh secret used when none is
// configured explicitly.
func DeriveRefreshSecret(accessSecret string) string {
	return accessSecret + refreshSecretSuffix
}

// TokenConfig carries the signing material and lifetimes of both token kinds.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenService mints and checks access and refresh tokens. Access tokens are
// stateless. Refresh tokens are only honoured while present in Registry.
type TokenService struct {
	Store    store.Store
	Registry registry.Registry
	Metrics  *metrics.Metrics

	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now is the clock for issuing and verifying. Defaults to time.Now.
	Now func() time.Time

	accessSigner    jwtx.Signer
	accessVerifier  *jwtx.HS256Verifier
	refreshSigner   jwtx.Signer
	refreshVerifier *jwtx.HS256Verifier
}

func NewTokenService(cfg TokenConfig, st store.Store, reg registry.Registry) (*TokenService, error) {
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = DeriveRefreshSecret(cfg.AccessSecret)
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = jwtx.DefaultAccessTokenTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = jwtx.DefaultRefreshTokenTTL
	}

	s := &TokenService{
		Store:      st,
		Registry:   reg,
		Issuer:     cfg.Issuer,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
		Now:        time.Now,
	}

	var err error
	if s.accessSigner, err = jwtx.NewSignerHS256(cfg.AccessSecret); err != nil {
		return nil, fmt.Errorf("access signer: %w", err)
	}
	if s.accessVerifier, err = jwtx.NewVerifierHS256(cfg.AccessSecret, cfg.Issuer); err != nil {
		return nil, fmt.Errorf("access verifier: %w", err)
	}
	if s.refreshSigner, err = jwtx.NewSignerHS256(cfg.RefreshSecret); err != nil {
		return nil, fmt.Errorf("refresh signer: %w", err)
	}
	if s.refreshVerifier, err = jwtx.NewVerifierHS256(cfg.RefreshSecret, cfg.Issuer); err != nil {
		return nil, fmt.Errorf("refresh verifier: %w", err)
	}

	s.accessVerifier.Now = s.now
	s.refreshVerifier.Now = s.now
	return s, nil
}

func (s *TokenService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// IssueAccessToken signs a short lived token carrying id, role and email.
func (s *TokenService) IssueAccessToken(a domain.Account) (string, error) {
	jti, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", err
	}

	claims := jwtx.NewAccessClaims(a.ID, a.Role.String(), a.Email, s.Issuer, jti, s.AccessTTL, s.now())
	token, err := s.accessSigner.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	s.Metrics.TokenIssued(metrics.TokenAccess)
	return token, nil
}

// IssueRefreshToken signs a refresh token carrying only the account id and
// registers it until it expires.
func (s *TokenService) IssueRefreshToken(ctx context.Context, a domain.Account) (string, error) {
	jti, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", err
	}

	now := s.now()
	claims := jwtx.NewRefreshClaims(a.ID, s.Issuer, jti, s.RefreshTTL, now)
	token, err := s.refreshSigner.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.Registry.Insert(ctx, token, a.ID, claims.ExpiresAt.Time); err != nil {
		return "", fmt.Errorf("register refresh token: %w", err)
	}

	s.Metrics.TokenIssued(metrics.TokenRefresh)
	return token, nil
}

// VerifyAccessToken checks signature, algorithm and expiry. Every failure is
// reported as ErrInvalidToken.
func (s *TokenService) VerifyAccessToken(token string) (jwtx.Claims, error) {
	claims, err := s.accessVerifier.Verify(token)
	if err != nil {
		return jwtx.Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefreshToken consults the registry before any cryptographic check,
// then verifies the token against the refresh secret. The registered account
// must match the token's id claim.
func (s *TokenService) VerifyRefreshToken(ctx context.Context, token string) (jwtx.Claims, error) {
	accountID, err := s.Registry.Lookup(ctx, token)
	if errors.Is(err, registry.ErrNotFound) {
		return jwtx.Claims{}, ErrInvalidToken
	}
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("lookup refresh token: %w", err)
	}

	claims, err := s.refreshVerifier.Verify(token)
	if err != nil {
		return jwtx.Claims{}, ErrInvalidToken
	}
	if claims.AccountID != accountID {
		return jwtx.Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// RotateAccess exchanges a live refresh token for a new access token. The
// refresh token itself stays valid.
func (s *TokenService) RotateAccess(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, claims.AccountID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrAccountNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load account: %w", err)
	}

	return s.IssueAccessToken(account)
}

// RevokeRefreshToken removes token from the registry. Unknown tokens are
// ignored.
func (s *TokenService) RevokeRefreshToken(ctx context.Context, token string) error {
	return s.Registry.Revoke(ctx, token)
}
