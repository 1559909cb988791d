// Package sqlstore keeps refresh registry entries in the account database,
// so tokens survive restarts without another moving part.
package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/campusid/auth/internal/auth/registry"
	"github.com/campusid/auth/internal/auth/store"
	"github.com/campusid/auth/pkg/cryptox"
)

type Registry struct {
	st store.Store

	// Now is the clock used to hide expired rows from Lookup.
	Now func() time.Time
}

var _ registry.Registry = (*Registry)(nil)

func New(st store.Store) *Registry {
	return &Registry{st: st, Now: time.Now}
}

func (r *Registry) Insert(ctx context.Context, token, accountID string, expiresAt time.Time) error {
	return r.st.RefreshTokens().CreateRefreshToken(ctx, cryptox.FingerprintToken(token), accountID, expiresAt)
}

func (r *Registry) Lookup(ctx context.Context, token string) (string, error) {
	accountID, expiresAt, err := r.st.RefreshTokens().GetRefreshToken(ctx, cryptox.FingerprintToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return "", registry.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if !r.Now().Before(expiresAt) {
		return "", registry.ErrNotFound
	}
	return accountID, nil
}

func (r *Registry) Revoke(ctx context.Context, token string) error {
	return r.st.RefreshTokens().DeleteRefreshToken(ctx, cryptox.FingerprintToken(token))
}

func (r *Registry) EvictExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.st.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now)
}

func (r *Registry) Ping(ctx context.Context) error {
	return r.st.Ping(ctx)
}
