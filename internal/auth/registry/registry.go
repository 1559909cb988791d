package registry

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Lookup for tokens that were never registered,
// were revoked, or have expired.
var ErrNotFound = errors.New("registry: token not registered")

// Registry tracks which refresh tokens are live. A refresh token is only
// honoured while it is registered, which is what makes logout effective.
// Implementations are safe for concurrent use.
type Registry interface {
	// Insert registers token for accountID until expiresAt. Re-inserting a
	// token overwrites the previous entry.
	Insert(ctx context.Context, token, accountID string, expiresAt time.Time) error

	// Lookup returns the account a token was issued to, or ErrNotFound.
	Lookup(ctx context.Context, token string) (accountID string, err error)

	// Revoke removes token. Revoking an unknown token is not an error.
	Revoke(ctx context.Context, token string) error

	// EvictExpired drops entries whose expiry is at or before now and
	// reports how many were removed.
	EvictExpired(ctx context.Context, now time.Time) (int64, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
