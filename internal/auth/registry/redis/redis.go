// Package redis keeps refresh registry entries in Redis. Each entry is a key
// whose TTL is the token expiry, so Redis evicts expired tokens on its own.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/campusid/auth/internal/auth/registry"
	"github.com/campusid/auth/pkg/cryptox"
)

// DefaultPrefix namespaces registry keys.
const DefaultPrefix = "campus-auth:refresh:"

type Registry struct {
	client goredis.UniversalClient
	prefix string

	// Now is the clock used to compute key TTLs.
	Now func() time.Time
}

var _ registry.Registry = (*Registry)(nil)

// New returns a registry on client. An empty prefix uses DefaultPrefix.
func New(client goredis.UniversalClient, prefix string) *Registry {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Registry{client: client, prefix: prefix, Now: time.Now}
}

func (r *Registry) key(token string) string {
	return r.prefix + cryptox.FingerprintToken(token)
}

func (r *Registry) Insert(ctx context.Context, token, accountID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.Now())
	if ttl <= 0 {
		// Already expired: make sure no stale entry survives.
		return r.client.Del(ctx, r.key(token)).Err()
	}
	return r.client.Set(ctx, r.key(token), accountID, ttl).Err()
}

func (r *Registry) Lookup(ctx context.Context, token string) (string, error) {
	id, err := r.client.Get(ctx, r.key(token)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", registry.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Registry) Revoke(ctx context.Context, token string) error {
	return r.client.Del(ctx, r.key(token)).Err()
}

// EvictExpired is a no-op: key TTLs already remove expired entries.
func (r *Registry) EvictExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (r *Registry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
