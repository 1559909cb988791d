// Package memory is a process-local refresh registry. Entries are lost on
// restart, so every refresh token is invalidated when the service restarts.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/campusid/auth/internal/auth/registry"
	"github.com/campusid/auth/pkg/cryptox"
)

type entry struct {
	accountID string
	expiresAt time.Time
}

type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry

	// Now is the clock used to hide expired entries from Lookup.
	Now func() time.Time
}

var _ registry.Registry = (*Registry)(nil)

func New() *Registry {
	return &Registry{
		entries: make(map[string]entry),
		Now:     time.Now,
	}
}

func (r *Registry) Insert(_ context.Context, token, accountID string, expiresAt time.Time) error {
	key := cryptox.FingerprintToken(token)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = entry{accountID: accountID, expiresAt: expiresAt}
	return nil
}

func (r *Registry) Lookup(_ context.Context, token string) (string, error) {
	key := cryptox.FingerprintToken(token)

	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()

	if !ok || !r.Now().Before(e.expiresAt) {
		return "", registry.ErrNotFound
	}
	return e.accountID, nil
}

func (r *Registry) Revoke(_ context.Context, token string) error {
	key := cryptox.FingerprintToken(token)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
	return nil
}

func (r *Registry) EvictExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for key, e := range r.entries {
		if !now.Before(e.expiresAt) {
			delete(r.entries, key)
			n++
		}
	}
	return n, nil
}

func (r *Registry) Ping(context.Context) error { return nil }

// Len reports the number of entries, expired ones included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
