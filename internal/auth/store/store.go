package store

import (
	"context"
	"errors"
	"time"

	"github.com/campusid/auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories hang off it so a Tx can expose the same
// surface without letting callers open a transaction inside a transaction.
type Store interface {
	Accounts() Accounts
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Accounts is the narrow record-access surface the auth core consumes.
type Accounts interface {
	// GetAccountByID returns ErrNotFound when no account has the id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail is used during login and email uniqueness checks.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by the caller).
	// Returns ErrAlreadyExists when email or login is already taken.
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpdateAccount applies the non-nil fields of patch, bumps updated_at and
	// returns the stored row. Returns ErrNotFound or ErrAlreadyExists.
	UpdateAccount(ctx context.Context, id string, patch domain.AccountPatch) (domain.Account, error)

	// ListAccounts returns accounts ordered by id, newest first.
	ListAccounts(ctx context.Context, filter domain.ListFilter) ([]domain.Account, error)

	// DeleteAccount reports false, without error, when the id is unknown.
	DeleteAccount(ctx context.Context, id string) (bool, error)

	// IsEmpty returns true if there are no accounts.
	IsEmpty(ctx context.Context) (bool, error)
}

// RefreshTokens persists refresh registry entries keyed by token fingerprint.
type RefreshTokens interface {
	// CreateRefreshToken stores a fingerprint. Re-inserting the same
	// fingerprint overwrites the previous entry.
	CreateRefreshToken(ctx context.Context, fingerprint, accountID string, expiresAt time.Time) error

	// GetRefreshToken returns the account id and expiry for a fingerprint.
	GetRefreshToken(ctx context.Context, fingerprint string) (accountID string, expiresAt time.Time, err error)

	// DeleteRefreshToken removes one entry. Missing entries are not an error.
	DeleteRefreshToken(ctx context.Context, fingerprint string) error

	// DeleteExpiredRefreshTokens removes entries whose expiry is at or before now
	// and reports how many were removed.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}
