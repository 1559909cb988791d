package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusid/auth/internal/auth/domain"
	"github.com/campusid/auth/internal/auth/store"
	"github.com/campusid/auth/internal/auth/store/drivers/sqlite"
	"github.com/campusid/auth/pkg/idx"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func strPtr(s string) *string { return &s }

func TestAccounts_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	empty, err := s.Accounts().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	acc := domain.Account{
		ID:           idx.New().String(),
		Role:         domain.RoleStudent,
		Login:        strPtr("AB123456"),
		PasswordHash: "hash",
	}
	require.NoError(t, s.Accounts().CreateAccount(ctx, acc))

	got, err := s.Accounts().GetAccountByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleStudent, got.Role)
	require.NotNil(t, got.Login)
	require.Equal(t, "AB123456", *got.Login)
	require.Empty(t, got.Email)
	require.False(t, got.CreatedAt.IsZero())

	empty, err = s.Accounts().IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)

	_, err = s.Accounts().GetAccountByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Accounts().GetAccountByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccounts_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := domain.Account{
		ID:           idx.New().String(),
		Email:        "a@example.com",
		Role:         domain.RoleTeacher,
		Login:        strPtr("CD000001"),
		PasswordHash: "hash",
	}
	require.NoError(t, s.Accounts().CreateAccount(ctx, first))

	t.Run("duplicate email", func(t *testing.T) {
		err := s.Accounts().CreateAccount(ctx, domain.Account{
			ID:           idx.New().String(),
			Email:        "a@example.com",
			Role:         domain.RoleStudent,
			PasswordHash: "hash",
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate login", func(t *testing.T) {
		err := s.Accounts().CreateAccount(ctx, domain.Account{
			ID:           idx.New().String(),
			Role:         domain.RoleStudent,
			Login:        strPtr("CD000001"),
			PasswordHash: "hash",
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("several accounts without email", func(t *testing.T) {
		for range 2 {
			require.NoError(t, s.Accounts().CreateAccount(ctx, domain.Account{
				ID:           idx.New().String(),
				Role:         domain.RoleStudent,
				PasswordHash: "hash",
			}))
		}
	})

	t.Run("update onto a taken email", func(t *testing.T) {
		other := domain.Account{
			ID:           idx.New().String(),
			Email:        "b@example.com",
			Role:         domain.RoleStudent,
			PasswordHash: "hash",
		}
		require.NoError(t, s.Accounts().CreateAccount(ctx, other))

		_, err := s.Accounts().UpdateAccount(ctx, other.ID, domain.AccountPatch{Email: strPtr("a@example.com")})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})
}

func TestAccounts_Update(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	acc := domain.Account{
		ID:           idx.New().String(),
		Role:         domain.RoleStudent,
		PasswordHash: "old",
	}
	require.NoError(t, s.Accounts().CreateAccount(ctx, acc))

	admin := domain.RoleAdmin
	got, err := s.Accounts().UpdateAccount(ctx, acc.ID, domain.AccountPatch{
		FirstName:    strPtr("Ada"),
		LastName:     strPtr("Lovelace"),
		Email:        strPtr("ada@example.com"),
		Role:         &admin,
		PasswordHash: strPtr("new"),
	})
	require.NoError(t, err)
	require.Equal(t, "Ada", got.FirstName)
	require.Equal(t, "Lovelace", got.LastName)
	require.Equal(t, "ada@example.com", got.Email)
	require.Equal(t, domain.RoleAdmin, got.Role)
	require.Equal(t, "new", got.PasswordHash)

	byEmail, err := s.Accounts().GetAccountByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, acc.ID, byEmail.ID)

	unchanged, err := s.Accounts().UpdateAccount(ctx, acc.ID, domain.AccountPatch{})
	require.NoError(t, err)
	require.Equal(t, got.Email, unchanged.Email)

	_, err = s.Accounts().UpdateAccount(ctx, "missing", domain.AccountPatch{FirstName: strPtr("x")})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccounts_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var ids []string
	for i := range 7 {
		id := idx.NewAt(time.Now().Add(time.Duration(i) * time.Millisecond)).String()
		ids = append(ids, id)

		var login *string
		if i == 3 {
			login = strPtr("EF333333")
		}
		require.NoError(t, s.Accounts().CreateAccount(ctx, domain.Account{
			ID:           id,
			Role:         domain.RoleStudent,
			Login:        login,
			PasswordHash: "hash",
		}))
	}

	tests := []struct {
		name    string
		filter  domain.ListFilter
		wantLen int
		wantTop string
	}{
		{name: "default limit", filter: domain.ListFilter{}, wantLen: domain.DefaultListLimit, wantTop: ids[6]},
		{name: "explicit limit", filter: domain.ListFilter{Limit: 2}, wantLen: 2, wantTop: ids[6]},
		{name: "all", filter: domain.ListFilter{All: true}, wantLen: 7, wantTop: ids[6]},
		{name: "by login", filter: domain.ListFilter{Login: strPtr("EF333333"), Limit: 1}, wantLen: 1, wantTop: ids[3]},
		{name: "unknown login", filter: domain.ListFilter{Login: strPtr("ZZ")}, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Accounts().ListAccounts(ctx, tt.filter)
			require.NoError(t, err)
			require.Len(t, got, tt.wantLen)
			if tt.wantLen > 0 {
				require.Equal(t, tt.wantTop, got[0].ID)
			}
		})
	}

	deleted, err := s.Accounts().DeleteAccount(ctx, ids[0])
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = s.Accounts().DeleteAccount(ctx, ids[0])
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestRefreshTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	acc := domain.Account{ID: idx.New().String(), Role: domain.RoleStudent, PasswordHash: "hash"}
	require.NoError(t, s.Accounts().CreateAccount(ctx, acc))

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, "live", acc.ID, now.Add(time.Hour)))
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, "stale", acc.ID, now.Add(-time.Hour)))

	accountID, exp, err := s.RefreshTokens().GetRefreshToken(ctx, "live")
	require.NoError(t, err)
	require.Equal(t, acc.ID, accountID)
	require.True(t, exp.Equal(now.Add(time.Hour)))

	n, err := s.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, _, err = s.RefreshTokens().GetRefreshToken(ctx, "stale")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.RefreshTokens().DeleteRefreshToken(ctx, "live"))
	require.NoError(t, s.RefreshTokens().DeleteRefreshToken(ctx, "live"))

	_, _, err = s.RefreshTokens().GetRefreshToken(ctx, "live")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshTokens_CascadeOnAccountDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	acc := domain.Account{ID: idx.New().String(), Role: domain.RoleStudent, PasswordHash: "hash"}
	require.NoError(t, s.Accounts().CreateAccount(ctx, acc))
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, "fp", acc.ID, time.Now().Add(time.Hour)))

	_, err := s.Accounts().DeleteAccount(ctx, acc.ID)
	require.NoError(t, err)

	_, _, err = s.RefreshTokens().GetRefreshToken(ctx, "fp")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().CreateAccount(ctx, domain.Account{
			ID:           idx.New().String(),
			Role:         domain.RoleStudent,
			PasswordHash: "hash",
		}); err != nil {
			return err
		}
		return store.ErrNotFound
	})
	require.ErrorIs(t, err, store.ErrNotFound)

	empty, err := s.Accounts().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)
}
