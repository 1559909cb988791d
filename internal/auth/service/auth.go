package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/campusid/auth/internal/auth/domain"
	"github.com/campusid/auth/internal/auth/metrics"
	"github.com/campusid/auth/internal/auth/store"
	"github.com/campusid/auth/pkg/cryptox"
	"github.com/campusid/auth/pkg/slogx"
)

// AuthService drives sign-in, token refresh, logout and profile self-service.
type AuthService struct {
	Store   store.Store
	Tokens  *TokenService
	Metrics *metrics.Metrics
}

// decoyHash is compared against when the email is unknown so that both
// failure paths cost one bcrypt comparison.
var decoyHash = sync.OnceValue(func() string {
	h, _ := cryptox.HashPassword("campus-auth-decoy")
	return h
})

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies email and password and returns a credential bundle. An
// unknown email and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.CredentialBundle, error) {
	l := slogx.FromContext(ctx)

	// 1. Find the account
	account, err := s.Store.Accounts().GetAccountByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		cryptox.CheckPassword(password, decoyHash())
		s.Metrics.Login(metrics.LoginInvalidCredentials)
		return domain.CredentialBundle{}, ErrInvalidCredentials
	}
	if err != nil {
		s.Metrics.Login(metrics.LoginError)
		l.Error("failed to load account for login", slog.Any("error", err))
		return domain.CredentialBundle{}, fmt.Errorf("load account: %w", err)
	}

	// 2. Check the secret
	if !cryptox.CheckPassword(password, account.PasswordHash) {
		s.Metrics.Login(metrics.LoginInvalidCredentials)
		l.Info("login rejected", slog.String("account_id", account.ID))
		return domain.CredentialBundle{}, ErrInvalidCredentials
	}

	// 3. Mint both tokens
	access, err := s.Tokens.IssueAccessToken(account)
	if err != nil {
		s.Metrics.Login(metrics.LoginError)
		l.Error("failed to issue access token", slog.Any("error", err))
		return domain.CredentialBundle{}, err
	}
	refresh, err := s.Tokens.IssueRefreshToken(ctx, account)
	if err != nil {
		s.Metrics.Login(metrics.LoginError)
		l.Error("failed to issue refresh token", slog.Any("error", err))
		return domain.CredentialBundle{}, err
	}

	s.Metrics.Login(metrics.LoginSuccess)
	l.Info("login succeeded", slog.String("account_id", account.ID))

	// 4. Derive the gating flags from the current record
	return domain.CredentialBundle{
		AccessToken:         access,
		RefreshToken:        refresh,
		Account:             account.View(),
		MustChangePassword:  account.InBootstrapState(cryptox.CheckPassword),
		MustCompleteProfile: account.ProfileIncomplete(),
	}, nil
}

// RefreshAccessToken exchanges a refresh token for a new access token.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	return s.Tokens.RotateAccess(ctx, refreshToken)
}

// Logout revokes a refresh token. It succeeds whether or not the token was
// registered.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.Tokens.RevokeRefreshToken(ctx, refreshToken); err != nil {
		slogx.FromContext(ctx).Error("failed to revoke refresh token", slog.Any("error", err))
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// WhoAmI verifies an access token and returns the current account record.
func (s *AuthService) WhoAmI(ctx context.Context, accessToken string) (domain.AccountView, error) {
	claims, err := s.Tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return domain.AccountView{}, err
	}
	return s.Account(ctx, claims.AccountID)
}

// Account returns the current record of an already authenticated account.
func (s *AuthService) Account(ctx context.Context, accountID string) (domain.AccountView, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.AccountView{}, ErrAccountNotFound
	}
	if err != nil {
		return domain.AccountView{}, fmt.Errorf("load account: %w", err)
	}
	return account.View(), nil
}

// UpdateProfile applies a self-service change. A password change needs the
// current password unless the account still uses its CIN as password.
func (s *AuthService) UpdateProfile(
	ctx context.Context,
	accountID string,
	upd domain.ProfileUpdate,
) (domain.AccountView, error) {
	l := slogx.FromContext(ctx)
	var updated domain.Account

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Load the account
		account, err := tx.Accounts().GetAccountByID(ctx, accountID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("load account: %w", err)
		}

		patch := domain.AccountPatch{
			FirstName: nonEmpty(upd.FirstName),
			LastName:  nonEmpty(upd.LastName),
		}

		// 2. Email changes must not collide with another account
		if upd.Email != nil {
			email := NormalizeEmail(*upd.Email)
			if email != "" && email != account.Email {
				other, err := tx.Accounts().GetAccountByEmail(ctx, email)
				switch {
				case err == nil && other.ID != account.ID:
					return ErrEmailConflict
				case err != nil && !errors.Is(err, store.ErrNotFound):
					return fmt.Errorf("check email: %w", err)
				}
				patch.Email = &email
			}
		}

		// 3. Password change, gated on bootstrap state
		if upd.NewPassword != nil && *upd.NewPassword != "" {
			if len(*upd.NewPassword) < MinPasswordLength {
				return ErrPasswordPolicy
			}

			if !account.InBootstrapState(cryptox.CheckPassword) {
				if upd.CurrentPassword == nil || *upd.CurrentPassword == "" {
					return ErrCurrentPasswordRequired
				}
				if !cryptox.CheckPassword(*upd.CurrentPassword, account.PasswordHash) {
					return ErrBadCredentials
				}
			}

			hash, err := cryptox.HashPassword(*upd.NewPassword)
			if errors.Is(err, cryptox.ErrPasswordTooLong) {
				return ErrPasswordPolicy
			}
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			patch.PasswordHash = &hash
		}

		// 4. Apply only what was provided
		updated, err = tx.Accounts().UpdateAccount(ctx, account.ID, patch)
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			return ErrEmailConflict
		case errors.Is(err, store.ErrNotFound):
			return ErrAccountNotFound
		case err != nil:
			return fmt.Errorf("update account: %w", err)
		}
		return nil
	})
	if err != nil {
		if !isExpected(err) {
			l.Error("failed to update profile", slog.String("account_id", accountID), slog.Any("error", err))
		}
		return domain.AccountView{}, err
	}

	l.Info("profile updated", slog.String("account_id", accountID),
		slog.Bool("password_changed", upd.NewPassword != nil && *upd.NewPassword != ""))
	return updated.View(), nil
}

// nonEmpty trims s and returns nil when nothing is left, so blank fields in a
// request leave the stored value alone.
func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// isExpected reports whether err is one of the service's own outcomes rather
// than an infrastructure failure.
func isExpected(err error) bool {
	for _, target := range []error{
		ErrInvalidInput, ErrInvalidCredentials, ErrEmailConflict, ErrPasswordPolicy,
		ErrCurrentPasswordRequired, ErrBadCredentials,
		ErrInvalidToken, ErrForbidden, ErrNotFound, ErrAccountNotFound,
		ErrSetupDisabled, ErrSetupUnauthorized, ErrAlreadySetUp,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
