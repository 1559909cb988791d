package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/campusid/auth/internal/auth/domain"
	"github.com/campusid/auth/internal/auth/store"
	"github.com/campusid/auth/pkg/cryptox"
	"github.com/campusid/auth/pkg/idx"
	"github.com/campusid/auth/pkg/slogx"
)

// SetupService creates the first administrator of an empty installation.
type SetupService struct {
	Store store.Store
	Token string // SETUP_TOKEN; empty disables setup
}

// Enabled reports whether a setup token is configured.
func (s *SetupService) Enabled() bool { return s.Token != "" }

// Setup creates an admin account with a real password. It only succeeds
// while the account store is empty.
func (s *SetupService) Setup(ctx context.Context, token string, data domain.SetupData) (domain.AccountView, error) {
	l := slogx.FromContext(ctx)

	// 1. Check it is enabled and the caller holds the token
	if !s.Enabled() {
		return domain.AccountView{}, ErrSetupDisabled
	}
	if !cryptox.TokensEqual(token, s.Token) {
		l.Warn("unauthorized setup attempt")
		return domain.AccountView{}, ErrSetupUnauthorized
	}

	// 2. Validate the administrator
	email := NormalizeEmail(data.Email)
	first := strings.TrimSpace(data.FirstName)
	last := strings.TrimSpace(data.LastName)
	if email == "" || first == "" || last == "" {
		return domain.AccountView{}, ErrInvalidInput
	}
	if len(data.Password) < MinPasswordLength {
		return domain.AccountView{}, ErrPasswordPolicy
	}

	hash, err := cryptox.HashPassword(data.Password)
	if errors.Is(err, cryptox.ErrPasswordTooLong) {
		return domain.AccountView{}, ErrPasswordPolicy
	}
	if err != nil {
		return domain.AccountView{}, fmt.Errorf("hash password: %w", err)
	}

	admin := domain.Account{
		ID:           idx.New().String(),
		FirstName:    first,
		LastName:     last,
		Email:        email,
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
	}

	// 3. Create it only if nobody exists yet
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Accounts().IsEmpty(ctx)
		if err != nil {
			return fmt.Errorf("check empty: %w", err)
		}
		if !empty {
			return ErrAlreadySetUp
		}
		return tx.Accounts().CreateAccount(ctx, admin)
	})
	switch {
	case errors.Is(err, ErrAlreadySetUp):
		l.Warn("setup attempted on an initialised system")
		return domain.AccountView{}, err
	case errors.Is(err, store.ErrAlreadyExists):
		return domain.AccountView{}, ErrAlreadySetUp
	case err != nil:
		l.Error("failed to create first admin", slog.Any("error", err))
		return domain.AccountView{}, err
	}

	l.Info("system setup completed", slog.String("admin_id", admin.ID))
	return admin.View(), nil
}
