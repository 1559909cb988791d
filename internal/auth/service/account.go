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

// AccountService is the administrator surface over accounts.
type AccountService struct {
	Store store.Store
}

// BootstrapAccount provisions an account whose login and initial password are
// both the CIN. The CIN is returned once as InitialCredentials and only its
// hash is stored.
func (s *AccountService) BootstrapAccount(
	ctx context.Context,
	in domain.NewAccount,
) (domain.AccountView, domain.InitialCredentials, error) {
	l := slogx.FromContext(ctx)

	// 1. Re-check the invariants the handler validated
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = NormalizeEmail(in.Email)
	in.CIN = strings.TrimSpace(in.CIN)
	if in.FirstName == "" || in.LastName == "" || in.Email == "" ||
		!in.Role.Valid() || len(in.CIN) < MinCINLength {
		return domain.AccountView{}, domain.InitialCredentials{}, ErrInvalidInput
	}

	// 2. Refuse a known email before doing any work
	_, err := s.Store.Accounts().GetAccountByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return domain.AccountView{}, domain.InitialCredentials{}, ErrEmailConflict
	case !errors.Is(err, store.ErrNotFound):
		return domain.AccountView{}, domain.InitialCredentials{}, fmt.Errorf("check email: %w", err)
	}

	// 3. Hash the CIN as the initial password
	hash, err := cryptox.HashPassword(in.CIN)
	if errors.Is(err, cryptox.ErrPasswordTooLong) {
		return domain.AccountView{}, domain.InitialCredentials{}, ErrInvalidInput
	}
	if err != nil {
		l.Error("failed to hash initial password", slog.Any("error", err))
		return domain.AccountView{}, domain.InitialCredentials{}, fmt.Errorf("hash cin: %w", err)
	}

	// 4. Insert; the unique indexes settle races and duplicate CINs
	login := in.CIN
	account := domain.Account{
		ID:           idx.New().String(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Role:         in.Role,
		Login:        &login,
		PasswordHash: hash,
	}
	err = s.Store.Accounts().CreateAccount(ctx, account)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.AccountView{}, domain.InitialCredentials{}, ErrEmailConflict
	}
	if err != nil {
		l.Error("failed to create account", slog.Any("error", err))
		return domain.AccountView{}, domain.InitialCredentials{}, fmt.Errorf("create account: %w", err)
	}

	l.Info("account provisioned",
		slog.String("account_id", account.ID),
		slog.String("role", account.Role.String()),
	)
	return account.View(), domain.InitialCredentials{Login: login}, nil
}

// ListUsers returns accounts newest first, filtered and capped per filter.
func (s *AccountService) ListUsers(ctx context.Context, filter domain.ListFilter) ([]domain.AccountView, error) {
	accounts, err := s.Store.Accounts().ListAccounts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	views := make([]domain.AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, a.View())
	}
	return views, nil
}

// UpdateUser patches names, email and role. Password changes are not part of
// the administrator surface and are dropped from the patch.
func (s *AccountService) UpdateUser(
	ctx context.Context,
	id string,
	patch domain.AccountPatch,
) (domain.AccountView, error) {
	patch.PasswordHash = nil
	patch.FirstName = nonEmpty(patch.FirstName)
	patch.LastName = nonEmpty(patch.LastName)

	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if email == "" {
			patch.Email = nil
		} else {
			patch.Email = &email
		}
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return domain.AccountView{}, ErrInvalidInput
	}

	updated, err := s.Store.Accounts().UpdateAccount(ctx, id, patch)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.AccountView{}, ErrNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return domain.AccountView{}, ErrEmailConflict
	case err != nil:
		slogx.FromContext(ctx).Error("failed to update account", slog.String("account_id", id), slog.Any("error", err))
		return domain.AccountView{}, fmt.Errorf("update account: %w", err)
	}

	return updated.View(), nil
}

// DeleteUser removes an account and reports whether it existed.
func (s *AccountService) DeleteUser(ctx context.Context, id string) (bool, error) {
	deleted, err := s.Store.Accounts().DeleteAccount(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete account: %w", err)
	}
	if deleted {
		slogx.FromContext(ctx).Info("account deleted", slog.String("account_id", id))
	}
	return deleted, nil
}
