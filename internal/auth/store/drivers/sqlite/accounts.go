package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/campusid/auth/internal/auth/domain"
	"github.com/campusid/auth/internal/auth/store"
)

const accountColumns = `id, first_name, last_name, email, role, login, password_hash, created_at, updated_at`

type accountsRepo struct {
	q dbtx
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.FirstName,
		a.LastName,
		mapStringNull(a.Email),
		a.Role.String(),
		mapOptionalString(a.Login),
		a.PasswordHash,
		a.CreatedAt.UTC(),
		a.UpdatedAt.UTC(),
	)
	return mapConflict(err)
}

func (r *accountsRepo) UpdateAccount(
	ctx context.Context,
	id string,
	patch domain.AccountPatch,
) (domain.Account, error) {
	if patch.IsEmpty() {
		return r.GetAccountByID(ctx, id)
	}

	// 1. Build the SET clause from the provided fields only
	var (
		sets []string
		args []any
	)
	if patch.FirstName != nil {
		sets = append(sets, "first_name = ?")
		args = append(args, *patch.FirstName)
	}
	if patch.LastName != nil {
		sets = append(sets, "last_name = ?")
		args = append(args, *patch.LastName)
	}
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, mapStringNull(*patch.Email))
	}
	if patch.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, patch.Role.String())
	}
	if patch.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *patch.PasswordHash)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	// 2. Apply the update
	res, err := r.q.ExecContext(ctx,
		`UPDATE accounts SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
		args...,
	)
	if err != nil {
		return domain.Account{}, mapConflict(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Account{}, store.ErrNotFound
	}

	// 3. Read back the stored row
	return r.GetAccountByID(ctx, id)
}

func (r *accountsRepo) ListAccounts(ctx context.Context, filter domain.ListFilter) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	var args []any

	if filter.Login != nil {
		query += ` WHERE login = ?`
		args = append(args, *filter.Login)
	}
	query += ` ORDER BY id DESC`
	if limit := filter.EffectiveLimit(); limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, id string) (bool, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a       domain.Account
		email   sql.NullString
		login   sql.NullString
		roleStr string
	)
	err := row.Scan(
		&a.ID,
		&a.FirstName,
		&a.LastName,
		&email,
		&roleStr,
		&login,
		&a.PasswordHash,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}

	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return domain.Account{}, fmt.Errorf("sqlite: account %s: %w", a.ID, err)
	}

	a.Email = mapNullString(email)
	a.Login = mapNullStringPtr(login)
	a.Role = role
	return a, nil
}
