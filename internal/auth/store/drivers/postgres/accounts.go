package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campusid/auth/internal/auth/domain"
)

const accountColumns = `id, first_name, last_name, email, role, login, password_hash, created_at, updated_at`

type accountsRepo struct {
	q querier
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	a, err := scanAccount(r.q.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	a, err := scanAccount(r.q.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
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

	_, err := r.q.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID,
		a.FirstName,
		a.LastName,
		nullIfEmpty(a.Email),
		a.Role.String(),
		a.Login,
		a.PasswordHash,
		a.CreatedAt,
		a.UpdatedAt,
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

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.FirstName != nil {
		set("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set("last_name", *patch.LastName)
	}
	if patch.Email != nil {
		set("email", nullIfEmpty(*patch.Email))
	}
	if patch.Role != nil {
		set("role", patch.Role.String())
	}
	if patch.PasswordHash != nil {
		set("password_hash", *patch.PasswordHash)
	}
	set("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE accounts SET %s WHERE id = $%d RETURNING `+accountColumns,
		strings.Join(sets, ", "), len(args),
	)
	a, err := scanAccount(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		return domain.Account{}, mapConflict(mapNotFound(err))
	}
	return a, nil
}

func (r *accountsRepo) ListAccounts(ctx context.Context, filter domain.ListFilter) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	var args []any

	if filter.Login != nil {
		args = append(args, *filter.Login)
		query += fmt.Sprintf(` WHERE login = $%d`, len(args))
	}
	query += ` ORDER BY id DESC`
	if limit := filter.EffectiveLimit(); limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
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
	tag, err := r.q.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts)`).Scan(&exists); err != nil {
		return false, err
	}
	return !exists, nil
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var (
		a       domain.Account
		email   *string
		roleStr string
	)
	err := row.Scan(
		&a.ID,
		&a.FirstName,
		&a.LastName,
		&email,
		&roleStr,
		&a.Login,
		&a.PasswordHash,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}

	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return domain.Account{}, fmt.Errorf("postgres: account %s: %w", a.ID, err)
	}
	a.Role = role
	a.Email = derefOrEmpty(email)
	return a, nil
}
