package postgres

import (
	"context"
	"time"
)

type refreshTokensRepo struct {
	q querier
}

func (r *refreshTokensRepo) CreateRefreshToken(
	ctx context.Context,
	fingerprint, accountID string,
	expiresAt time.Time,
) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO refresh_tokens (token_hash, account_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE
		SET account_id = EXCLUDED.account_id, expires_at = EXCLUDED.expires_at`,
		fingerprint, accountID, expiresAt.UTC(),
	)
	return err
}

func (r *refreshTokensRepo) GetRefreshToken(
	ctx context.Context,
	fingerprint string,
) (string, time.Time, error) {
	var (
		accountID string
		expiresAt time.Time
	)
	err := r.q.QueryRow(ctx,
		`SELECT account_id, expires_at FROM refresh_tokens WHERE token_hash = $1`,
		fingerprint,
	).Scan(&accountID, &expiresAt)
	if err != nil {
		return "", time.Time{}, mapNotFound(err)
	}
	return accountID, expiresAt.UTC(), nil
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, fingerprint string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, fingerprint)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
