package sqlite

import (
	"context"
	"time"
)

type refreshTokensRepo struct {
	q dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(
	ctx context.Context,
	fingerprint, accountID string,
	expiresAt time.Time,
) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token_hash, account_id, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (token_hash) DO UPDATE
		SET account_id = excluded.account_id, expires_at = excluded.expires_at`,
		fingerprint, accountID, expiresAt.Unix(),
	)
	return err
}

func (r *refreshTokensRepo) GetRefreshToken(
	ctx context.Context,
	fingerprint string,
) (string, time.Time, error) {
	var (
		accountID string
		expires   int64
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT account_id, expires_at FROM refresh_tokens WHERE token_hash = ?`,
		fingerprint,
	).Scan(&accountID, &expires)
	if err != nil {
		return "", time.Time{}, mapNotFound(err)
	}
	return accountID, time.Unix(expires, 0).UTC(), nil
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, fingerprint string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token_hash = ?`, fingerprint)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
