package queries

import (
	"context"
)

const createRecoveryCode = `
INSERT INTO recovery_codes (user_id, code, expires_at, created_at)
VALUES (?, ?, ?, ?)`

type CreateRecoveryCodeParams struct {
	UserID    int64
	Code      string
	ExpiresAt int64
	CreatedAt int64
}

func (q *Queries) CreateRecoveryCode(ctx context.Context, arg CreateRecoveryCodeParams) error {
	_, err := q.db.ExecContext(ctx, createRecoveryCode, arg.UserID, arg.Code, arg.ExpiresAt, arg.CreatedAt)
	return err
}

const getValidRecoveryCode = `
SELECT id FROM recovery_codes
WHERE user_id = ? AND code = ? AND used = 0 AND expires_at > ?
ORDER BY created_at DESC
LIMIT 1`

type GetValidRecoveryCodeParams struct {
	UserID int64
	Code   string
	Now    int64
}

func (q *Queries) GetValidRecoveryCode(ctx context.Context, arg GetValidRecoveryCodeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, getValidRecoveryCode, arg.UserID, arg.Code, arg.Now)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const useRecoveryCode = `UPDATE recovery_codes SET used = 1 WHERE id = ?`

func (q *Queries) UseRecoveryCode(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, useRecoveryCode, id)
	return err
}
