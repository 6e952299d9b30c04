package database

import (
	"context"
	"fmt"
	"time"

	"github.com/JRI98/maxogram/server/database/queries"
)

func (database *Database) CreateRecoveryCode(ctx context.Context, userID int64, code string, createdAt time.Time, expiresAt time.Time) error {
	err := database.queries.CreateRecoveryCode(ctx, queries.CreateRecoveryCodeParams{
		UserID:    userID,
		Code:      code,
		ExpiresAt: unixTime(expiresAt),
		CreatedAt: unixTime(createdAt),
	})
	if err != nil {
		return fmt.Errorf("failed to create recovery code: %w", err)
	}
	return nil
}

// UseRecoveryCode consumes an unused, unexpired code. It returns ErrNotFound
// when no such code exists.
func (database *Database) UseRecoveryCode(ctx context.Context, userID int64, code string, now time.Time) error {
	id, err := database.queries.GetValidRecoveryCode(ctx, queries.GetValidRecoveryCodeParams{
		UserID: userID,
		Code:   code,
		Now:    unixTime(now),
	})
	if err != nil {
		return fmt.Errorf("failed to get recovery code: %w", notFound(err))
	}

	err = database.queries.UseRecoveryCode(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to use recovery code: %w", err)
	}

	return nil
}
