package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/JRI98/maxogram/server/database/queries"
)

type User struct {
	api.UserProfile
	PasswordHash []byte
	PasswordSalt []byte
}

func userFromRow(row queries.User) User {
	return User{
		UserProfile: api.UserProfile{
			ID:                  row.ID,
			Username:            row.Username,
			AvatarInitials:      row.AvatarInitials,
			Online:              row.Online,
			Email:               nullString(row.Email),
			Phone:               nullString(row.Phone),
			AvatarURL:           nullString(row.AvatarUrl),
			BirthDate:           nullString(row.BirthDate),
			UsernameLastChanged: nullTime(row.UsernameLastChanged),
		},
		PasswordHash: row.PasswordHash,
		PasswordSalt: row.PasswordSalt,
	}
}

type CreateUserParams struct {
	Username       string
	Email          string
	Phone          string
	PasswordHash   []byte
	PasswordSalt   []byte
	AvatarInitials string
	Online         bool
	CreatedAt      time.Time
}

func (database *Database) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	row, err := database.queries.CreateUser(ctx, queries.CreateUserParams{
		Username:       params.Username,
		Email:          toNullString(params.Email),
		Phone:          toNullString(params.Phone),
		PasswordHash:   params.PasswordHash,
		PasswordSalt:   params.PasswordSalt,
		AvatarInitials: params.AvatarInitials,
		Online:         params.Online,
		CreatedAt:      unixTime(params.CreatedAt),
	})
	if err != nil {
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return userFromRow(row), nil
}

func (database *Database) GetUser(ctx context.Context, userID int64) (User, error) {
	row, err := database.queries.GetUser(ctx, userID)
	if err != nil {
		return User{}, fmt.Errorf("failed to get user %d: %w", userID, notFound(err))
	}

	return userFromRow(row), nil
}

func (database *Database) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row, err := database.queries.GetUserByUsername(ctx, username)
	if err != nil {
		return User{}, fmt.Errorf("failed to get user %q: %w", username, notFound(err))
	}

	return userFromRow(row), nil
}

// UsernameTaken reports whether a user other than exceptID owns username.
func (database *Database) UsernameTaken(ctx context.Context, username string, exceptID int64) (bool, error) {
	row, err := database.queries.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check username: %w", err)
	}

	return row.ID != exceptID, nil
}

func (database *Database) EmailTaken(ctx context.Context, email string) (bool, error) {
	return taken(database.queries.GetUserIDByEmail(ctx, email))
}

func (database *Database) PhoneTaken(ctx context.Context, phone string) (bool, error) {
	return taken(database.queries.GetUserIDByPhone(ctx, phone))
}

func taken(_ int64, err error) (bool, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check uniqueness: %w", err)
	}
	return true, nil
}

// Users lists the public part of every profile.
func (database *Database) Users(ctx context.Context) ([]api.UserProfile, error) {
	rows, err := database.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]api.UserProfile, 0, len(rows))
	for _, row := range rows {
		users = append(users, api.UserProfile{
			ID:             row.ID,
			Username:       row.Username,
			AvatarInitials: row.AvatarInitials,
			Online:         row.Online,
		})
	}

	return users, nil
}

func (database *Database) SetOnline(ctx context.Context, userID int64, at time.Time) error {
	err := database.queries.SetUserOnline(ctx, queries.SetUserOnlineParams{
		LastSeen: unixTime(at),
		ID:       userID,
	})
	if err != nil {
		return fmt.Errorf("failed to set user online: %w", err)
	}
	return nil
}

func (database *Database) UpdateUsername(ctx context.Context, userID int64, username string, initials string, at time.Time) error {
	err := database.queries.UpdateUsername(ctx, queries.UpdateUsernameParams{
		Username:            username,
		AvatarInitials:      initials,
		UsernameLastChanged: unixTime(at),
		ID:                  userID,
	})
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	return nil
}

func (database *Database) UpdateAvatarURL(ctx context.Context, userID int64, avatarURL string) error {
	err := database.queries.UpdateAvatarURL(ctx, queries.UpdateAvatarURLParams{
		AvatarUrl: toNullString(avatarURL),
		ID:        userID,
	})
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return nil
}

func (database *Database) UpdateBirthDate(ctx context.Context, userID int64, birthDate string) error {
	err := database.queries.UpdateBirthDate(ctx, queries.UpdateBirthDateParams{
		BirthDate: birthDate,
		ID:        userID,
	})
	if err != nil {
		return fmt.Errorf("failed to update birth date: %w", err)
	}
	return nil
}

func (database *Database) UpdatePassword(ctx context.Context, userID int64, hash []byte, salt []byte) error {
	err := database.queries.UpdatePassword(ctx, queries.UpdatePasswordParams{
		PasswordHash: hash,
		PasswordSalt: salt,
		ID:           userID,
	})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
