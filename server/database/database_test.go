package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDatabase(t *testing.T) *Database {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "maxogram.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func createUser(t *testing.T, db *Database, username string) User {
	t.Helper()

	user, err := db.CreateUser(context.Background(), CreateUserParams{
		Username:       username,
		PasswordHash:   []byte("hash"),
		PasswordSalt:   []byte("salt"),
		AvatarInitials: "XX",
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)

	return user
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t)

	alice := createUser(t, db, "alice")
	assert.Nil(t, alice.Email)
	assert.Nil(t, alice.UsernameLastChanged)
	assert.False(t, alice.Online)

	_, err := db.GetUser(ctx, alice.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.GetUserByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	taken, err := db.UsernameTaken(ctx, "alice", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = db.UsernameTaken(ctx, "alice", alice.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	changed := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.UpdateUsername(ctx, alice.ID, "alicia", "AL", changed))
	require.NoError(t, db.UpdateBirthDate(ctx, alice.ID, "1990-04-01"))
	require.NoError(t, db.SetOnline(ctx, alice.ID, changed))

	user, err := db.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", user.Username)
	assert.Equal(t, "1990-04-01", *user.BirthDate)
	assert.True(t, user.Online)
	require.NotNil(t, user.UsernameLastChanged)
	assert.True(t, changed.Equal(*user.UsernameLastChanged))

	require.NoError(t, db.UpdateAvatarURL(ctx, alice.ID, ""))
	user, err = db.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, user.AvatarURL)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t)

	err := db.WithTx(ctx, func(tx *Database) error {
		createUser(t, tx, "alice")
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = db.GetUserByUsername(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecoveryCodes(t *testing.T) {
	ctx := context.Background()
	db := openTestDatabase(t)
	alice := createUser(t, db, "alice")

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.CreateRecoveryCode(ctx, alice.ID, "123456", now, now.Add(15*time.Minute)))

	assert.ErrorIs(t, db.UseRecoveryCode(ctx, alice.ID, "654321", now), ErrNotFound)
	assert.ErrorIs(t, db.UseRecoveryCode(ctx, alice.ID, "123456", now.Add(time.Hour)), ErrNotFound)
	assert.NoError(t, db.UseRecoveryCode(ctx, alice.ID, "123456", now.Add(time.Minute)))
	assert.ErrorIs(t, db.UseRecoveryCode(ctx, alice.ID, "123456", now.Add(time.Minute)), ErrNotFound)
}
