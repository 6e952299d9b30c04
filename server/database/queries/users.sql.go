package queries

import (
	"context"
	"database/sql"
)

const userColumns = `id, username, email, phone, password_hash, password_salt, avatar_initials, avatar_url, birth_date, online, last_seen, username_last_changed, created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scanner) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.Phone,
		&i.PasswordHash,
		&i.PasswordSalt,
		&i.AvatarInitials,
		&i.AvatarUrl,
		&i.BirthDate,
		&i.Online,
		&i.LastSeen,
		&i.UsernameLastChanged,
		&i.CreatedAt,
	)
	return i, err
}

const createUser = `
INSERT INTO users (username, email, phone, password_hash, password_salt, avatar_initials, online, last_seen, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + userColumns

type CreateUserParams struct {
	Username       string
	Email          sql.NullString
	Phone          sql.NullString
	PasswordHash   []byte
	PasswordSalt   []byte
	AvatarInitials string
	Online         bool
	CreatedAt      int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Username,
		arg.Email,
		arg.Phone,
		arg.PasswordHash,
		arg.PasswordSalt,
		arg.AvatarInitials,
		arg.Online,
		arg.CreatedAt,
		arg.CreatedAt,
	)
	return scanUser(row)
}

const getUser = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	return scanUser(row)
}

const getUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = ?`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByUsername, username)
	return scanUser(row)
}

const getUserIDByEmail = `SELECT id FROM users WHERE email = ?`

func (q *Queries) GetUserIDByEmail(ctx context.Context, email string) (int64, error) {
	row := q.db.QueryRowContext(ctx, getUserIDByEmail, email)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getUserIDByPhone = `SELECT id FROM users WHERE phone = ?`

func (q *Queries) GetUserIDByPhone(ctx context.Context, phone string) (int64, error) {
	row := q.db.QueryRowContext(ctx, getUserIDByPhone, phone)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listUsers = `SELECT ` + userColumns + ` FROM users ORDER BY username`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		i, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setUserOnline = `UPDATE users SET online = 1, last_seen = ? WHERE id = ?`

type SetUserOnlineParams struct {
	LastSeen int64
	ID       int64
}

func (q *Queries) SetUserOnline(ctx context.Context, arg SetUserOnlineParams) error {
	_, err := q.db.ExecContext(ctx, setUserOnline, arg.LastSeen, arg.ID)
	return err
}

const updateUsername = `UPDATE users SET username = ?, avatar_initials = ?, username_last_changed = ? WHERE id = ?`

type UpdateUsernameParams struct {
	Username            string
	AvatarInitials      string
	UsernameLastChanged int64
	ID                  int64
}

func (q *Queries) UpdateUsername(ctx context.Context, arg UpdateUsernameParams) error {
	_, err := q.db.ExecContext(ctx, updateUsername, arg.Username, arg.AvatarInitials, arg.UsernameLastChanged, arg.ID)
	return err
}

const updateAvatarURL = `UPDATE users SET avatar_url = ? WHERE id = ?`

type UpdateAvatarURLParams struct {
	AvatarUrl sql.NullString
	ID        int64
}

func (q *Queries) UpdateAvatarURL(ctx context.Context, arg UpdateAvatarURLParams) error {
	_, err := q.db.ExecContext(ctx, updateAvatarURL, arg.AvatarUrl, arg.ID)
	return err
}

const updateBirthDate = `UPDATE users SET birth_date = ? WHERE id = ?`

type UpdateBirthDateParams struct {
	BirthDate string
	ID        int64
}

func (q *Queries) UpdateBirthDate(ctx context.Context, arg UpdateBirthDateParams) error {
	_, err := q.db.ExecContext(ctx, updateBirthDate, arg.BirthDate, arg.ID)
	return err
}

const updatePassword = `UPDATE users SET password_hash = ?, password_salt = ? WHERE id = ?`

type UpdatePasswordParams struct {
	PasswordHash []byte
	PasswordSalt []byte
	ID           int64
}

func (q *Queries) UpdatePassword(ctx context.Context, arg UpdatePasswordParams) error {
	_, err := q.db.ExecContext(ctx, updatePassword, arg.PasswordHash, arg.PasswordSalt, arg.ID)
	return err
}
