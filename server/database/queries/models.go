package queries

import (
	"database/sql"
)

// Timestamps are stored as Unix nanoseconds.

type User struct {
	ID                  int64
	Username            string
	Email               sql.NullString
	Phone               sql.NullString
	PasswordHash        []byte
	PasswordSalt        []byte
	AvatarInitials      string
	AvatarUrl           sql.NullString
	BirthDate           sql.NullString
	Online              bool
	LastSeen            sql.NullInt64
	UsernameLastChanged sql.NullInt64
	CreatedAt           int64
}

type Message struct {
	ID            int64
	SenderID      int64
	ReceiverID    int64
	MessageText   sql.NullString
	VoiceUrl      sql.NullString
	VoiceDuration sql.NullInt64
	IsVoice       bool
	CreatedAt     int64
	ReadAt        sql.NullInt64
}
