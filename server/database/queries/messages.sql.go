package queries

import (
	"context"
	"database/sql"
)

const createMessage = `
INSERT INTO messages (sender_id, receiver_id, message_text, voice_url, voice_duration, is_voice, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, sender_id, receiver_id, message_text, voice_url, voice_duration, is_voice, created_at, read_at`

type CreateMessageParams struct {
	SenderID      int64
	ReceiverID    int64
	MessageText   sql.NullString
	VoiceUrl      sql.NullString
	VoiceDuration sql.NullInt64
	IsVoice       bool
	CreatedAt     int64
}

func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (Message, error) {
	row := q.db.QueryRowContext(ctx, createMessage,
		arg.SenderID,
		arg.ReceiverID,
		arg.MessageText,
		arg.VoiceUrl,
		arg.VoiceDuration,
		arg.IsVoice,
		arg.CreatedAt,
	)
	var i Message
	err := row.Scan(
		&i.ID,
		&i.SenderID,
		&i.ReceiverID,
		&i.MessageText,
		&i.VoiceUrl,
		&i.VoiceDuration,
		&i.IsVoice,
		&i.CreatedAt,
		&i.ReadAt,
	)
	return i, err
}

const listConversation = `
SELECT m.id, m.sender_id, m.receiver_id, m.message_text, m.voice_url,
       m.voice_duration, m.is_voice, m.created_at, m.read_at,
       u.username AS sender_name, u.avatar_initials AS sender_avatar
FROM messages m
JOIN users u ON m.sender_id = u.id
WHERE (m.sender_id = ?1 AND m.receiver_id = ?2)
   OR (m.sender_id = ?2 AND m.receiver_id = ?1)
ORDER BY m.created_at ASC, m.id ASC`

type ListConversationParams struct {
	UserID      int64
	OtherUserID int64
}

type ListConversationRow struct {
	Message
	SenderName   string
	SenderAvatar string
}

func (q *Queries) ListConversation(ctx context.Context, arg ListConversationParams) ([]ListConversationRow, error) {
	rows, err := q.db.QueryContext(ctx, listConversation, arg.UserID, arg.OtherUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListConversationRow
	for rows.Next() {
		var i ListConversationRow
		if err := rows.Scan(
			&i.ID,
			&i.SenderID,
			&i.ReceiverID,
			&i.MessageText,
			&i.VoiceUrl,
			&i.VoiceDuration,
			&i.IsVoice,
			&i.CreatedAt,
			&i.ReadAt,
			&i.SenderName,
			&i.SenderAvatar,
		); err != nil {
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

const markConversationRead = `
UPDATE messages SET read_at = ?
WHERE receiver_id = ? AND sender_id = ? AND read_at IS NULL`

type MarkConversationReadParams struct {
	ReadAt     int64
	ReceiverID int64
	SenderID   int64
}

func (q *Queries) MarkConversationRead(ctx context.Context, arg MarkConversationReadParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, markConversationRead, arg.ReadAt, arg.ReceiverID, arg.SenderID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listChats = `
WITH ranked AS (
    SELECT CASE WHEN sender_id = ?1 THEN receiver_id ELSE sender_id END AS other_user_id,
           message_text, is_voice, created_at,
           ROW_NUMBER() OVER (
               PARTITION BY CASE WHEN sender_id = ?1 THEN receiver_id ELSE sender_id END
               ORDER BY created_at DESC, id DESC
           ) AS position
    FROM messages
    WHERE sender_id = ?1 OR receiver_id = ?1
)
SELECT u.id, u.username, u.avatar_initials, u.online,
       r.message_text, r.is_voice, r.created_at,
       (SELECT COUNT(*) FROM messages m
        WHERE m.sender_id = u.id AND m.receiver_id = ?1 AND m.read_at IS NULL) AS unread_count
FROM ranked r
JOIN users u ON u.id = r.other_user_id
WHERE r.position = 1
ORDER BY r.created_at DESC`

type ListChatsRow struct {
	ID                 int64
	Username           string
	AvatarInitials     string
	Online             bool
	LastMessage        sql.NullString
	LastMessageIsVoice bool
	LastMessageTime    int64
	UnreadCount        int64
}

func (q *Queries) ListChats(ctx context.Context, userID int64) ([]ListChatsRow, error) {
	rows, err := q.db.QueryContext(ctx, listChats, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListChatsRow
	for rows.Next() {
		var i ListChatsRow
		if err := rows.Scan(
			&i.ID,
			&i.Username,
			&i.AvatarInitials,
			&i.Online,
			&i.LastMessage,
			&i.LastMessageIsVoice,
			&i.LastMessageTime,
			&i.UnreadCount,
		); err != nil {
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
