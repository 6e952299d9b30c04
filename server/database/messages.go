package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/JRI98/maxogram/server/database/queries"
)

func messageFromRow(row queries.Message) api.Message {
	message := api.Message{
		ID:          row.ID,
		SenderID:    row.SenderID,
		ReceiverID:  row.ReceiverID,
		MessageText: nullString(row.MessageText),
		VoiceURL:    nullString(row.VoiceUrl),
		IsVoice:     row.IsVoice,
		CreatedAt:   fromUnix(row.CreatedAt),
		ReadAt:      nullTime(row.ReadAt),
	}
	if row.VoiceDuration.Valid {
		duration := int(row.VoiceDuration.Int64)
		message.VoiceDuration = &duration
	}
	return message
}

type CreateMessageParams struct {
	SenderID      int64
	ReceiverID    int64
	Text          string
	VoiceURL      string
	VoiceDuration *int
	IsVoice       bool
	CreatedAt     time.Time
}

func (database *Database) CreateMessage(ctx context.Context, params CreateMessageParams) (api.Message, error) {
	var voiceDuration sql.NullInt64
	if params.VoiceDuration != nil {
		voiceDuration = sql.NullInt64{Int64: int64(*params.VoiceDuration), Valid: true}
	}

	row, err := database.queries.CreateMessage(ctx, queries.CreateMessageParams{
		SenderID:      params.SenderID,
		ReceiverID:    params.ReceiverID,
		MessageText:   toNullString(params.Text),
		VoiceUrl:      toNullString(params.VoiceURL),
		VoiceDuration: voiceDuration,
		IsVoice:       params.IsVoice,
		CreatedAt:     unixTime(params.CreatedAt),
	})
	if err != nil {
		return api.Message{}, fmt.Errorf("failed to create message: %w", err)
	}

	return messageFromRow(row), nil
}

// Conversation returns the messages exchanged by the two users, oldest first.
func (database *Database) Conversation(ctx context.Context, userID int64, otherUserID int64) ([]api.Message, error) {
	rows, err := database.queries.ListConversation(ctx, queries.ListConversationParams{
		UserID:      userID,
		OtherUserID: otherUserID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation: %w", err)
	}

	messages := make([]api.Message, 0, len(rows))
	for _, row := range rows {
		message := messageFromRow(row.Message)
		message.SenderName = row.SenderName
		message.SenderAvatar = row.SenderAvatar
		messages = append(messages, message)
	}

	return messages, nil
}

// MarkRead marks every unread message sent by senderID to readerID as read.
func (database *Database) MarkRead(ctx context.Context, readerID int64, senderID int64, at time.Time) (int64, error) {
	count, err := database.queries.MarkConversationRead(ctx, queries.MarkConversationReadParams{
		ReadAt:     unixTime(at),
		ReceiverID: readerID,
		SenderID:   senderID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return count, nil
}

// Chats lists one summary per conversation partner, most recent first.
func (database *Database) Chats(ctx context.Context, userID int64) ([]api.ChatSummary, error) {
	rows, err := database.queries.ListChats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	chats := make([]api.ChatSummary, 0, len(rows))
	for _, row := range rows {
		chats = append(chats, api.ChatSummary{
			ID:                 row.ID,
			Username:           row.Username,
			AvatarInitials:     row.AvatarInitials,
			Online:             row.Online,
			LastMessage:        nullString(row.LastMessage),
			LastMessageIsVoice: row.LastMessageIsVoice,
			LastMessageTime:    fromUnix(row.LastMessageTime),
			UnreadCount:        int(row.UnreadCount),
		})
	}

	return chats, nil
}
