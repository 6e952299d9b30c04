package api

import (
	"fmt"
	"time"
)

const (
	ActionRegister      = "register"
	ActionLogin         = "login"
	ActionSend          = "send"
	ActionGetChats      = "get_chats"
	ActionGetAllUsers   = "get_all_users"
	ActionGetProfile    = "get_profile"
	ActionUpdateProfile = "update_profile"
	ActionRequestCode   = "request_code"
	ActionResetPassword = "reset_password"
)

type UserProfile struct {
	ID                  int64      `json:"id"`
	Username            string     `json:"username"`
	AvatarInitials      string     `json:"avatar_initials"`
	Online              bool       `json:"online"`
	Email               *string    `json:"email,omitempty"`
	Phone               *string    `json:"phone,omitempty"`
	AvatarURL           *string    `json:"avatar_url,omitempty"`
	BirthDate           *string    `json:"birth_date,omitempty"`
	UsernameLastChanged *time.Time `json:"username_last_changed,omitempty"`
}

// ChatSummary describes the conversation with one partner, as seen by the
// requesting user. ID is the partner's user id.
type ChatSummary struct {
	ID                 int64     `json:"id"`
	Username           string    `json:"username"`
	AvatarInitials     string    `json:"avatar_initials"`
	Online             bool      `json:"online"`
	LastMessage        *string   `json:"last_message"`
	LastMessageIsVoice bool      `json:"last_message_is_voice"`
	LastMessageTime    time.Time `json:"last_message_time"`
	UnreadCount        int       `json:"unread_count"`
}

type Message struct {
	ID            int64      `json:"id"`
	SenderID      int64      `json:"sender_id"`
	ReceiverID    int64      `json:"receiver_id"`
	MessageText   *string    `json:"message_text"`
	VoiceURL      *string    `json:"voice_url"`
	VoiceDuration *int       `json:"voice_duration"`
	IsVoice       bool       `json:"is_voice"`
	CreatedAt     time.Time  `json:"created_at"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	SenderName    string     `json:"sender_name"`
	SenderAvatar  string     `json:"sender_avatar"`
}

type Envelope struct {
	Action string `json:"action"`
}

type AuthRequest struct {
	Action   string `json:"action" validate:"required,oneof=register login"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password" validate:"required"`
}

type SendMessageRequest struct {
	Action        string `json:"action"`
	SenderID      int64  `json:"sender_id" validate:"required"`
	ReceiverID    int64  `json:"receiver_id" validate:"required"`
	MessageText   string `json:"message_text,omitempty"`
	VoiceURL      string `json:"voice_url,omitempty"`
	VoiceDuration *int   `json:"voice_duration,omitempty" validate:"omitempty,min=0"`
	IsVoice       bool   `json:"is_voice"`
}

type UserRequest struct {
	Action string `json:"action"`
	UserID int64  `json:"user_id" validate:"required"`
}

type UpdateProfileRequest struct {
	Action      string  `json:"action"`
	UserID      int64   `json:"user_id" validate:"required"`
	NewUsername *string `json:"new_username,omitempty" validate:"omitempty,username"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	BirthDate   *string `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type RecoveryRequest struct {
	Action      string `json:"action" validate:"required,oneof=request_code reset_password"`
	Username    string `json:"username" validate:"required"`
	Code        string `json:"code,omitempty" validate:"required_if=Action reset_password"`
	NewPassword string `json:"new_password,omitempty" validate:"required_if=Action reset_password"`
}

type UserResponse struct {
	User    UserProfile `json:"user"`
	Message string      `json:"message,omitempty"`
}

type ChatsResponse struct {
	Chats []ChatSummary `json:"chats"`
}

type MessagesResponse struct {
	Messages []Message `json:"messages"`
}

type UsersResponse struct {
	Users []UserProfile `json:"users"`
}

type SendResponse struct {
	Message Message `json:"message"`
	Status  string  `json:"status"`
}

type RecoveryResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Error is a failure reported by a remote service: a non-success status
// carrying a human-readable message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code: %d", e.Status)
	}
	return e.Message
}
