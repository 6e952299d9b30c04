package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/JRI98/maxogram/server/database"
	"github.com/labstack/echo/v4"
)

type MessagesQuery struct {
	UserID      int64 `json:"user_id" query:"user_id" validate:"required"`
	OtherUserID int64 `json:"other_user_id" query:"other_user_id" validate:"required"`
}

// GetMessages returns the conversation between two users and marks what the
// requesting user received in it as read.
func (h *Handler) GetMessages(c echo.Context) error {
	ctx := c.Request().Context()

	data, err := validateData[MessagesQuery](c)
	if err != nil {
		return err
	}

	var messages []api.Message
	err = h.Database.WithTx(ctx, func(tx *database.Database) error {
		_, err := tx.MarkRead(ctx, data.UserID, data.OtherUserID, h.now())
		if err != nil {
			return err
		}

		messages, err = tx.Conversation(ctx, data.UserID, data.OtherUserID)
		return err
	})
	if err != nil {
		return newEchoHTTPError(http.StatusInternalServerError, "Could not get messages", &err)
	}

	return c.JSON(http.StatusOK, api.MessagesResponse{Messages: messages})
}

func (h *Handler) PostMessages(c echo.Context) error {
	action, err := readAction(c)
	if err != nil {
		return err
	}

	switch action {
	case "", api.ActionSend:
		return h.send(c)
	case api.ActionGetChats:
		return h.chats(c)
	case api.ActionGetAllUsers:
		return h.users(c)
	}

	return unknownAction(action)
}

func (h *Handler) send(c echo.Context) error {
	ctx := c.Request().Context()

	data, err := validateData[api.SendMessageRequest](c)
	if err != nil {
		return err
	}

	text := strings.TrimSpace(data.MessageText)
	if text == "" && data.VoiceURL == "" {
		return newEchoHTTPError(http.StatusBadRequest, "Message cannot be empty", nil)
	}

	if data.SenderID == data.ReceiverID {
		return newEchoHTTPError(http.StatusBadRequest, "Cannot send a message to yourself", nil)
	}

	var message api.Message
	err = h.Database.WithTx(ctx, func(tx *database.Database) error {
		sender, err := tx.GetUser(ctx, data.SenderID)
		if err != nil {
			return err
		}

		if _, err := tx.GetUser(ctx, data.ReceiverID); err != nil {
			return err
		}

		message, err = tx.CreateMessage(ctx, database.CreateMessageParams{
			SenderID:      data.SenderID,
			ReceiverID:    data.ReceiverID,
			Text:          text,
			VoiceURL:      data.VoiceURL,
			VoiceDuration: data.VoiceDuration,
			IsVoice:       data.IsVoice,
			CreatedAt:     h.now(),
		})
		if err != nil {
			return err
		}

		message.SenderName = sender.Username
		message.SenderAvatar = sender.AvatarInitials
		return nil
	})
	if errors.Is(err, database.ErrNotFound) {
		return newEchoHTTPError(http.StatusNotFound, "User not found", &err)
	}
	if err != nil {
		return newEchoHTTPError(http.StatusInternalServerError, "Could not send message", &err)
	}

	h.notify(ctx, message)

	return c.JSON(http.StatusCreated, api.SendResponse{Message: message, Status: "Message sent"})
}

func (h *Handler) chats(c echo.Context) error {
	data, err := validateData[api.UserRequest](c)
	if err != nil {
		return err
	}

	chats, err := h.Database.Chats(c.Request().Context(), data.UserID)
	if err != nil {
		return newEchoHTTPError(http.StatusInternalServerError, "Could not get chats", &err)
	}

	return c.JSON(http.StatusOK, api.ChatsResponse{Chats: chats})
}

func (h *Handler) users(c echo.Context) error {
	users, err := h.Database.Users(c.Request().Context())
	if err != nil {
		return newEchoHTTPError(http.StatusInternalServerError, "Could not get users", &err)
	}

	return c.JSON(http.StatusOK, api.UsersResponse{Users: users})
}
