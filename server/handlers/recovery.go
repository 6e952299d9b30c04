package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/JRI98/maxogram/internal/argon2id"
	"github.com/JRI98/maxogram/internal/cryptorandom"
	"github.com/JRI98/maxogram/server/database"
	"github.com/labstack/echo/v4"
)

func (h *Handler) Recovery(c echo.Context) error {
	data, err := validateData[api.RecoveryRequest](c)
	if err != nil {
		return err
	}

	data.Username = strings.TrimSpace(data.Username)
	data.Code = strings.TrimSpace(data.Code)

	switch data.Action {
	case api.ActionRequestCode:
		return h.requestCode(c, data)
	case api.ActionResetPassword:
		return h.resetPassword(c, data)
	}

	return unknownAction(data.Action)
}

// requestCode stores a fresh code and delivers it as a chat message from the
// support account. The code never appears in the response.
func (h *Handler) requestCode(c echo.Context, data *api.RecoveryRequest) error {
	ctx := c.Request().Context()

	code, err := cryptorandom.Digits(RecoveryCodeLength)
	if err != nil {
		return newEchoHTTPError(http.StatusInternalServerError, "Could not generate code", &err)
	}

	now := h.now()

	var delivered *api.Message
	var userID int64
	err = h.Database.WithTx(ctx, func(tx *database.Database) error {
		user, err := tx.GetUserByUsername(ctx, data.Username)
		if errors.Is(err, database.ErrNotFound) {
			return newEchoHTTPError(http.StatusNotFound, "User not found", nil)
		}
		if err != nil {
			return err
		}
		userID = user.ID

		err = tx.CreateRecoveryCode(ctx, user.ID, code, now, now.Add(RecoveryCodeTTL))
		if err != nil {
			return err
		}

		support, err := tx.GetUserByUsername(ctx, h.SupportUsername)
		if errors.Is(err, database.ErrNotFound) {
			h.logger.Warn("Support user missing, recovery code not delivered", slog.String("username", h.SupportUsername))
			return nil
		}
		if err != nil {
			return err
		}

		message, err := tx.CreateMessage(ctx, database.CreateMessageParams{
			SenderID:   support.ID,
			ReceiverID: user.ID,
			Text:       fmt.Sprintf("Recovery code for @%s: %s\n\nThe code is valid for %d minutes.", user.Username, code, int(RecoveryCodeTTL.Minutes())),
			CreatedAt:  now,
		})
		if err != nil {
			return err
		}

		message.SenderName = support.Username
		message.SenderAvatar = support.AvatarInitials
		delivered = &message
		return nil
	})
	if err != nil {
		var httpError *echo.HTTPError
		if errors.As(err, &httpError) {
			return httpError
		}
		return newEchoHTTPError(http.StatusInternalServerError, "Could not request code", &err)
	}

	if delivered != nil {
		h.notify(ctx, *delivered)
	}

	return c.JSON(http.StatusOK, api.RecoveryResponse{Message: "The code was sent to your chat with " + h.SupportUsername, UserID: userID})
}

func (h *Handler) resetPassword(c echo.Context, data *api.RecoveryRequest) error {
	ctx := c.Request().Context()

	if data.Code == "" || data.NewPassword == "" {
		return newEchoHTTPError(http.StatusBadRequest, "All fields are required", nil)
	}

	hash, salt, err := argon2id.HashPassword(data.NewPassword)
	if err != nil {
		return newEchoHTTPError(http.StatusInternalServerError, "Could not reset password", &err)
	}

	err = h.Database.WithTx(ctx, func(tx *database.Database) error {
		user, err := tx.GetUserByUsername(ctx, data.Username)
		if errors.Is(err, database.ErrNotFound) {
			return newEchoHTTPError(http.StatusNotFound, "User not found", nil)
		}
		if err != nil {
			return err
		}

		err = tx.UseRecoveryCode(ctx, user.ID, data.Code, h.now())
		if errors.Is(err, database.ErrNotFound) {
			return newEchoHTTPError(http.StatusBadRequest, "Invalid or expired code", nil)
		}
		if err != nil {
			return err
		}

		return tx.UpdatePassword(ctx, user.ID, hash, salt)
	})
	if err != nil {
		var httpError *echo.HTTPError
		if errors.As(err, &httpError) {
			return httpError
		}
		return newEchoHTTPError(http.StatusInternalServerError, "Could not reset password", &err)
	}

	return c.JSON(http.StatusOK, api.RecoveryResponse{Message: "Password changed"})
}
