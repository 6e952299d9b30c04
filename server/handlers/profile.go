package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/JRI98/maxogram/internal/media"
	"github.com/JRI98/maxogram/server/database"
	"github.com/labstack/echo/v4"
)

func (h *Handler) Profile(c echo.Context) error {
	action, err := readAction(c)
	if err != nil {
		return err
	}

	switch action {
	case api.ActionGetProfile:
		return h.getProfile(c)
	case api.ActionUpdateProfile:
		return h.updateProfile(c)
	}

	return unknownAction(action)
}

func (h *Handler) getProfile(c echo.Context) error {
	data, err := validateData[api.UserRequest](c)
	if err != nil {
		return err
	}

	user, err := h.Database.GetUser(c.Request().Context(), data.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return newEchoHTTPError(http.StatusNotFound, "User not found", nil)
	}
	if err != nil {
		return newEchoHTTPError(http.StatusInternalServerError, "Could not get profile", &err)
	}

	return c.JSON(http.StatusOK, api.UserResponse{User: user.UserProfile})
}

// updateProfile applies only the fields present in the request. The username
// changes at most once per UsernameCooldown.
func (h *Handler) updateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	data, err := validateData[api.UpdateProfileRequest](c)
	if err != nil {
		return err
	}

	if data.AvatarURL != nil && *data.AvatarURL != "" {
		avatar, err := media.ParseDataURL(*data.AvatarURL)
		if err == nil {
			err = media.CheckAvatar(avatar)
		}
		if err != nil {
			return newEchoHTTPError(http.StatusBadRequest, err.Error(), &err)
		}
	}

	now := h.now()

	var user database.User
	err = h.Database.WithTx(ctx, func(tx *database.Database) error {
		current, err := tx.GetUser(ctx, data.UserID)
		if errors.Is(err, database.ErrNotFound) {
			return newEchoHTTPError(http.StatusNotFound, "User not found", nil)
		}
		if err != nil {
			return err
		}

		if newUsername := data.NewUsername; newUsername != nil && *newUsername != "" && *newUsername != current.Username {
			taken, err := tx.UsernameTaken(ctx, *newUsername, current.ID)
			if err != nil {
				return err
			}
			if taken {
				return newEchoHTTPError(http.StatusConflict, "This username is already taken", nil)
			}

			if last := current.UsernameLastChanged; last != nil {
				next := last.Add(UsernameCooldown)
				if now.Before(next) {
					daysLeft := int(math.Ceil(next.Sub(now).Hours() / 24))
					return newEchoHTTPError(http.StatusTooManyRequests, fmt.Sprintf("Username can be changed once every 3 days. Days left: %d", daysLeft), nil)
				}
			}

			err = tx.UpdateUsername(ctx, current.ID, *newUsername, avatarInitials(*newUsername), now)
			if err != nil {
				return err
			}
		}

		if data.AvatarURL != nil {
			if err := tx.UpdateAvatarURL(ctx, current.ID, *data.AvatarURL); err != nil {
				return err
			}
		}

		if data.BirthDate != nil && *data.BirthDate != "" {
			if err := tx.UpdateBirthDate(ctx, current.ID, *data.BirthDate); err != nil {
				return err
			}
		}

		user, err = tx.GetUser(ctx, current.ID)
		return err
	})
	if err != nil {
		var httpError *echo.HTTPError
		if errors.As(err, &httpError) {
			return httpError
		}
		return newEchoHTTPError(http.StatusInternalServerError, "Could not update profile", &err)
	}

	return c.JSON(http.StatusOK, api.UserResponse{User: user.UserProfile, Message: "Profile updated"})
}
