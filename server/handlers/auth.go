package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/JRI98/maxogram/internal/argon2id"
	"github.com/JRI98/maxogram/internal/validate"
	"github.com/JRI98/maxogram/server/database"
	"github.com/labstack/echo/v4"
)

// avatarInitials takes the first letter of the first two words, or the first
// two letters of a single word.
func avatarInitials(username string) string {
	parts := strings.Fields(username)
	if len(parts) >= 2 {
		return strings.ToUpper(string([]rune(parts[0])[:1]) + string([]rune(parts[1])[:1]))
	}

	runes := []rune(username)
	return strings.ToUpper(string(runes[:min(2, len(runes))]))
}

func (h *Handler) Auth(c echo.Context) error {
	data, err := validateData[api.AuthRequest](c)
	if err != nil {
		return err
	}

	data.Username = strings.TrimSpace(data.Username)
	data.Email = strings.TrimSpace(data.Email)
	data.Phone = strings.TrimSpace(data.Phone)

	if err := validate.Credentials(data.Username, data.Password); err != nil {
		return newEchoHTTPError(http.StatusBadRequest, err.Error(), nil)
	}

	switch data.Action {
	case api.ActionRegister:
		return h.register(c, data)
	case api.ActionLogin:
		return h.login(c, data)
	}

	return unknownAction(data.Action)
}

func (h *Handler) register(c echo.Context, data *api.AuthRequest) error {
	ctx := c.Request().Context()

	if err := validate.Username(data.Username); err != nil {
		return newEchoHTTPError(http.StatusBadRequest, err.Error(), nil)
	}

	hash, salt, err := argon2id.HashPassword(data.Password)
	if err != nil {
		return newEchoHTTPError(http.StatusInternalServerError, "Could not register", &err)
	}

	var user database.User
	err = h.Database.WithTx(ctx, func(tx *database.Database) error {
		taken, err := tx.UsernameTaken(ctx, data.Username, 0)
		if err != nil {
			return err
		}
		if taken {
			return newEchoHTTPError(http.StatusConflict, "A user with this name already exists", nil)
		}

		if data.Email != "" {
			taken, err := tx.EmailTaken(ctx, data.Email)
			if err != nil {
				return err
			}
			if taken {
				return newEchoHTTPError(http.StatusConflict, "Email is already taken", nil)
			}
		}

		if data.Phone != "" {
			taken, err := tx.PhoneTaken(ctx, data.Phone)
			if err != nil {
				return err
			}
			if taken {
				return newEchoHTTPError(http.StatusConflict, "Phone is already taken", nil)
			}
		}

		user, err = tx.CreateUser(ctx, database.CreateUserParams{
			Username:       data.Username,
			Email:          data.Email,
			Phone:          data.Phone,
			PasswordHash:   hash,
			PasswordSalt:   salt,
			AvatarInitials: avatarInitials(data.Username),
			Online:         true,
			CreatedAt:      h.now(),
		})
		return err
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, api.UserResponse{User: user.UserProfile, Message: "Registration successful"})
}

func (h *Handler) login(c echo.Context, data *api.AuthRequest) error {
	ctx := c.Request().Context()

	user, err := h.Database.GetUserByUsername(ctx, data.Username)
	if errors.Is(err, database.ErrNotFound) {
		return newEchoHTTPError(http.StatusUnauthorized, "Invalid username or password", nil)
	}
	if err != nil {
		return newEchoHTTPError(http.StatusInternalServerError, "Could not log in", &err)
	}

	valid, err := argon2id.VerifyPassword(data.Password, user.PasswordHash, user.PasswordSalt)
	if err != nil {
		return newEchoHTTPError(http.StatusInternalServerError, "Could not log in", &err)
	}
	if !valid {
		return newEchoHTTPError(http.StatusUnauthorized, "Invalid username or password", nil)
	}

	err = h.Database.SetOnline(ctx, user.ID, h.now())
	if err != nil {
		return newEchoHTTPError(http.StatusInternalServerError, "Could not log in", &err)
	}
	user.Online = true

	return c.JSON(http.StatusOK, api.UserResponse{User: user.UserProfile, Message: "Logged in"})
}
