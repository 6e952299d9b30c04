package handlers

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/JRI98/maxogram/internal/argon2id"
	"github.com/JRI98/maxogram/internal/cryptorandom"
	"github.com/JRI98/maxogram/server/database"
	"github.com/labstack/echo/v4"
)

const (
	UsernameCooldown   = 3 * 24 * time.Hour
	RecoveryCodeTTL    = 15 * time.Minute
	RecoveryCodeLength = 6
)

// Notifier fans a stored message out to whoever listens for its receiver.
type Notifier interface {
	Notify(ctx context.Context, message api.Message) error
}

type Handler struct {
	Database        *database.Database
	Notifier        Notifier
	SupportUsername string

	logger *slog.Logger
	now    func() time.Time
}

// NewHandler creates the support account when it does not exist yet.
// Recovery codes are delivered from it.
func NewHandler(ctx context.Context, db *database.Database, notifier Notifier, supportUsername string, logger *slog.Logger) (*Handler, error) {
	h := &Handler{
		Database:        db,
		Notifier:        notifier,
		SupportUsername: supportUsername,
		logger:          logger,
		now:             time.Now,
	}

	if err := h.ensureSupportUser(ctx); err != nil {
		return nil, fmt.Errorf("could not create support user: %w", err)
	}

	return h, nil
}

func (h *Handler) ensureSupportUser(ctx context.Context) error {
	_, err := h.Database.GetUserByUsername(ctx, h.SupportUsername)
	if err == nil || !errors.Is(err, database.ErrNotFound) {
		return err
	}

	secret, err := cryptorandom.RandomBytes(32)
	if err != nil {
		return fmt.Errorf("could not generate password: %w", err)
	}

	hash, salt, err := argon2id.HashPassword(hex.EncodeToString(secret))
	if err != nil {
		return err
	}

	user, err := h.Database.CreateUser(ctx, database.CreateUserParams{
		Username:       h.SupportUsername,
		PasswordHash:   hash,
		PasswordSalt:   salt,
		AvatarInitials: avatarInitials(h.SupportUsername),
		CreatedAt:      h.now(),
	})
	if err != nil {
		return err
	}

	h.logger.Info("Created support user", slog.Int64("id", user.ID), slog.String("username", user.Username))

	return nil
}

func validateData[T any](c echo.Context) (*T, error) {
	res := new(T)

	if err := c.Bind(res); err != nil {
		return nil, err
	}

	if err := c.Validate(res); err != nil {
		return nil, err
	}

	return res, nil
}

// readAction peeks at the action of a JSON envelope and leaves the body in
// place for validateData.
func readAction(c echo.Context) (string, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return "", newEchoHTTPError(http.StatusBadRequest, "Could not read body", &err)
	}
	c.Request().Body.Close()

	c.Request().Body = io.NopCloser(bytes.NewReader(body))

	var envelope api.Envelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &envelope); err != nil {
			return "", newEchoHTTPError(http.StatusBadRequest, "Malformed JSON body", &err)
		}
	}

	return envelope.Action, nil
}

func newEchoHTTPError(code int, message string, err *error) *echo.HTTPError {
	if err != nil {
		return echo.NewHTTPError(code, message).SetInternal(*err)
	}
	return echo.NewHTTPError(code, message)
}

func unknownAction(action string) *echo.HTTPError {
	err := fmt.Errorf("unknown action %q", action)
	return newEchoHTTPError(http.StatusBadRequest, "Unknown action", &err)
}

// notify never fails the request: the message is already stored.
func (h *Handler) notify(ctx context.Context, message api.Message) {
	if err := h.Notifier.Notify(ctx, message); err != nil {
		h.logger.Warn("Could not notify receiver", slog.Int64("messageID", message.ID), slog.Any("err", err))
	}
}
