package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JRI98/maxogram/internal/api"
	"github.com/JRI98/maxogram/internal/validate"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
)

// BodyLimit bounds request bodies. Avatars and voice messages travel inline
// as base64 data URLs.
const BodyLimit = "32M"

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Describe(err)).SetInternal(err)
	}
	return nil
}

// NewRouter builds the echo instance serving the auth, messages, profile and
// recovery endpoints.
func NewRouter(h *Handler, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: validate.New()}
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var httpError *echo.HTTPError
		if !errors.As(err, &httpError) {
			httpError = echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
		}

		var sendError error
		if c.Request().Method == http.MethodHead {
			sendError = c.NoContent(httpError.Code)
		} else {
			sendError = c.JSON(httpError.Code, api.ErrorResponse{Error: fmt.Sprint(httpError.Message)})
		}

		if sendError != nil {
			logger.Error("HTTPErrorHandler send error", slog.Any("sendError", sendError), slog.Any("httpError", httpError))
		}
	}

	e.Use(slogecho.NewWithConfig(logger, slogecho.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithUserAgent:    true,
		WithRequestID:    true,
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			return fmt.Errorf("[PANIC RECOVER] %v\n%s", err, stack)
		},
		DisableErrorHandler: true,
	}))

	e.Use(middleware.RequestID())

	e.Use(middleware.Secure())

	e.Use(middleware.CORS())

	e.Use(middleware.BodyLimit(BodyLimit))

	e.POST("/auth", h.Auth)
	e.GET("/messages", h.GetMessages)
	e.POST("/messages", h.PostMessages)
	e.POST("/profile", h.Profile)
	e.POST("/recovery", h.Recovery)

	return e
}
