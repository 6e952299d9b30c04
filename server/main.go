package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/JRI98/maxogram/server/database"
	"github.com/JRI98/maxogram/server/handlers"
	"github.com/JRI98/maxogram/server/services"
)

func getenv(key string, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	ctx := context.Background()

	db, err := database.Open(getenv("DATABASE_PATH", "maxogram.db"))
	if err != nil {
		slog.Error("Could not open database", slog.Any("err", err))
		os.Exit(1)
	}
	defer db.Close()

	var notifier interface {
		handlers.Notifier
		Close()
	} = services.Discard{}
	if natsURL, ok := os.LookupEnv("NATS_URL"); ok {
		natsService, err := services.NewNATSService(natsURL)
		if err != nil {
			slog.Error("Could not initialize NATS service", slog.Any("err", err))
			os.Exit(1)
		}
		notifier = natsService
	}
	defer notifier.Close()

	handler, err := handlers.NewHandler(ctx, db, notifier, getenv("SUPPORT_USERNAME", "maxogram_support"), slog.Default())
	if err != nil {
		slog.Error("Could not initialize handler", slog.Any("err", err))
		os.Exit(1)
	}

	e := handlers.NewRouter(handler, slog.Default())

	go func() {
		port := getenv("PORT", "3000")

		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			slog.Error("Server start error", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", slog.Any("err", err))
	} else {
		slog.Info("Server successfully shutdown")
	}
}
