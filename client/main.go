package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/JRI98/maxogram/client/config"
	"github.com/JRI98/maxogram/client/controller"
	"github.com/JRI98/maxogram/client/services"
	"github.com/JRI98/maxogram/client/ui"
	"github.com/JRI98/maxogram/internal/recording"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

type Args struct {
	ConfigPath string
	LogPath    string
}

func getArgs() Args {
	configPath := flag.String("config", "maxogram.yaml", "Path to the configuration file")
	logPath := flag.String("log", "", "Path to the log file (overrides the configuration)")

	flag.Parse()

	return Args{
		ConfigPath: *configPath,
		LogPath:    *logPath,
	}
}

func main() {
	args := getArgs()

	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load config: %w", err))
	}

	if args.LogPath != "" {
		cfg.LogFile = args.LogPath
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		panic(errors.New("maxogram must be run in a terminal"))
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		panic(fmt.Errorf("failed to open log file: %w", err))
	}
	defer logFile.Close()

	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	httpClient := &http.Client{}

	recorder := recording.New(recording.CommandMicrophone{Command: cfg.Recorder.Command}, cfg.Recorder.Interval)

	c := controller.New(controller.Services{
		Auth:      services.NewAuth(httpClient, cfg.Services.Auth),
		Messaging: services.NewMessaging(httpClient, cfg.Services.Messages),
		Profile:   services.NewProfile(httpClient, cfg.Services.Profile),
		Recovery:  services.NewRecovery(httpClient, cfg.Services.Recovery),
	}, recorder, logger, cfg.Timeout)
	defer func() {
		err := c.Close()
		if err != nil {
			logger.Error("failed to close controller", slog.Any("error", err))
		}
	}()

	logger.Info("starting", slog.String("auth", cfg.Services.Auth), slog.String("messages", cfg.Services.Messages))

	program := tea.NewProgram(ui.New(c, logger), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = program.Run()
	if err != nil {
		logger.Error("program failed", slog.Any("error", err))
		panic(fmt.Errorf("failed to run program: %w", err))
	}
}
