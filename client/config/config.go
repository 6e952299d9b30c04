package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/JRI98/maxogram/internal/recording"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Services struct {
	Auth     string `yaml:"auth" validate:"required,url"`
	Messages string `yaml:"messages" validate:"required,url"`
	Profile  string `yaml:"profile" validate:"required,url"`
	Recovery string `yaml:"recovery" validate:"required,url"`
}

type Recorder struct {
	Command  []string      `yaml:"command" validate:"required,min=1"`
	Interval time.Duration `yaml:"interval" validate:"gt=0"`
}

type Config struct {
	Services Services      `yaml:"services"`
	Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
	Recorder Recorder      `yaml:"recorder"`
	LogFile  string        `yaml:"log_file" validate:"required"`
	LogLevel string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
}

func Default() Config {
	return Config{
		Services: Services{
			Auth:     "http://localhost:3000/auth",
			Messages: "http://localhost:3000/messages",
			Profile:  "http://localhost:3000/profile",
			Recovery: "http://localhost:3000/recovery",
		},
		Timeout: 10 * time.Second,
		Recorder: Recorder{
			Command:  append([]string(nil), recording.DefaultCommand...),
			Interval: recording.DefaultInterval,
		},
		LogFile:  "maxogram.log",
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error.
func Load(path string) (Config, error) {
	config := Default()

	fh, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		_ = fh.Close()
	}()

	decoder := yaml.NewDecoder(fh)
	decoder.KnownFields(true)
	err = decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to decode config file: %w", err)
	}

	err = validator.New(validator.WithRequiredStructEnabled()).Struct(config)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (c Config) Level() slog.Level {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	if err != nil {
		return slog.LevelInfo
	}
	return level
}
