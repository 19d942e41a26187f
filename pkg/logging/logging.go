package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Name is the name of the application that is logging.
type Name string

// Config is the configuration for the logger.
type Config struct {
	// appName is the name of the application.
	appName string

	// level is the minimum level that will be logged.
	level slog.Level

	// w is where the logs are written to.
	w io.Writer
}

// NewConfig creates a new logging config for the given application name.
func NewConfig(appName Name) *Config {
	return &Config{
		appName: string(appName),
		level:   slog.LevelInfo,
		w:       os.Stdout,
	}
}

// WithLevel sets the minimum level from its text form (debug, info, warn, error).
func (c *Config) WithLevel(level string) error {
	if level == "" {
		return nil
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	c.level = l
	return nil
}

// WithWriter sets the output of the logger.
func (c *Config) WithWriter(w io.Writer) *Config {
	c.w = w
	return c
}

// CommonLogger creates the JSON logger used across the application and sets it as the default.
func CommonLogger(cfg *Config) (*slog.Logger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("logging config is nil")
	}

	h := slog.NewJSONHandler(cfg.w, &slog.HandlerOptions{
		AddSource: cfg.level == slog.LevelDebug,
		Level:     cfg.level,
	})

	l := slog.New(h).With(slog.String(KeyApp, cfg.appName))
	slog.SetDefault(l)
	return l, nil
}
