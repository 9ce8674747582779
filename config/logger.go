package config

import (
	"log/slog"
	"os"
)

// NewLogger returns a slog.Logger for the loaded configuration. Production
// emits JSON with a service attribute; everything else gets the text handler.
// LOG_LEVEL may be: debug, info, warn, error (default: info).
func NewLogger(cfg *Config) *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)).With("service", "sponsorhub")
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
