package app

import (
	"log/slog"
	"os"
)

// NewLogger returns the slog.Logger both binaries share: JSON in
// deployments, text for local runs, selected by LOG_FORMAT.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
}
