package app

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns a configured slog.Logger based on configuration.
func NewLogger(cfg *Config) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true, Level: slog.LevelInfo}
	if cfg != nil && !cfg.IsProduction() {
		opts.Level = slog.LevelDebug
	}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// WarnInsecureDefaults logs configuration that is only acceptable outside production.
func WarnInsecureDefaults(logger *slog.Logger, cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.JWTSecretFallback {
		logger.Warn("JWT_SECRET not set, signing tokens with the development secret", slog.String("env", cfg.AppEnv))
	}
}
