package logger

import (
	"log/slog"
	"os"

	"murmur/internal/config"
	"murmur/pkg/logging"
)

func NewLogger(cfg config.Config) *slog.Logger {
	handler := logging.NewHandler(os.Stdout, cfg.Logger.Format, logging.ParseLevel(cfg.Logger.Level))
	logger := slog.New(handler).With(
		slog.String("service", cfg.Service.Name),
		slog.String("env", cfg.Service.Env),
		slog.String("address", cfg.Service.Add),
		slog.Int("pid", os.Getpid()),
	)
	slog.SetDefault(logger)
	return logger
}
