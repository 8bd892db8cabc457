package platform

import (
	"log/slog"
	"os"
	"strings"
)

// InitLogger configures the default slog logger with a JSON handler.
// Level comes from CABLEQUOTE_LOG_LEVEL (debug, info, warn, error).
func InitLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(GetEnv("CABLEQUOTE_LOG_LEVEL", "info")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

func LogFatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
