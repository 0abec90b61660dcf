package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	std      *slog.Logger
	fallback = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})).With("app", "squeeze")
)

// Init installs a text logger on w at the named level
// (debug|info|warn|error, default warn). LOG_LEVEL overrides an empty level.
func Init(w io.Writer, level string) {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	std = slog.New(slog.NewTextHandler(w, opts)).With("app", "squeeze")
	slog.SetDefault(std)
}

// ParseLevel maps a level name to a slog level, defaulting to warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func activeLogger() *slog.Logger {
	if std != nil {
		return std
	}
	return fallback
}

func Info(ctx context.Context, msg string, attrs ...any) {
	activeLogger().InfoContext(ctx, msg, attrs...)
}
func Warn(ctx context.Context, msg string, attrs ...any) {
	activeLogger().WarnContext(ctx, msg, attrs...)
}
func Debug(ctx context.Context, msg string, attrs ...any) {
	activeLogger().DebugContext(ctx, msg, attrs...)
}
