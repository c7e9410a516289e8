// Package logger configures structured logging and carries per-run fields
// through context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	projectKey contextKey = "project"
	chatIDKey  contextKey = "chat_id"
)

// Init installs a slog default logger writing to stderr.
// format is "json" or "text"; unknown levels fall back to info.
func Init(level, format string) *slog.Logger {
	return InitWriter(os.Stderr, level, format)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRun attaches a pipeline run's identifiers to ctx.
func WithRun(ctx context.Context, runID, project string, chatID int64) context.Context {
	ctx = context.WithValue(ctx, runIDKey, runID)
	ctx = context.WithValue(ctx, projectKey, project)
	return context.WithValue(ctx, chatIDKey, chatID)
}

// FromContext returns base (or the default logger when base is nil) with
// any run fields found in ctx.
func FromContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	l := base
	if l == nil {
		l = slog.Default()
	}
	if v := ctx.Value(runIDKey); v != nil {
		l = l.With("run_id", v)
	}
	if v := ctx.Value(projectKey); v != nil {
		l = l.With("project", v)
	}
	if v := ctx.Value(chatIDKey); v != nil {
		l = l.With("chat_id", v)
	}
	return l
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
