package logging

import (
	"context"
	"io"
	"log/slog"
)

// SlogLogger routes the Logger contract onto log/slog. The CLI builds one
// JSON logger at startup and passes it down; child loggers created via
// With share the same handler.
type SlogLogger struct {
	base *slog.Logger
}

// NewSlogLogger wraps an already configured slog logger.
func NewSlogLogger(base *slog.Logger) *SlogLogger {
	return &SlogLogger{base: base}
}

// NewJSONLogger returns a logger emitting one JSON object per line to w,
// filtered at the given minimum level.
func NewJSONLogger(w io.Writer, level slog.Level) *SlogLogger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h))
}

func (l *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.base.DebugContext(ctx, msg, args...)
}

func (l *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.base.InfoContext(ctx, msg, args...)
}

func (l *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.base.WarnContext(ctx, msg, args...)
}

func (l *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.base.ErrorContext(ctx, msg, args...)
}

// With returns a child logger whose lines always carry the given pairs.
func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{base: l.base.With(args...)}
}
