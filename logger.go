package lexgo

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/lexgo/schema"
)

// Logger wraps slog.Logger with lexgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSegment adds a segment ordinal field to the logger.
func (l *Logger) WithSegment(ord uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("segment", ord),
	}
}

// WithField adds a schema field id to the logger.
func (l *Logger) WithField(field schema.Field) *Logger {
	return &Logger{
		Logger: l.Logger.With("field", field.ID()),
	}
}

// WithPath adds a file path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogSegmentStart logs the start of a new segment build.
func (l *Logger) LogSegmentStart(ctx context.Context, ord uint64) {
	l.DebugContext(ctx, "segment started",
		"segment", ord,
	)
}

// LogCommit logs a segment commit.
func (l *Logger) LogCommit(ctx context.Context, ord uint64, bytes uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "commit failed",
			"segment", ord,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "segment committed",
			"segment", ord,
			"bytes", bytes,
		)
	}
}

// LogAbort logs an abandoned segment build.
func (l *Logger) LogAbort(ctx context.Context, ord uint64) {
	l.InfoContext(ctx, "segment aborted",
		"segment", ord,
	)
}

// LogSegmentOpen logs a segment open.
func (l *Logger) LogSegmentOpen(ctx context.Context, ord uint64, bytes uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "segment open failed",
			"segment", ord,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "segment opened",
			"segment", ord,
			"bytes", bytes,
		)
	}
}

// LogPrune logs a manifest prune.
func (l *Logger) LogPrune(ctx context.Context, err error) {
	if err != nil {
		l.ErrorContext(ctx, "manifest prune failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "manifest pruned")
	}
}
