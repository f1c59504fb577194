package cla

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/cla/colgroup"
	"github.com/hupe1980/cla/core"
)

// Logger wraps slog.Logger with cla-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithColumns adds a columns field to the logger.
func (l *Logger) WithColumns(cols []int) *Logger {
	return &Logger{
		Logger: l.Logger.With("columns", cols),
	}
}

// WithScheme adds a scheme field to the logger.
func (l *Logger) WithScheme(sc core.Scheme) *Logger {
	return &Logger{
		Logger: l.Logger.With("scheme", sc.String()),
	}
}

// LogCompress logs a whole-matrix compression.
func (l *Logger) LogCompress(ctx context.Context, rows, cols, groups int, ratio float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compress failed",
			"rows", rows,
			"cols", cols,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "compress completed",
			"rows", rows,
			"cols", cols,
			"groups", groups,
			"ratio", ratio,
		)
	}
}

// LogGroup logs a column group of the final compressed matrix.
func (l *Logger) LogGroup(ctx context.Context, g colgroup.ColGroup) {
	l.WithScheme(g.Scheme()).WithColumns(g.ColIndexes()).DebugContext(ctx, "group ready",
		"values", g.NumValues(),
		"size", g.EstimateInMemorySize(),
	)
}

// LogWrite logs a container write.
func (l *Logger) LogWrite(ctx context.Context, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "write failed",
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "write completed",
			"bytes", bytes,
		)
	}
}

// LogRead logs a container read.
func (l *Logger) LogRead(ctx context.Context, groups int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "read failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "read completed",
			"groups", groups,
		)
	}
}
