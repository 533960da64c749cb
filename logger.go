package bkmeans

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger is the slog.Logger used by the trainer. Its helpers attach the
// field names shared by every fit and split record.
type Logger struct {
	*slog.Logger
}

// NewLogger wraps handler. A nil handler logs text at info level to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		return NewTextLogger(slog.LevelInfo)
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger logs JSON records at level and above to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger logs text records at level and above to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewWriterLogger(os.Stderr, level)
}

// NewWriterLogger logs text records at level and above to w.
func NewWriterLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

func (l *Logger) with(key string, value any) *Logger {
	return &Logger{Logger: l.Logger.With(key, value)}
}

// WithK tags records with the requested leaf count.
func (l *Logger) WithK(k int) *Logger { return l.with("k", k) }

// WithDimension tags records with the feature dimensionality.
func (l *Logger) WithDimension(dim int) *Logger { return l.with("dimension", dim) }

// WithCount tags records with the number of training rows.
func (l *Logger) WithCount(count int) *Logger { return l.with("count", count) }

// LogFit logs the outcome of a training run.
func (l *Logger) LogFit(ctx context.Context, leaves int, cost float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fit failed", "leaves", leaves, "error", err)
		return
	}
	l.InfoContext(ctx, "fit completed", "leaves", leaves, "cost", cost)
}

// LogSplit logs a single bisection attempt.
func (l *Logger) LogSplit(ctx context.Context, split int, node NodeID, size, left, right, iterations int, err error) {
	if err != nil {
		l.WarnContext(ctx, "split abandoned", "split", split, "node", node, "size", size, "error", err)
		return
	}
	l.DebugContext(ctx, "split completed",
		"split", split,
		"node", node,
		"size", size,
		"left", left,
		"right", right,
		"iterations", iterations,
	)
}
