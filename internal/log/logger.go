// Package log carries the shared slog setup and a thin component-aware
// wrapper used across the ledger.
package log

import (
	"context"
	"log/slog"
	"os"
)

// Component names used in structured logs.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentLedger  = "ledger"
)

// Setup installs a text handler at the given level as the process default
// and returns the root logger.
func Setup(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// Logger tags every record with a component attribute.
type Logger struct {
	*slog.Logger
	component string
}

// ForComponent returns a logger scoped to one component.
func ForComponent(component string) *Logger {
	return &Logger{
		Logger:    slog.Default().With("component", component),
		component: component,
	}
}

func (l *Logger) Component() string { return l.component }

// With returns a logger carrying extra attributes alongside the component.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), component: l.component}
}

// ErrContext logs an error with its message attached as a field.
func (l *Logger) ErrContext(ctx context.Context, msg string, err error, args ...any) {
	l.ErrorContext(ctx, msg, append([]any{"error", err}, args...)...)
}
