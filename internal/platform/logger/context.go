package logger

import (
	"context"
	"log/slog"
)

// loggerContextKey is the private context key under which request-scoped
// loggers travel. A struct key cannot collide with keys from other packages.
type loggerContextKey struct{}

// WithLogger returns a copy of ctx that carries the given logger.
// Handlers and stores retrieve it with FromContext or FromContextOrDefault
// so log records keep their request-scoped attributes (trace id, component).
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// FromContext returns the logger stored in ctx, or nil when none is present.
func FromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger)
	if !ok {
		return nil
	}
	return logger
}

// FromContextOrDefault returns the logger stored in ctx, falling back to the
// provided default. When both are nil it returns slog.Default so callers can
// always log without a nil check.
func FromContextOrDefault(ctx context.Context, def *slog.Logger) *slog.Logger {
	if logger := FromContext(ctx); logger != nil {
		return logger
	}
	if def != nil {
		return def
	}
	return slog.Default()
}
