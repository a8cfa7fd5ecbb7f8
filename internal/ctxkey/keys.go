// Package ctxkey defines shared context keys used across packages.
// It must not import other internal packages.
package ctxkey

import (
	"context"
	"log/slog"
)

// LoggerKey is the context key type for an enriched logger, e.g. one
// carrying request_id or handshake_id.
type LoggerKey struct{}

// WithLogger returns ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey{}, logger)
}

// Logger returns the logger carried by ctx, or fallback.
func Logger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(LoggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return fallback
}
