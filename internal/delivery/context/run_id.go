// Package context carries per-run values, such as the worker run ID and its
// scoped logger, through context.Context.
package context

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// KeyRunID is the key for storing the worker run ID in context.
	KeyRunID ContextKey = "run_id"

	// KeyLogger is the key for storing the run-scoped logger in context.
	KeyLogger ContextKey = "logger"
)

// NewRunID returns a fresh identifier for one Start..Stop cycle of the worker.
func NewRunID() string {
	return uuid.New().String()
}

// GetRunID returns the run ID stored in ctx, or the empty string.
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(KeyRunID).(string); ok {
		return id
	}

	return ""
}

// WithRunID returns a new context with the run ID.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, KeyRunID, runID)
}

// GetLogger extracts the run-scoped logger from ctx, or nil.
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(KeyLogger).(*slog.Logger); ok {
		return logger
	}

	return nil
}

// GetLoggerOrDefault extracts the run-scoped logger from ctx.
// If not found, returns the provided fallback logger.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger := GetLogger(ctx); logger != nil {
		return logger
	}

	return fallback
}

// WithLogger returns a new context with the logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, KeyLogger, logger)
}
