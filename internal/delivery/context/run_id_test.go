package context

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRunID(ctx))

	id := NewRunID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	assert.Equal(t, id, GetRunID(WithRunID(ctx, id)))
	assert.NotEqual(t, id, NewRunID())
}

func TestGetLoggerOrDefault(t *testing.T) {
	fallback := slog.New(slog.DiscardHandler)
	scoped := slog.New(slog.DiscardHandler).With(slog.String("runID", "x"))

	ctx := context.Background()
	assert.Nil(t, GetLogger(ctx))
	assert.Same(t, fallback, GetLoggerOrDefault(ctx, fallback))
	assert.Same(t, scoped, GetLoggerOrDefault(WithLogger(ctx, scoped), fallback))
}
