package logs

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"peerbackup/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := parseLogLevel("verbose")
	assert.Error(t, err)
}

func TestNewWithWriter_JSON(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Env.Log.Level = "warn"

	var buf bytes.Buffer
	logger, err := NewWithWriter(cfg, &buf)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", slog.String("key", "value"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "PeerBackupService", line["service"])
	assert.Equal(t, "value", line["key"])
}
