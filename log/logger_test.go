package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("voucher issued", slog.String("uid", "0xabc"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "voucher issued", entry["message"])
	require.Equal(t, "0xabc", entry["uid"])
	require.NotContains(t, buf.String(), "hidden")
}

func TestNewLoggerPlain(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "plain", slog.LevelWarn)

	logger.Warn("upload slow")
	require.Contains(t, buf.String(), "upload slow")
	require.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
