package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vouch/internal/platform/config"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("json handler honours level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, config.LoggingConfig{Level: "warn", Format: "json"})
		log.Info("dropped")
		log.Warn("kept", "wallet", "abc")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "kept", entry["msg"])
		assert.Equal(t, "vouch", entry["service"])
	})

	t.Run("text handler selected by format", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, config.LoggingConfig{Format: "text"})
		log.Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		assert.Equal(t, slog.LevelInfo, parseLevel("chatty"))
	})
}
